package morphology

import "strings"

func isConsonant(b byte) bool {
	switch b | 0x20 {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	}
	return true
}

// endsConsonantY reports whether w ends in a consonant followed by "y".
func endsConsonantY(w string) bool {
	n := len(w)
	return n >= 2 && w[n-1] == 'y' && isConsonant(w[n-2])
}

func endsSibilant(w string) bool {
	return strings.HasSuffix(w, "s") || strings.HasSuffix(w, "sh") || strings.HasSuffix(w, "ch") ||
		strings.HasSuffix(w, "x") || strings.HasSuffix(w, "z")
}

// undouble drops the last letter of stem when it ends in two consonants after
// a vowel ("runn" -> "run"). The letters are not compared, so "walk" becomes
// "wal" as well.
func undouble(stem string) string {
	n := len(stem)
	if n > 2 && isConsonant(stem[n-1]) && isConsonant(stem[n-2]) && !isConsonant(stem[n-3]) {
		return stem[:n-1]
	}
	return stem
}

// hasStem reports whether w ends in suffix with something left in front of it.
func hasStem(w, suffix string) bool {
	return len(w) > len(suffix) && strings.HasSuffix(w, suffix)
}

// ThirdPersonSingular returns the -s form of verb.
func ThirdPersonSingular(verb string) string {
	switch {
	case endsSibilant(verb):
		return verb + "es"
	case endsConsonantY(verb):
		return verb[:len(verb)-1] + "ies"
	default:
		return verb + "s"
	}
}

// PastTense returns the regular past tense of verb. Irregular verbs are not
// recognised: "go" gives "goed".
func PastTense(verb string) string {
	switch {
	case strings.HasSuffix(verb, "e"):
		return verb + "d"
	case endsConsonantY(verb):
		return verb[:len(verb)-1] + "ied"
	case strings.HasSuffix(verb, "c"):
		return verb + "ked"
	default:
		return verb + "ed"
	}
}

// PastParticiple is the same as PastTense.
func PastParticiple(verb string) string { return PastTense(verb) }

// PresentParticiple returns the -ing form of verb.
func PresentParticiple(verb string) string {
	switch {
	case strings.HasSuffix(verb, "e"):
		return verb[:len(verb)-1] + "ing"
	case strings.HasSuffix(verb, "c"):
		return verb + "king"
	default:
		return verb + "ing"
	}
}

// Plural returns the plural of a singular noun.
func Plural(noun string) string {
	switch {
	case endsSibilant(noun):
		return noun + "es"
	case endsConsonantY(noun):
		return noun[:len(noun)-1] + "ies"
	case hasStem(noun, "f"):
		return noun[:len(noun)-1] + "ves"
	case hasStem(noun, "fe"):
		return noun[:len(noun)-2] + "ves"
	default:
		return noun + "s"
	}
}

// LooksPlural reports whether noun is treated as a plural by Singular.
func LooksPlural(noun string) bool {
	return strings.HasSuffix(noun, "s") && len(noun) > 3
}

// Singular returns the singular of a plural-looking noun, or the noun itself.
func Singular(noun string) string {
	if !LooksPlural(noun) {
		return noun
	}
	switch {
	case strings.HasSuffix(noun, "ies"):
		return noun[:len(noun)-3] + "y"
	case strings.HasSuffix(noun, "ves"):
		stem := noun[:len(noun)-3]
		if strings.HasSuffix(stem, "i") {
			return stem + "fe"
		}
		return stem + "f"
	case strings.HasSuffix(noun, "ches"), strings.HasSuffix(noun, "shes"),
		strings.HasSuffix(noun, "xes"), strings.HasSuffix(noun, "zes"):
		return noun[:len(noun)-2]
	case strings.HasSuffix(noun, "oes"):
		return noun[:len(noun)-2]
	default:
		return noun[:len(noun)-1]
	}
}

// InferVerb guesses verb forms from spelling. A word ending in "ing" is read
// as a present participle, one ending in "ed" as a past form, anything else
// as the base form. A bare "ing" keeps only its participle.
func InferVerb(word string) *FormSet {
	forms := NewFormSet()
	switch {
	case strings.HasSuffix(word, "ing"):
		base := undouble(word[:len(word)-3])
		forms.Set(LabelBaseForm, base)
		forms.Set(LabelPresentParticiple, word)
		if base != "" {
			forms.Set(LabelThirdPersonSingular, ThirdPersonSingular(base))
			forms.Set(LabelPastTense, PastTense(base))
			forms.Set(LabelPastParticiple, PastParticiple(base))
		}
	case hasStem(word, "ed"):
		base := undouble(word[:len(word)-2])
		forms.Set(LabelBaseForm, base)
		forms.Set(LabelPastTense, word)
		forms.Set(LabelPastParticiple, word)
		forms.Set(LabelThirdPersonSingular, ThirdPersonSingular(base))
		forms.Set(LabelPresentParticiple, PresentParticiple(base))
	default:
		forms.Set(LabelBaseForm, word)
		forms.Set(LabelThirdPersonSingular, ThirdPersonSingular(word))
		forms.Set(LabelPastTense, PastTense(word))
		forms.Set(LabelPastParticiple, PastParticiple(word))
		forms.Set(LabelPresentParticiple, PresentParticiple(word))
	}
	return forms
}

// InferNoun guesses singular and plural from spelling.
func InferNoun(word string) *FormSet {
	forms := NewFormSet()
	if LooksPlural(word) {
		forms.Set(LabelSingular, Singular(word))
		forms.Set(LabelPlural, word)
		return forms
	}
	forms.Set(LabelSingular, word)
	forms.Set(LabelPlural, Plural(word))
	return forms
}

// InferAdjective guesses the positive, comparative and superlative degrees.
func InferAdjective(word string) *FormSet {
	forms := NewFormSet()
	switch {
	case hasStem(word, "er"):
		base := word[:len(word)-2]
		forms.Set(LabelPositive, base)
		forms.Set(LabelComparative, word)
		forms.Set(LabelSuperlative, base+"est")
	case hasStem(word, "est"):
		base := word[:len(word)-3]
		forms.Set(LabelPositive, base)
		forms.Set(LabelComparative, base+"er")
		forms.Set(LabelSuperlative, word)
	default:
		forms.Set(LabelPositive, word)
		forms.Set(LabelComparative, word+"er")
		forms.Set(LabelSuperlative, word+"est")
	}
	return forms
}
