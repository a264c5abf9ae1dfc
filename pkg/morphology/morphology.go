// Package morphology infers the grammatical forms of an English word.
//
// Forms are taken from dictionary glosses when a gloss names them
// ("past tense of run"), and otherwise guessed from the word's spelling.
// Everything here is pure: no I/O and no shared mutable state, so the
// functions are safe to call from any number of goroutines.
package morphology

import "strings"

// PartOfSpeech is the word class a result was inferred for.
type PartOfSpeech string

const (
	Verb      PartOfSpeech = "verb"
	Noun      PartOfSpeech = "noun"
	Adjective PartOfSpeech = "adjective"
	Adverb    PartOfSpeech = "adverb"
)

// Form labels.
const (
	LabelBaseForm            = "baseForm"
	LabelPastTense           = "pastTense"
	LabelPastParticiple      = "pastParticiple"
	LabelPresentParticiple   = "presentParticiple"
	LabelThirdPersonSingular = "thirdPersonSingular"
	LabelSingular            = "singular"
	LabelPlural              = "plural"
	LabelPositive            = "positive" // positive degree of an adjective
	LabelComparative         = "comparative"
	LabelSuperlative         = "superlative"
)

// Sense is one dictionary sense: a part-of-speech tag and its glosses.
type Sense struct {
	PartOfSpeech string
	Glosses      []string
}

// Result is the outcome of Infer.
type Result struct {
	PartOfSpeech PartOfSpeech
	Forms        *FormSet
}

// ParsePartOfSpeech maps a dictionary tag to a PartOfSpeech.
func ParsePartOfSpeech(tag string) (PartOfSpeech, bool) {
	switch PartOfSpeech(strings.ToLower(strings.TrimSpace(tag))) {
	case Verb:
		return Verb, true
	case Noun:
		return Noun, true
	case Adjective:
		return Adjective, true
	case Adverb:
		return Adverb, true
	}
	return "", false
}

// SelectPartOfSpeech picks the part of speech reported for a word.
//
// Noun is the default. A verb sense always wins; a noun sense resets anything
// but verb back to noun; adjective and adverb senses only replace noun.
func SelectPartOfSpeech(senses []Sense) PartOfSpeech {
	pos := Noun
	for _, s := range senses {
		p, ok := ParsePartOfSpeech(s.PartOfSpeech)
		if !ok {
			continue
		}
		switch p {
		case Verb:
			pos = Verb
		case Noun:
			if pos != Verb {
				pos = Noun
			}
		case Adjective, Adverb:
			if pos == Noun {
				pos = p
			}
		}
	}
	return pos
}

// Infer returns the part of speech and forms of word.
//
// The form set is seeded with the word as its base form. Glosses are scanned
// first; only if they contribute nothing are the forms guessed from spelling.
func Infer(word string, senses []Sense) Result {
	forms := NewFormSet()
	forms.Add(LabelBaseForm, word)

	pos := SelectPartOfSpeech(senses)
	Extract(senses, forms)

	if forms.Len() <= 1 && word != "" {
		inferFromSpelling(word, pos, forms)
	}
	return Result{PartOfSpeech: pos, Forms: forms}
}

func inferFromSpelling(word string, pos PartOfSpeech, forms *FormSet) {
	var guessed *FormSet
	switch pos {
	case Verb:
		guessed = InferVerb(word)
	case Noun:
		guessed = InferNoun(word)
	case Adjective:
		guessed = InferAdjective(word)
	default:
		return
	}
	for label, value := range guessed.All() {
		forms.Set(label, value)
	}
}
