package morphology

import "regexp"

type glossPattern struct {
	pos   PartOfSpeech
	label string
	re    *regexp.Regexp
}

func pattern(pos PartOfSpeech, label, phrase string) glossPattern {
	return glossPattern{pos: pos, label: label, re: regexp.MustCompile(`(?i)` + phrase + ` (\w+)`)}
}

// glossPatterns is scanned in order; the first capture per label wins.
var glossPatterns = []glossPattern{
	pattern(Verb, LabelPastTense, `past tense of`),
	pattern(Verb, LabelPastTense, `simple past of`),
	pattern(Verb, LabelPastParticiple, `past participle of`),
	pattern(Verb, LabelPresentParticiple, `present participle of`),
	pattern(Verb, LabelPresentParticiple, `gerund of`),
	pattern(Verb, LabelThirdPersonSingular, `third person singular of`),

	pattern(Noun, LabelPlural, `plural of`),
	pattern(Noun, LabelPlural, `plural form of`),
	pattern(Noun, LabelPlural, `irregular plural of`),

	pattern(Adjective, LabelComparative, `comparative of`),
	pattern(Adjective, LabelSuperlative, `superlative of`),
	pattern(Adjective, LabelComparative, `comparative form of`),
	pattern(Adjective, LabelSuperlative, `superlative form of`),

	pattern(Adverb, LabelComparative, `comparative of`),
	pattern(Adverb, LabelSuperlative, `superlative of`),
}

// Extract scans the glosses of every verb, noun, adjective and adverb sense
// and adds the word each matching gloss points at. Existing labels are kept.
func Extract(senses []Sense, forms *FormSet) {
	for _, s := range senses {
		pos, ok := ParsePartOfSpeech(s.PartOfSpeech)
		if !ok {
			continue
		}
		for _, gloss := range s.Glosses {
			for _, p := range glossPatterns {
				if p.pos != pos {
					continue
				}
				if m := p.re.FindStringSubmatch(gloss); m != nil {
					forms.Add(p.label, m[1])
				}
			}
		}
	}
}
