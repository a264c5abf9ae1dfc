package dictionary

import (
	"encoding/json"

	"github.com/japaniel/wordcards/pkg/morphology"
)

// Entry matches one element of the Free Dictionary API response array.
type Entry struct {
	Word       string     `json:"word"`
	Phonetic   string     `json:"phonetic"`
	Phonetics  []Phonetic `json:"phonetics"`
	Meanings   []Meaning  `json:"meanings"`
	SourceURLs []string   `json:"sourceUrls"`
}

type Phonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
	Synonyms     []string     `json:"synonyms"`
	Antonyms     []string     `json:"antonyms"`
}

type Definition struct {
	Definition string   `json:"definition"`
	Example    string   `json:"example"`
	Synonyms   []string `json:"synonyms"`
	Antonyms   []string `json:"antonyms"`
}

// DefinitionEntry is what we save to the DB in the 'definitions' column (as JSON list).
type DefinitionEntry struct {
	POS    string   `json:"pos"`
	Senses []string `json:"senses"`
}

// Senses converts the entry's meanings into morphology senses.
// Definitions with no text are skipped.
func (e *Entry) Senses() []morphology.Sense {
	senses := make([]morphology.Sense, 0, len(e.Meanings))
	for _, m := range e.Meanings {
		s := morphology.Sense{PartOfSpeech: m.PartOfSpeech}
		for _, d := range m.Definitions {
			if d.Definition == "" {
				continue
			}
			s.Glosses = append(s.Glosses, d.Definition)
		}
		senses = append(senses, s)
	}
	return senses
}

// PrimaryPhonetic returns the entry's phonetic spelling, falling back to the
// first non-empty one in Phonetics.
func (e *Entry) PrimaryPhonetic() string {
	if e.Phonetic != "" {
		return e.Phonetic
	}
	for _, p := range e.Phonetics {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

// Definitions groups the entry's glosses by part of speech. Meanings without
// any gloss are left out.
func (e *Entry) Definitions() []DefinitionEntry {
	defs := make([]DefinitionEntry, 0, len(e.Meanings))
	for _, m := range e.Meanings {
		var senses []string
		for _, d := range m.Definitions {
			if d.Definition != "" {
				senses = append(senses, d.Definition)
			}
		}
		if len(senses) == 0 {
			continue
		}
		defs = append(defs, DefinitionEntry{POS: m.PartOfSpeech, Senses: senses})
	}
	return defs
}

// FormatDefinitions encodes Definitions as the JSON list stored with a word.
func FormatDefinitions(e *Entry) (string, error) {
	bytes, err := json.Marshal(e.Definitions())
	return string(bytes), err
}

// ParseDefinitions decodes the output of FormatDefinitions. Empty input yields nil.
func ParseDefinitions(s string) ([]DefinitionEntry, error) {
	if s == "" {
		return nil, nil
	}
	var defs []DefinitionEntry
	if err := json.Unmarshal([]byte(s), &defs); err != nil {
		return nil, err
	}
	return defs, nil
}
