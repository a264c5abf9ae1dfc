// Package lookup turns a typed word into a flashcard: it fetches the
// dictionary entry, asks for a translation and infers the word's forms.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/japaniel/wordcards/pkg/db"
	"github.com/japaniel/wordcards/pkg/dictionary"
	"github.com/japaniel/wordcards/pkg/morphology"
)

// DefaultPlaceholder is the meaning stored when no translation is available.
const DefaultPlaceholder = "暂无翻译"

var (
	ErrEmptyWord    = errors.New("word must be non-empty")
	ErrWordNotFound = errors.New("no dictionary entry for word")
)

// Definer fetches dictionary entries.
type Definer interface {
	Define(ctx context.Context, word string) (*dictionary.Entry, error)
}

// Translator translates a single word.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Card is a looked-up word ready to display or store.
type Card struct {
	Word         string
	Meaning      string
	Translated   bool
	PartOfSpeech morphology.PartOfSpeech
	Forms        *morphology.FormSet
	Phonetic     string
	Entry        *dictionary.Entry
}

// Record converts the card into a store record with no stars.
func (c *Card) Record() (db.Word, error) {
	var defs string
	if c.Entry != nil {
		var err error
		if defs, err = dictionary.FormatDefinitions(c.Entry); err != nil {
			return db.Word{}, fmt.Errorf("format definitions: %w", err)
		}
	}
	return db.Word{
		Word:         c.Word,
		Meaning:      c.Meaning,
		PartOfSpeech: c.PartOfSpeech,
		Forms:        c.Forms,
		Definitions:  defs,
		Phonetic:     c.Phonetic,
	}, nil
}

// Service performs lookups. Translator may be nil, in which case every card
// carries the placeholder meaning.
type Service struct {
	Dict        Definer
	Translator  Translator
	Placeholder string
	// Logger receives translation failures. nil means no logging.
	Logger *log.Logger
}

// NewService creates a Service with the default placeholder.
func NewService(dict Definer, tr Translator) *Service {
	return &Service{Dict: dict, Translator: tr, Placeholder: DefaultPlaceholder}
}

// Normalize trims and lowercases a user supplied word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Lookup builds the card for word. A missing dictionary entry yields
// ErrWordNotFound; a failed translation only falls back to the placeholder.
func (s *Service) Lookup(ctx context.Context, word string) (*Card, error) {
	word = Normalize(word)
	if word == "" {
		return nil, ErrEmptyWord
	}

	entry, err := s.Dict.Define(ctx, word)
	if err != nil {
		if errors.Is(err, dictionary.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", word, ErrWordNotFound)
		}
		return nil, fmt.Errorf("lookup %q: %w", word, err)
	}

	headword := entry.Word
	if headword == "" {
		headword = word
	}
	res := morphology.Infer(headword, entry.Senses())

	card := &Card{
		Word:         word,
		Meaning:      s.placeholder(),
		PartOfSpeech: res.PartOfSpeech,
		Forms:        res.Forms,
		Phonetic:     entry.PrimaryPhonetic(),
		Entry:        entry,
	}

	if s.Translator != nil {
		meaning, err := s.Translator.Translate(ctx, word)
		switch {
		case err == nil:
			card.Meaning = meaning
			card.Translated = true
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			if s.Logger != nil {
				s.Logger.Warn("translation failed", "word", word, "err", err)
			}
		}
	}
	return card, nil
}

func (s *Service) placeholder() string {
	if s.Placeholder == "" {
		return DefaultPlaceholder
	}
	return s.Placeholder
}
