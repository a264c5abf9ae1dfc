package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/japaniel/wordcards/pkg/dictionary"
	"github.com/japaniel/wordcards/pkg/morphology"
)

type fakeDict map[string]*dictionary.Entry

func (f fakeDict) Define(ctx context.Context, word string) (*dictionary.Entry, error) {
	if e, ok := f[word]; ok {
		return e, nil
	}
	if word == "offline" {
		return nil, errors.New("connection refused")
	}
	return nil, dictionary.ErrNotFound
}

type fakeTranslator map[string]string

func (f fakeTranslator) Translate(ctx context.Context, text string) (string, error) {
	if t, ok := f[text]; ok {
		return t, nil
	}
	return "", dictionary.ErrNoTranslation
}

var testDict = fakeDict{
	"ran": {
		Word:     "ran",
		Phonetic: "/ɹæn/",
		Meanings: []dictionary.Meaning{
			{PartOfSpeech: "verb", Definitions: []dictionary.Definition{{Definition: "simple past of run"}}},
		},
	},
	"boxes": {
		Word: "boxes",
		Meanings: []dictionary.Meaning{
			{PartOfSpeech: "noun", Definitions: []dictionary.Definition{{Definition: "A container."}}},
		},
	},
}

func TestLookup(t *testing.T) {
	s := NewService(testDict, fakeTranslator{"ran": "跑"})

	card, err := s.Lookup(context.Background(), "  RAN ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if card.Word != "ran" || card.Meaning != "跑" || !card.Translated {
		t.Fatalf("unexpected card: %+v", card)
	}
	if card.PartOfSpeech != morphology.Verb {
		t.Fatalf("part of speech = %s", card.PartOfSpeech)
	}
	if got, _ := card.Forms.Get(morphology.LabelPastTense); got != "run" {
		t.Fatalf("pastTense = %q", got)
	}
	if card.Phonetic != "/ɹæn/" {
		t.Fatalf("phonetic = %q", card.Phonetic)
	}

	rec, err := card.Record()
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.Definitions != `[{"pos":"verb","senses":["simple past of run"]}]` || rec.Stars != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestLookupTranslationFallback(t *testing.T) {
	s := NewService(testDict, fakeTranslator{})
	card, err := s.Lookup(context.Background(), "boxes")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if card.Meaning != DefaultPlaceholder || card.Translated {
		t.Fatalf("expected placeholder meaning, got %q", card.Meaning)
	}
	if got, _ := card.Forms.Get(morphology.LabelSingular); got != "box" {
		t.Fatalf("singular = %q", got)
	}

	s = &Service{Dict: testDict, Placeholder: "n/a"}
	card, err = s.Lookup(context.Background(), "boxes")
	if err != nil {
		t.Fatalf("lookup without translator: %v", err)
	}
	if card.Meaning != "n/a" {
		t.Fatalf("meaning = %q", card.Meaning)
	}
}

func TestLookupErrors(t *testing.T) {
	s := NewService(testDict, nil)
	if _, err := s.Lookup(context.Background(), "   "); !errors.Is(err, ErrEmptyWord) {
		t.Fatalf("expected ErrEmptyWord, got %v", err)
	}
	if _, err := s.Lookup(context.Background(), "zzzz"); !errors.Is(err, ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}
	_, err := s.Lookup(context.Background(), "offline")
	if err == nil || errors.Is(err, ErrWordNotFound) {
		t.Fatalf("expected network error, got %v", err)
	}
}
