package morphology

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

func mustGet(t *testing.T, f *FormSet, label string) string {
	t.Helper()
	v, ok := f.Get(label)
	if !ok {
		t.Fatalf("missing %s in %v", label, f.Labels())
	}
	return v
}

func TestSelectPartOfSpeech(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want PartOfSpeech
	}{
		{"no senses", nil, Noun},
		{"verb wins", []string{"noun", "verb"}, Verb},
		{"verb not overridden by adjective", []string{"verb", "adjective"}, Verb},
		{"adjective overrides default noun", []string{"adjective"}, Adjective},
		{"adverb overrides default noun", []string{"adverb"}, Adverb},
		{"adverb does not override adjective", []string{"adjective", "adverb"}, Adjective},
		{"noun resets adjective", []string{"adjective", "noun"}, Noun},
		{"noun does not reset verb", []string{"verb", "noun"}, Verb},
		{"unknown ignored", []string{"interjection", "exclamation"}, Noun},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var senses []Sense
			for _, tag := range tt.tags {
				senses = append(senses, Sense{PartOfSpeech: tag})
			}
			if got := SelectPartOfSpeech(senses); got != tt.want {
				t.Fatalf("SelectPartOfSpeech(%v) = %s, want %s", tt.tags, got, tt.want)
			}
		})
	}
}

func TestExtractFromGlosses(t *testing.T) {
	senses := []Sense{
		{PartOfSpeech: "verb", Glosses: []string{
			"Simple past tense of run.",
			"Past participle of run.",
		}},
	}
	res := Infer("ran", senses)
	if res.PartOfSpeech != Verb {
		t.Fatalf("expected verb, got %s", res.PartOfSpeech)
	}
	if got := mustGet(t, res.Forms, LabelPastTense); got != "run" {
		t.Fatalf("pastTense = %q, want run", got)
	}
	if got := mustGet(t, res.Forms, LabelPastParticiple); got != "run" {
		t.Fatalf("pastParticiple = %q, want run", got)
	}
	// spelling fallback did not run
	if _, ok := res.Forms.Get(LabelPresentParticiple); ok {
		t.Fatalf("fallback inference should not run when glosses yield forms: %v", res.Forms.Labels())
	}
	if got := mustGet(t, res.Forms, LabelBaseForm); got != "ran" {
		t.Fatalf("baseForm = %q, want ran", got)
	}
}

func TestExtractPastTenseSkipsFallback(t *testing.T) {
	res := Infer("ran", []Sense{{PartOfSpeech: "verb", Glosses: []string{"past tense of run"}}})
	if res.Forms.Len() != 2 {
		t.Fatalf("expected baseForm and pastTense only, got %v", res.Forms.Labels())
	}
	if got := mustGet(t, res.Forms, LabelPastTense); got != "run" {
		t.Fatalf("pastTense = %q", got)
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	senses := []Sense{
		{PartOfSpeech: "noun", Glosses: []string{"plural of mouse", "irregular plural of louse"}},
		{PartOfSpeech: "noun", Glosses: []string{"plural form of house"}},
	}
	forms := NewFormSet()
	Extract(senses, forms)
	if got := mustGet(t, forms, LabelPlural); got != "mouse" {
		t.Fatalf("plural = %q, want mouse", got)
	}
	if forms.Len() != 1 {
		t.Fatalf("expected one entry, got %v", forms.Labels())
	}
}

func TestExtractIsCaseInsensitive(t *testing.T) {
	forms := NewFormSet()
	Extract([]Sense{
		{PartOfSpeech: "adjective", Glosses: []string{"COMPARATIVE FORM OF good", "Superlative of good"}},
		{PartOfSpeech: "verb", Glosses: []string{"Gerund of swim", "Third person singular of swim"}},
	}, forms)
	want := map[string]string{
		LabelComparative:         "good",
		LabelSuperlative:         "good",
		LabelPresentParticiple:   "swim",
		LabelThirdPersonSingular: "swim",
	}
	for label, v := range want {
		if got := mustGet(t, forms, label); got != v {
			t.Errorf("%s = %q, want %q", label, got, v)
		}
	}
}

func TestExtractIgnoresPatternsOfOtherPartsOfSpeech(t *testing.T) {
	forms := NewFormSet()
	Extract([]Sense{
		{PartOfSpeech: "noun", Glosses: []string{"past tense of run"}},
		{PartOfSpeech: "adverb", Glosses: []string{"comparative form of well"}},
		{PartOfSpeech: "exclamation", Glosses: []string{"plural of hey"}},
	}, forms)
	if forms.Len() != 0 {
		t.Fatalf("expected no entries, got %v", forms.Labels())
	}
}

func TestAdverbHasNoFallback(t *testing.T) {
	res := Infer("quickly", []Sense{{PartOfSpeech: "adverb", Glosses: []string{"In a quick manner."}}})
	if res.PartOfSpeech != Adverb {
		t.Fatalf("expected adverb, got %s", res.PartOfSpeech)
	}
	if res.Forms.Len() != 1 || mustGet(t, res.Forms, LabelBaseForm) != "quickly" {
		t.Fatalf("expected only base form, got %v", res.Forms.Labels())
	}
}

func TestInferFallbackByPartOfSpeech(t *testing.T) {
	verb := Infer("running", []Sense{{PartOfSpeech: "verb", Glosses: []string{"To move swiftly."}}})
	if got := mustGet(t, verb.Forms, LabelBaseForm); got != "run" {
		t.Fatalf("baseForm = %q, want run", got)
	}
	if verb.Forms.Labels()[0] != LabelBaseForm {
		t.Fatalf("baseForm should stay first, got %v", verb.Forms.Labels())
	}

	noun := Infer("boxes", nil)
	if noun.PartOfSpeech != Noun {
		t.Fatalf("expected noun default, got %s", noun.PartOfSpeech)
	}
	if got := mustGet(t, noun.Forms, LabelBaseForm); got != "boxes" {
		t.Fatalf("noun baseForm = %q, want boxes", got)
	}
	if got := mustGet(t, noun.Forms, LabelSingular); got != "box" {
		t.Fatalf("singular = %q, want box", got)
	}

	adj := Infer("faster", []Sense{{PartOfSpeech: "adjective"}})
	if got := mustGet(t, adj.Forms, LabelSuperlative); got != "fastest" {
		t.Fatalf("superlative = %q, want fastest", got)
	}
}

func TestInferNeverStoresEmptyValues(t *testing.T) {
	words := []string{"a", "y", "ed", "ing", "er", "est", "s", "ies", "f"}
	for _, w := range words {
		for _, pos := range []string{"verb", "noun", "adjective", "adverb"} {
			res := Infer(w, []Sense{{PartOfSpeech: pos}})
			if res.Forms.Len() == 0 {
				t.Fatalf("Infer(%q, %s) produced no forms", w, pos)
			}
			for label, v := range res.Forms.All() {
				if v == "" {
					t.Fatalf("Infer(%q, %s): empty value for %s", w, pos, label)
				}
			}
		}
	}
}

func TestInferIsIdempotent(t *testing.T) {
	senses := []Sense{
		{PartOfSpeech: "verb", Glosses: []string{"To go fast."}},
		{PartOfSpeech: "noun", Glosses: []string{"An act of running."}},
	}
	a := Infer("running", senses)
	b := Infer("running", senses)
	if a.PartOfSpeech != b.PartOfSpeech || !a.Forms.Equal(b.Forms) {
		t.Fatalf("results differ: %v vs %v", a, b)
	}
	if a.Forms == b.Forms {
		t.Fatalf("form sets should be allocated per call")
	}
}

func TestInferConcurrent(t *testing.T) {
	want := Infer("stopped", []Sense{{PartOfSpeech: "verb"}})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := Infer("stopped", []Sense{{PartOfSpeech: "verb"}})
			if !got.Forms.Equal(want.Forms) {
				t.Errorf("concurrent result differs")
			}
		}()
	}
	wg.Wait()
}

func TestFormSetFirstWriterWins(t *testing.T) {
	f := NewFormSet()
	if !f.Add(LabelPlural, "mice") {
		t.Fatal("first Add should store")
	}
	if f.Add(LabelPlural, "mouses") {
		t.Fatal("second Add should be ignored")
	}
	if f.Add(LabelSingular, "") {
		t.Fatal("empty value should be ignored")
	}
	if got, _ := f.Get(LabelPlural); got != "mice" {
		t.Fatalf("plural = %q", got)
	}
}

func TestFormSetJSONKeepsOrder(t *testing.T) {
	f := NewFormSet()
	f.Add(LabelBaseForm, "run")
	f.Add(LabelThirdPersonSingular, "runs")
	f.Add(LabelPastTense, "runed")
	f.Add("note", `say "hi"`)

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"baseForm":"run","thirdPersonSingular":"runs","pastTense":"runed","note":"say \"hi\""}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}

	var back FormSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(f) {
		t.Fatalf("decoded %v, want %v", back.Labels(), f.Labels())
	}

	if err := json.Unmarshal([]byte(`["x"]`), &back); err == nil || !strings.HasPrefix(err.Error(), "formset:") {
		t.Fatalf("expected formset error for a list, got %v", err)
	}

	var trimmed FormSet
	if err := json.Unmarshal([]byte(`{"plural":"","singular":"cat"}`), &trimmed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if trimmed.Len() != 1 {
		t.Fatalf("empty value kept: %v", trimmed.Labels())
	}
}
