package morphology

import (
	"fmt"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FormSet maps form labels to surface forms and remembers insertion order.
// The zero value is not usable; call NewFormSet.
type FormSet struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewFormSet returns an empty FormSet.
func NewFormSet() *FormSet {
	return &FormSet{m: orderedmap.New[string, string]()}
}

// Add records value under label unless the label is already present.
// It reports whether the value was stored. Empty values are never stored.
func (f *FormSet) Add(label, value string) bool {
	if value == "" {
		return false
	}
	if _, ok := f.m.Get(label); ok {
		return false
	}
	f.m.Set(label, value)
	return true
}

// Set records value under label, replacing an existing value in place.
func (f *FormSet) Set(label, value string) {
	if value == "" {
		return
	}
	f.m.Set(label, value)
}

// Get returns the value stored under label.
func (f *FormSet) Get(label string) (string, bool) {
	return f.m.Get(label)
}

// Len returns the number of entries.
func (f *FormSet) Len() int { return f.m.Len() }

// Labels returns the labels in insertion order.
func (f *FormSet) Labels() []string {
	out := make([]string, 0, f.m.Len())
	for p := f.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// All iterates entries in insertion order.
func (f *FormSet) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for p := f.m.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Equal reports whether both sets hold the same entries in the same order.
func (f *FormSet) Equal(other *FormSet) bool {
	if f.Len() != other.Len() {
		return false
	}
	for a, b := f.m.Oldest(), other.m.Oldest(); a != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || a.Value != b.Value {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a JSON object with keys in insertion order.
func (f *FormSet) MarshalJSON() ([]byte, error) {
	return f.m.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object of strings, keeping document order.
// Empty values are dropped.
func (f *FormSet) UnmarshalJSON(data []byte) error {
	decoded := orderedmap.New[string, string]()
	if err := decoded.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("formset: %w", err)
	}
	*f = *NewFormSet()
	for p := decoded.Oldest(); p != nil; p = p.Next() {
		f.Add(p.Key, p.Value)
	}
	return nil
}
