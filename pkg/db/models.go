package db

import (
	"time"

	"github.com/japaniel/wordcards/pkg/morphology"
)

// MaxStars is the highest rating a word can reach.
const MaxStars = 5

// Word is a stored flashcard.
type Word struct {
	ID           int64
	Word         string
	Meaning      string
	PartOfSpeech morphology.PartOfSpeech
	Forms        *morphology.FormSet
	Definitions  string // JSON, see dictionary.FormatDefinitions
	Phonetic     string
	Stars        int
	ImportDate   time.Time
}

// Source is a provenance record for where a word was seen.
type Source struct {
	ID         int64
	SourceType string
	Title      string
	Author     string
	Website    string
	URL        string
	AddedAt    time.Time
}

// WordSource links a Word with a Source.
type WordSource struct {
	ID              int64
	WordID          int64
	SourceID        int64
	OccurrenceCount int
	FirstSeenAt     time.Time
}

// SortOrder selects how ListWords orders the collection.
type SortOrder string

const (
	SortImport       SortOrder = "import"
	SortStars        SortOrder = "stars"
	SortAlphabetical SortOrder = "alphabetical"
	SortRandom       SortOrder = "random"
)

// ParseSortOrder maps a user supplied name to a SortOrder. Unknown or empty
// names select SortImport.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortStars, SortAlphabetical, SortRandom:
		return SortOrder(s)
	}
	return SortImport
}
