package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/japaniel/wordcards/pkg/morphology"
)

var (
	// ErrWordExists is returned when inserting a word that is already stored.
	ErrWordExists = errors.New("word already exists")
	// ErrWordNotFound is returned when no stored word matches.
	ErrWordNotFound = errors.New("word not found")
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

const wordColumns = `id, word, meaning, part_of_speech, forms, definitions, phonetic, stars, import_date`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWord(row rowScanner) (Word, error) {
	var w Word
	var pos, forms string
	if err := row.Scan(&w.ID, &w.Word, &w.Meaning, &pos, &forms, &w.Definitions, &w.Phonetic, &w.Stars, &w.ImportDate); err != nil {
		return Word{}, err
	}
	w.PartOfSpeech = morphology.PartOfSpeech(pos)
	w.Forms = morphology.NewFormSet()
	if forms != "" {
		if err := json.Unmarshal([]byte(forms), w.Forms); err != nil {
			return Word{}, fmt.Errorf("decode forms of %q: %w", w.Word, err)
		}
	}
	return w, nil
}

func queryWords(db DBExecutor, query string, args ...interface{}) ([]Word, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func clampStars(n int) int {
	return max(0, min(MaxStars, n))
}

// CreateWord inserts a new word and returns its id. The word text is trimmed
// and lowercased. A word that is already stored yields ErrWordExists.
func CreateWord(db DBExecutor, w Word) (int64, error) {
	text := strings.ToLower(strings.TrimSpace(w.Word))
	if text == "" {
		return 0, fmt.Errorf("word must be non-empty")
	}
	forms := "{}"
	if w.Forms != nil {
		b, err := json.Marshal(w.Forms)
		if err != nil {
			return 0, fmt.Errorf("encode forms: %w", err)
		}
		forms = string(b)
	}
	pos := w.PartOfSpeech
	if pos == "" {
		pos = morphology.Noun
	}
	importDate := w.ImportDate
	if importDate.IsZero() {
		importDate = time.Now()
	}

	res, err := db.Exec(
		`INSERT INTO words (word, meaning, part_of_speech, forms, definitions, phonetic, stars, import_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		text, w.Meaning, string(pos), forms, w.Definitions, w.Phonetic, clampStars(w.Stars), importDate.UTC(),
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return 0, fmt.Errorf("%q: %w", text, ErrWordExists)
		}
		return 0, fmt.Errorf("insert word: %w", err)
	}
	return res.LastInsertId()
}

// GetWord returns the word with the given id.
func GetWord(db DBExecutor, id int64) (Word, error) {
	w, err := scanWord(db.QueryRow(`SELECT `+wordColumns+` FROM words WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Word{}, fmt.Errorf("id %d: %w", id, ErrWordNotFound)
	}
	return w, err
}

// GetWordByText returns the stored word matching text (case-insensitive).
func GetWordByText(db DBExecutor, text string) (Word, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	w, err := scanWord(db.QueryRow(`SELECT `+wordColumns+` FROM words WHERE word = ?`, text))
	if errors.Is(err, sql.ErrNoRows) {
		return Word{}, fmt.Errorf("%q: %w", text, ErrWordNotFound)
	}
	return w, err
}

// ListWords returns every stored word in the requested order.
func ListWords(db DBExecutor, order SortOrder) ([]Word, error) {
	var orderBy string
	switch order {
	case SortStars:
		orderBy = "stars DESC, id ASC"
	case SortAlphabetical:
		orderBy = "word ASC"
	default:
		orderBy = "import_date ASC, id ASC"
	}
	words, err := queryWords(db, `SELECT `+wordColumns+` FROM words ORDER BY `+orderBy)
	if err != nil {
		return nil, err
	}
	if order == SortRandom {
		Shuffle(words, nil)
	}
	return words, nil
}

// Shuffle reorders words in place with a Fisher-Yates shuffle. A nil r uses
// the global source.
func Shuffle(words []Word, r *rand.Rand) {
	swap := func(i, j int) { words[i], words[j] = words[j], words[i] }
	if r == nil {
		rand.Shuffle(len(words), swap)
		return
	}
	r.Shuffle(len(words), swap)
}

// SearchWords returns words whose text or meaning contains query. The match
// is case-sensitive; callers lowercase the query. An empty query matches all.
func SearchWords(db DBExecutor, query string) ([]Word, error) {
	return queryWords(db,
		`SELECT `+wordColumns+` FROM words
		 WHERE instr(word, ?) > 0 OR instr(meaning, ?) > 0
		 ORDER BY import_date ASC, id ASC`,
		query, query)
}

// UpdateStars sets the rating of a word, clamped to [0, MaxStars], and
// returns the updated word.
func UpdateStars(db DBExecutor, id int64, stars int) (Word, error) {
	res, err := db.Exec(`UPDATE words SET stars = ? WHERE id = ?`, clampStars(stars), id)
	if err != nil {
		return Word{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Word{}, fmt.Errorf("id %d: %w", id, ErrWordNotFound)
	}
	return GetWord(db, id)
}

// AdjustStars adds delta to the rating of a word, clamped to [0, MaxStars].
func AdjustStars(db DBExecutor, id int64, delta int) (Word, error) {
	res, err := db.Exec(`UPDATE words SET stars = MAX(0, MIN(?, stars + ?)) WHERE id = ?`, MaxStars, delta, id)
	if err != nil {
		return Word{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Word{}, fmt.Errorf("id %d: %w", id, ErrWordNotFound)
	}
	return GetWord(db, id)
}

// CountWords returns the number of stored words.
func CountWords(db DBExecutor) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM words`).Scan(&n)
	return n, err
}

// ExistingWords returns the set of stored word texts.
func ExistingWords(db DBExecutor) (map[string]struct{}, error) {
	rows, err := db.Query(`SELECT word FROM words`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	set := make(map[string]struct{})
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		set[w] = struct{}{}
	}
	return set, rows.Err()
}

// DeleteWord removes one word. Its source links go with it through the
// ON DELETE CASCADE on word_sources.
func DeleteWord(db DBExecutor, id int64) error {
	res, err := db.Exec(`DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("id %d: %w", id, ErrWordNotFound)
	}
	return nil
}

// ClearWords deletes every word and returns how many were removed.
func ClearWords(db DBExecutor) (int64, error) {
	res, err := db.Exec(`DELETE FROM words`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
func CreateOrGetSource(db DBExecutor, sourceType, title, author, website, url string) (int64, error) {
	trimmedSourceType := strings.TrimSpace(sourceType)
	if trimmedSourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM sources WHERE IFNULL(url, '') = ? AND IFNULL(title, '') = ? AND IFNULL(author, '') = ?`,
			url, title, author,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO sources (source_type, title, author, website, url, added_at) VALUES (?, ?, ?, ?, ?, ?)`,
			trimmedSourceType, title, author, website, url, time.Now().UTC(),
		)
		if err != nil {
			// Another writer inserted the same source; select again.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// LinkWordToSource records that a word occurred count times in a source.
// Linking again adds to the stored count.
func LinkWordToSource(db DBExecutor, wordID, sourceID int64, count int) error {
	if wordID <= 0 {
		return fmt.Errorf("wordID must be positive")
	}
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	_, err := db.Exec(`INSERT INTO word_sources (word_id, source_id, occurrence_count, first_seen_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(word_id, source_id) DO UPDATE SET
	  occurrence_count = word_sources.occurrence_count + excluded.occurrence_count`,
		wordID, sourceID, count, time.Now().UTC())
	return err
}

// GetWordsBySource returns words associated with a given source id, most
// frequent first.
func GetWordsBySource(db DBExecutor, sourceID int64) ([]Word, error) {
	return queryWords(db,
		`SELECT w.id, w.word, w.meaning, w.part_of_speech, w.forms, w.definitions, w.phonetic, w.stars, w.import_date
		 FROM words w JOIN word_sources ws ON ws.word_id = w.id
		 WHERE ws.source_id = ?
		 ORDER BY ws.occurrence_count DESC, w.word ASC`, sourceID)
}
