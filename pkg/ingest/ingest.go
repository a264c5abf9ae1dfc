// Package ingest imports many words at once: lookups run on a worker pool
// behind a shared rate limit, results are consumed in input order and written
// in batched transactions.
package ingest

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/japaniel/wordcards/pkg/article"
	"github.com/japaniel/wordcards/pkg/db"
	"github.com/japaniel/wordcards/pkg/lookup"
)

// SourceTypeArticle marks sources created from web articles.
const SourceTypeArticle = "website_article"

// Looker builds a card for a word.
type Looker interface {
	Lookup(ctx context.Context, word string) (*lookup.Card, error)
}

// Progress is reported while an import runs.
type Progress struct {
	Done      int
	Total     int
	Word      string
	Succeeded int
	Skipped   int
	Failed    int
}

// Failure records a word whose lookup or write failed.
type Failure struct {
	Word string
	Err  error
}

// Summary is the outcome of an import.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []Failure
}

// Importer handles batch imports into the database.
type Importer struct {
	DB     *sql.DB
	Lookup Looker
	// Delay is the minimum time between two lookups across all workers.
	Delay         time.Duration
	Workers       int
	BatchSize     int
	ProgressEvery int
	// Logger receives per-word failures. nil means no logging.
	Logger *log.Logger
	// OnProgress is called from the consuming goroutine, in input order.
	OnProgress func(Progress)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewImporter creates an Importer with the default pacing.
func NewImporter(conn *sql.DB, l Looker) *Importer {
	return &Importer{
		DB:            conn,
		Lookup:        l,
		Delay:         200 * time.Millisecond,
		Workers:       1,
		BatchSize:     20,
		ProgressEvery: 5,
	}
}

// ReadWordList reads one word per line. Blank lines are dropped.
func ReadWordList(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return words, nil
}

type pending struct {
	word string
	skip bool
}

type lookupResult struct {
	index int
	card  *lookup.Card
	err   error
}

// prepare normalizes the input and marks words that are already stored or
// repeated.
func (im *Importer) prepare(words []string) ([]pending, error) {
	existing, err := db.ExistingWords(im.DB)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(words))
	items := make([]pending, 0, len(words))
	for _, w := range words {
		w = lookup.Normalize(w)
		if w == "" {
			continue
		}
		_, stored := existing[w]
		_, dup := seen[w]
		seen[w] = struct{}{}
		items = append(items, pending{word: w, skip: stored || dup})
	}
	return items, nil
}

// Import looks up and stores words. Failed lookups are counted, not fatal.
// When ctx is canceled the summary so far is returned with the context error;
// cards already handed to the writer are still committed.
func (im *Importer) Import(ctx context.Context, words []string) (Summary, error) {
	items, err := im.prepare(words)
	if err != nil {
		return Summary{}, fmt.Errorf("load existing words: %w", err)
	}
	sum := Summary{Total: len(items)}
	if len(items) == 0 {
		return sum, nil
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	workers := max(im.Workers, 1)
	var wp WorkerPoolInterface
	if im.PoolFactory != nil {
		wp = im.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}

	bw := NewBatchWriter(im.DB, im.BatchSize, 500*time.Millisecond)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan lookupResult, workers*2)
	limiter := newLimiter(im.Delay)
	wp.Start(ctx)

	var producerErr error
	go func() {
		defer close(resultCh)
		defer wp.Close()
		for i, it := range items {
			if it.skip {
				continue
			}
			idx, word := i, it.word
			job := func(ctx context.Context) error {
				res := lookupResult{index: idx}
				if res.err = limiter.Wait(ctx); res.err == nil {
					res.card, res.err = im.Lookup.Lookup(ctx, word)
				}
				select {
				case resultCh <- res:
				case <-ctx.Done():
				}
				return res.err
			}
			if err := wp.SubmitCtx(ctx, job); err != nil {
				if ctx.Err() == nil && !errors.Is(err, ErrPoolClosed) {
					producerErr = fmt.Errorf("submit lookup for %q: %w", word, err)
					cancel()
				}
				return
			}
		}
	}()

	buffer := make(map[int]lookupResult)
	next := 0
	report := func(word string) {
		done := next + 1
		if im.OnProgress != nil && (done%max(im.ProgressEvery, 1) == 0 || done == len(items)) {
			im.OnProgress(Progress{
				Done:      done,
				Total:     len(items),
				Word:      word,
				Succeeded: sum.Succeeded,
				Skipped:   sum.Skipped,
				Failed:    sum.Failed,
			})
		}
	}
	fail := func(word string, err error) {
		sum.Failed++
		sum.Failures = append(sum.Failures, Failure{Word: word, Err: err})
		if im.Logger != nil {
			im.Logger.Warn("import failed", "word", word, "err", err)
		}
	}
	// advance consumes every contiguous item starting at next.
	advance := func() {
		for next < len(items) {
			it := items[next]
			if !it.skip {
				res, ok := buffer[next]
				if !ok {
					return
				}
				delete(buffer, next)
				if res.err != nil {
					fail(it.word, res.err)
				} else if err := im.store(bw, res.card); err != nil {
					fail(it.word, err)
				} else {
					sum.Succeeded++
				}
			} else {
				sum.Skipped++
			}
			report(it.word)
			next++
		}
	}

	advance()
	for res := range resultCh {
		if ctx.Err() != nil {
			continue
		}
		buffer[res.index] = res
		advance()
	}

	closeErr := bw.Close()
	if producerErr != nil {
		return sum, producerErr
	}
	if err := ctx.Err(); err != nil && next < len(items) {
		return sum, err
	}
	if closeErr != nil {
		return sum, fmt.Errorf("write words: %w", closeErr)
	}
	return sum, nil
}

func (im *Importer) store(bw *BatchWriter, card *lookup.Card) error {
	rec, err := card.Record()
	if err != nil {
		return err
	}
	return bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		_, err := db.CreateWord(tx, rec)
		if errors.Is(err, db.ErrWordExists) {
			// stored by another process since the import started
			return nil
		}
		return err
	})
}

// ArticleSummary is the outcome of importing an article.
type ArticleSummary struct {
	Summary
	SourceID int64
	Linked   int
}

// ImportArticle records doc as a source, imports its words and links every
// stored word to the source with its occurrence count.
func (im *Importer) ImportArticle(ctx context.Context, doc *article.Document, words []article.WordCount) (ArticleSummary, error) {
	var out ArticleSummary
	sourceID, err := db.CreateOrGetSource(im.DB, SourceTypeArticle, doc.Title, doc.Byline, doc.SiteName, doc.URL)
	if err != nil {
		return out, fmt.Errorf("create source: %w", err)
	}
	out.SourceID = sourceID

	list := make([]string, len(words))
	for i, wc := range words {
		list[i] = wc.Word
	}
	out.Summary, err = im.Import(ctx, list)
	if err != nil {
		return out, err
	}

	tx, err := im.DB.BeginTx(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("begin link tx: %w", err)
	}
	defer tx.Rollback()
	for _, wc := range words {
		w, err := db.GetWordByText(tx, lookup.Normalize(wc.Word))
		if errors.Is(err, db.ErrWordNotFound) {
			continue
		}
		if err != nil {
			return out, err
		}
		if err := db.LinkWordToSource(tx, w.ID, sourceID, wc.Count); err != nil {
			return out, fmt.Errorf("link %q: %w", wc.Word, err)
		}
		out.Linked++
	}
	if err := tx.Commit(); err != nil {
		return out, fmt.Errorf("commit links: %w", err)
	}
	return out, nil
}

// newLimiter spaces lookups at least delay apart. A non-positive delay
// disables the limit.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
