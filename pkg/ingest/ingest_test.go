package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/japaniel/wordcards/pkg/article"
	"github.com/japaniel/wordcards/pkg/db"
	"github.com/japaniel/wordcards/pkg/lookup"
	"github.com/japaniel/wordcards/pkg/morphology"
)

func setupDB(t testing.TB) *sql.DB {
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	return conn
}

// fakeLooker builds noun cards from spelling alone and fails for words in missing.
type fakeLooker struct {
	mu      sync.Mutex
	missing map[string]bool
	calls   []time.Time
}

func (f *fakeLooker) Lookup(ctx context.Context, word string) (*lookup.Card, error) {
	f.mu.Lock()
	f.calls = append(f.calls, time.Now())
	f.mu.Unlock()
	if f.missing[word] {
		return nil, fmt.Errorf("%q: %w", word, lookup.ErrWordNotFound)
	}
	return &lookup.Card{
		Word:         word,
		Meaning:      "meaning of " + word,
		PartOfSpeech: morphology.Noun,
		Forms:        morphology.InferNoun(word),
	}, nil
}

// failingPool always returns an error on Submit to simulate producer error.
type failingPool struct{}

func (f *failingPool) Start(ctx context.Context) {}
func (f *failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (f *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (f *failingPool) Close() {}

func newTestImporter(conn *sql.DB, l Looker) *Importer {
	im := NewImporter(conn, l)
	im.Delay = 0
	im.Workers = 3
	im.BatchSize = 2
	return im
}

func TestImportStoresSkipsAndFails(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	if _, err := db.CreateWord(conn, db.Word{Word: "walk", Meaning: "走"}); err != nil {
		t.Fatal(err)
	}

	im := newTestImporter(conn, &fakeLooker{missing: map[string]bool{"ghost": true}})
	im.ProgressEvery = 2
	var progress []Progress
	im.OnProgress = func(p Progress) { progress = append(progress, p) }

	input := []string{" Walk", "cat", "", "dog", "CAT", "ghost", "tree"}
	sum, err := im.Import(context.Background(), input)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if sum.Total != 6 || sum.Succeeded != 3 || sum.Skipped != 2 || sum.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(sum.Failures) != 1 || sum.Failures[0].Word != "ghost" || !errors.Is(sum.Failures[0].Err, lookup.ErrWordNotFound) {
		t.Fatalf("unexpected failures: %+v", sum.Failures)
	}

	wantDone := []int{2, 4, 6}
	if len(progress) != len(wantDone) {
		t.Fatalf("expected %d progress reports, got %+v", len(wantDone), progress)
	}
	for i, p := range progress {
		if p.Done != wantDone[i] || p.Total != 6 {
			t.Fatalf("progress[%d] = %+v", i, p)
		}
	}
	if last := progress[len(progress)-1]; last.Word != "tree" || last.Succeeded != 3 || last.Skipped != 2 || last.Failed != 1 {
		t.Fatalf("last progress = %+v", last)
	}

	n, err := db.CountWords(conn)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("expected 4 stored words, got %d", n)
	}
	cat, err := db.GetWordByText(conn, "cat")
	if err != nil {
		t.Fatalf("cat not stored: %v", err)
	}
	if plural, _ := cat.Forms.Get(morphology.LabelPlural); plural != "cats" {
		t.Errorf("cat plural = %q", plural)
	}
	if cat.Meaning != "meaning of cat" || cat.Stars != 0 {
		t.Errorf("unexpected cat record: %+v", cat)
	}
}

func TestImportAllKnownWords(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	db.CreateWord(conn, db.Word{Word: "walk"})

	looker := &fakeLooker{}
	im := newTestImporter(conn, looker)
	sum, err := im.Import(context.Background(), []string{"walk", "WALK"})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Skipped != 2 || sum.Succeeded != 0 || len(looker.calls) != 0 {
		t.Fatalf("unexpected summary %+v with %d lookups", sum, len(looker.calls))
	}
}

func TestImportContextCancel(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	words := make([]string, 100)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	im := newTestImporter(conn, &fakeLooker{})

	// Create a context that is ALREADY canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := im.Import(ctx, words)
	if sum.Succeeded != 0 {
		t.Errorf("Expected no stored words with cancelled context, got %d", sum.Succeeded)
	}
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

func TestImportCancelMidway(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	words := []string{"apple", "berry", "cherry", "damson", "elder"}
	im := newTestImporter(conn, &fakeLooker{})
	im.Workers = 1
	im.ProgressEvery = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	im.OnProgress = func(p Progress) {
		if p.Done == 2 {
			cancel()
		}
	}

	sum, err := im.Import(ctx, words)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sum.Succeeded != 2 {
		t.Fatalf("expected 2 words before cancellation, got %+v", sum)
	}
	// cards handed to the writer before cancellation are committed
	if n, _ := db.CountWords(conn); n != 2 {
		t.Fatalf("expected 2 stored words, got %d", n)
	}
}

func TestImportHandlesSubmitError(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	im := newTestImporter(conn, &fakeLooker{})
	// Inject failing pool so first Submit() returns an error
	im.PoolFactory = func(workers, queue int) WorkerPoolInterface { return &failingPool{} }

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := im.Import(ctx, []string{"a1", "b2", "c3"})
	if err == nil || !strings.Contains(err.Error(), "submit failed") {
		t.Fatalf("expected submit error, got %v", err)
	}
}

func TestImportSpacesLookups(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	looker := &fakeLooker{}
	im := newTestImporter(conn, looker)
	im.Workers = 4
	im.Delay = 20 * time.Millisecond

	if _, err := im.Import(context.Background(), []string{"one", "two", "three", "four"}); err != nil {
		t.Fatal(err)
	}
	if len(looker.calls) != 4 {
		t.Fatalf("expected 4 lookups, got %d", len(looker.calls))
	}
	first, last := looker.calls[0], looker.calls[0]
	for _, c := range looker.calls {
		if c.Before(first) {
			first = c
		}
		if c.After(last) {
			last = c
		}
	}
	if spread := last.Sub(first); spread < 55*time.Millisecond {
		t.Fatalf("lookups not rate limited: spread %v", spread)
	}
}

func TestLimiter(t *testing.T) {
	open := newLimiter(0)
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := open.Wait(context.Background()); err != nil {
			t.Fatalf("wait without delay: %v", err)
		}
	}
	if d := time.Since(start); d > 20*time.Millisecond {
		t.Fatalf("zero delay should not wait, took %v", d)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := open.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	slow := newLimiter(time.Hour)
	if err := slow.Wait(context.Background()); err != nil {
		t.Fatalf("first wait should pass: %v", err)
	}
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := slow.Wait(ctx); err == nil {
		t.Fatal("second wait inside the delay should fail")
	}
}

func TestImportArticle(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	db.CreateWord(conn, db.Word{Word: "river"})

	im := newTestImporter(conn, &fakeLooker{missing: map[string]bool{"ghost": true}})
	doc := &article.Document{
		URL:      "https://example.com/river",
		Title:    "Down the River",
		Byline:   "A. Writer",
		SiteName: "example.com",
	}
	counts := []article.WordCount{{Word: "river", Count: 3}, {Word: "boat", Count: 2}, {Word: "ghost", Count: 1}}

	res, err := im.ImportArticle(context.Background(), doc, counts)
	if err != nil {
		t.Fatalf("ImportArticle failed: %v", err)
	}
	if res.Succeeded != 1 || res.Skipped != 1 || res.Failed != 1 || res.Linked != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	linked, err := db.GetWordsBySource(conn, res.SourceID)
	if err != nil {
		t.Fatal(err)
	}
	if len(linked) != 2 {
		t.Fatalf("expected 2 linked words, got %d", len(linked))
	}

	var count int
	err = conn.QueryRow(`SELECT ws.occurrence_count FROM word_sources ws JOIN words w ON w.id = ws.word_id WHERE w.word = 'river'`).Scan(&count)
	if err != nil || count != 3 {
		t.Fatalf("river occurrence count = %d, err %v", count, err)
	}

	// importing the same article again reuses the source
	again, err := im.ImportArticle(context.Background(), doc, counts)
	if err != nil {
		t.Fatal(err)
	}
	if again.SourceID != res.SourceID || again.Skipped != 2 {
		t.Fatalf("unexpected second import: %+v", again)
	}
}

func TestReadWordList(t *testing.T) {
	words, err := ReadWordList(strings.NewReader("apple\n\n  Banana  \r\n\tcherry\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"apple", "Banana", "cherry"}
	if strings.Join(words, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", words, want)
	}
}

func BenchmarkImport(b *testing.B) {
	words := make([]string, 500)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("Workers_%d", workers), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				conn := setupDB(b)
				im := newTestImporter(conn, &fakeLooker{})
				im.Workers = workers
				im.BatchSize = 100
				b.StartTimer()

				_, err := im.Import(context.Background(), words)
				b.StopTimer()
				conn.Close()
				if err != nil {
					b.Fatalf("Import failed: %v", err)
				}
			}
		})
	}
}
