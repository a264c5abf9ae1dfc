package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gonuts/commander"

	"github.com/japaniel/wordcards/pkg/article"
	"github.com/japaniel/wordcards/pkg/config"
	"github.com/japaniel/wordcards/pkg/db"
	"github.com/japaniel/wordcards/pkg/ingest"
	"github.com/japaniel/wordcards/pkg/lookup"
	"github.com/japaniel/wordcards/pkg/suggest"
)

func (a *app) lookupCmd() *commander.Command {
	return &commander.Command{
		Run:       a.runLookup,
		UsageLine: "lookup [options] <word>",
		Short:     "look a word up without saving it",
		Flag:      *commonFlags("lookup"),
	}
}

func (a *app) runLookup(cmd *commander.Command, args []string) error {
	word, err := oneArg(args, "word")
	if err != nil {
		return err
	}
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	card, err := e.lookupService().Lookup(a.ctx, word)
	if err != nil {
		return err
	}
	a.printCard(card)
	if _, err := db.GetWordByText(e.conn, card.Word); err == nil {
		fmt.Fprintln(a.out, "(already in your word list)")
	}
	return nil
}

func (a *app) addCmd() *commander.Command {
	return &commander.Command{
		Run:       a.runAdd,
		UsageLine: "add [options] <word>",
		Short:     "look a word up and save it",
		Flag:      *commonFlags("add"),
	}
}

func (a *app) runAdd(cmd *commander.Command, args []string) error {
	word, err := oneArg(args, "word")
	if err != nil {
		return err
	}
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := db.GetWordByText(e.conn, lookup.Normalize(word)); err == nil {
		return fmt.Errorf("%q: %w", lookup.Normalize(word), db.ErrWordExists)
	}
	card, err := e.lookupService().Lookup(a.ctx, word)
	if err != nil {
		return err
	}
	rec, err := card.Record()
	if err != nil {
		return err
	}
	if _, err := db.CreateWord(e.conn, rec); err != nil {
		return err
	}
	a.printCard(card)
	fmt.Fprintf(a.out, "Added %q.\n", card.Word)
	return nil
}

func (a *app) importCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       a.runImport,
		UsageLine: "import [options] [words...]",
		Short:     "import many words at once",
		Long: `
import looks up every word given as an argument or read from -file (one
word per line, "-" for stdin) and saves the ones that are not in the word
list yet. With -url it imports the words of a web article instead and links
them to the article.
`,
		Flag: *commonFlags("import"),
	}
	cmd.Flag.String("file", "", "file with one word per line")
	cmd.Flag.String("url", "", "import the words of a web article")
	cmd.Flag.Bool("fast", false, "use the shorter delay between lookups")
	return cmd
}

func (a *app) runImport(cmd *commander.Command, args []string) error {
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	words := append([]string(nil), args...)
	if path := flagString(cmd, "file"); path != "" {
		fromFile, err := a.readWordFile(path)
		if err != nil {
			return err
		}
		words = append(words, fromFile...)
	}

	im := ingest.NewImporter(e.conn, e.lookupService())
	im.Delay = e.cfg.ImportDelay(flagBool(cmd, "fast"))
	im.Workers = e.cfg.Import.Workers
	im.BatchSize = e.cfg.Import.BatchSize
	im.ProgressEvery = e.cfg.Import.ProgressEvery
	im.Logger = e.log
	im.OnProgress = func(p ingest.Progress) {
		fmt.Fprintf(a.out, "[%d/%d] %s  added=%d skipped=%d failed=%d\n",
			p.Done, p.Total, p.Word, p.Succeeded, p.Skipped, p.Failed)
	}

	var sum ingest.Summary
	if rawURL := flagString(cmd, "url"); rawURL != "" {
		if len(words) > 0 {
			return errors.New("-url cannot be combined with words or -file")
		}
		fetcher := article.NewFetcher(e.cfg.Article.Timeout.Duration, e.cfg.Article.MaxBodyBytes)
		fmt.Fprintf(a.out, "Fetching %s...\n", rawURL)
		doc, err := fetcher.Fetch(a.ctx, rawURL)
		if err != nil {
			return err
		}
		tok := article.NewTokenizer(e.cfg.Article.MinWordLength)
		counts := article.CountWords(tok.AnalyzeDocument(doc.Text))
		fmt.Fprintf(a.out, "Title: %s\nFound %d distinct words.\n", doc.Title, len(counts))

		res, err := im.ImportArticle(a.ctx, doc, counts)
		sum = res.Summary
		if err != nil {
			a.printSummary(sum)
			return err
		}
		fmt.Fprintf(a.out, "Linked %d words to source %d.\n", res.Linked, res.SourceID)
	} else {
		if len(words) == 0 {
			return errors.New("nothing to import: pass words, -file or -url")
		}
		sum, err = im.Import(a.ctx, words)
		if err != nil {
			a.printSummary(sum)
			return err
		}
	}
	a.printSummary(sum)
	return nil
}

func (a *app) readWordFile(path string) ([]string, error) {
	if path == "-" {
		return ingest.ReadWordList(a.in)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadWordList(f)
}

func (a *app) printSummary(sum ingest.Summary) {
	fmt.Fprintf(a.out, "Import finished: %d added, %d skipped, %d failed.\n", sum.Succeeded, sum.Skipped, sum.Failed)
	for _, f := range sum.Failures {
		fmt.Fprintf(a.out, "  %s: %v\n", f.Word, f.Err)
	}
}

func (a *app) studyCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       a.runStudy,
		UsageLine: "study [options]",
		Short:     "list the word list as flashcards",
		Flag:      *commonFlags("study"),
	}
	cmd.Flag.String("sort", string(db.SortImport), "order: import, stars, alphabetical or random")
	return cmd
}

func (a *app) runStudy(cmd *commander.Command, args []string) error {
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	words, err := db.ListWords(e.conn, db.ParseSortOrder(flagString(cmd, "sort")))
	if err != nil {
		return err
	}
	if len(words) == 0 {
		fmt.Fprintln(a.out, "Your word list is empty.")
		return nil
	}
	for _, w := range words {
		a.printWord(w, false)
	}
	fmt.Fprintf(a.out, "%d words.\n", len(words))
	return nil
}

func (a *app) showCmd() *commander.Command {
	return &commander.Command{
		Run:       a.runShow,
		UsageLine: "show [options] <word>",
		Short:     "show a saved word with its forms and definitions",
		Flag:      *commonFlags("show"),
	}
}

func (a *app) runShow(cmd *commander.Command, args []string) error {
	word, err := oneArg(args, "word")
	if err != nil {
		return err
	}
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	w, err := e.storedWord(word)
	if err != nil {
		return err
	}
	a.printWord(w, true)
	return nil
}

func (a *app) searchCmd() *commander.Command {
	return &commander.Command{
		Run:       a.runSearch,
		UsageLine: "search [options] [query]",
		Short:     "find saved words by word or meaning; no query lists every word",
		Flag:      *commonFlags("search"),
	}
}

func (a *app) runSearch(cmd *commander.Command, args []string) error {
	if len(args) > 1 {
		return errors.New("expected at most one query")
	}
	var query string
	if len(args) == 1 {
		query = strings.TrimSpace(args[0])
	}
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	words, err := db.SearchWords(e.conn, strings.ToLower(query))
	if err != nil {
		return err
	}
	if len(words) == 0 && query == "" {
		fmt.Fprintln(a.out, "Your word list is empty.")
		return nil
	}
	if len(words) == 0 {
		fmt.Fprintf(a.out, "No saved word matches %q. Try: wordcards add %s\n", query, lookup.Normalize(query))
		return nil
	}
	for _, w := range words {
		a.printWord(w, false)
	}
	return nil
}

func (a *app) rememberCmd() *commander.Command {
	return &commander.Command{
		Run:       a.adjustRun(1),
		UsageLine: "remember [options] <word>",
		Short:     "add a star to a word you remembered",
		Flag:      *commonFlags("remember"),
	}
}

func (a *app) forgetCmd() *commander.Command {
	return &commander.Command{
		Run:       a.adjustRun(-1),
		UsageLine: "forget [options] <word>",
		Short:     "take a star from a word you forgot",
		Flag:      *commonFlags("forget"),
	}
}

func (a *app) adjustRun(delta int) func(*commander.Command, []string) error {
	return func(cmd *commander.Command, args []string) error {
		word, err := oneArg(args, "word")
		if err != nil {
			return err
		}
		e, err := a.open(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		w, err := e.storedWord(word)
		if err != nil {
			return err
		}
		w, err = db.AdjustStars(e.conn, w.ID, delta)
		if err != nil {
			return err
		}
		a.printWord(w, false)
		return nil
	}
}

func (a *app) starsCmd() *commander.Command {
	return &commander.Command{
		Run:       a.runStars,
		UsageLine: "stars [options] <word> <0-5>",
		Short:     "set the star rating of a word",
		Flag:      *commonFlags("stars"),
	}
}

func (a *app) runStars(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("expected a word and a rating")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating %q is not a number", args[1])
	}
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	w, err := e.storedWord(args[0])
	if err != nil {
		return err
	}
	w, err = db.UpdateStars(e.conn, w.ID, n)
	if err != nil {
		return err
	}
	a.printWord(w, false)
	return nil
}

func (a *app) completeCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       a.runComplete,
		UsageLine: "complete [options] <prefix>",
		Short:     "list saved words starting with a prefix",
		Flag:      *commonFlags("complete"),
	}
	cmd.Flag.Int("limit", 10, "maximum number of suggestions, 0 for all")
	return cmd
}

func (a *app) runComplete(cmd *commander.Command, args []string) error {
	prefix, err := oneArg(args, "prefix")
	if err != nil {
		return err
	}
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	words, err := db.ListWords(e.conn, db.SortImport)
	if err != nil {
		return err
	}
	c := suggest.New()
	for _, w := range words {
		c.Add(w.Word, w.Stars)
	}
	s := newStyles(a.out)
	for _, sg := range c.Complete(prefix, flagInt(cmd, "limit")) {
		fmt.Fprintf(a.out, "%s %s\n", sg.Word, s.stars.Render(starBar(sg.Stars)))
	}
	return nil
}

func (a *app) deleteCmd() *commander.Command {
	return &commander.Command{
		Run:       a.runDelete,
		UsageLine: "delete [options] <word>",
		Short:     "remove a word from the list",
		Flag:      *commonFlags("delete"),
	}
}

func (a *app) runDelete(cmd *commander.Command, args []string) error {
	word, err := oneArg(args, "word")
	if err != nil {
		return err
	}
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	w, err := e.storedWord(word)
	if err != nil {
		return err
	}
	if err := db.DeleteWord(e.conn, w.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %q.\n", w.Word)
	return nil
}

func (a *app) clearCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       a.runClear,
		UsageLine: "clear [options]",
		Short:     "delete every saved word",
		Flag:      *commonFlags("clear"),
	}
	cmd.Flag.Bool("yes", false, "do not ask for confirmation")
	return cmd
}

func (a *app) runClear(cmd *commander.Command, args []string) error {
	e, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if !flagBool(cmd, "yes") {
		n, err := db.CountWords(e.conn)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Delete all %d words? This cannot be undone. [y/N] ", n)
		answer, _ := bufio.NewReader(a.in).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}
	n, err := db.ClearWords(e.conn)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d words.\n", n)
	return nil
}

func (a *app) configCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       a.runConfig,
		UsageLine: "config [options]",
		Short:     "print the effective configuration",
		Flag:      *commonFlags("config"),
	}
	cmd.Flag.Bool("write", false, "write the configuration to the config path if no file exists there")
	return cmd
}

func (a *app) runConfig(cmd *commander.Command, args []string) error {
	cfg, path, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(a.out, "# %s\n", path)
	}
	if err := toml.NewEncoder(a.out).Encode(cfg); err != nil {
		return err
	}
	if !flagBool(cmd, "write") {
		return nil
	}
	if path == "" {
		return errors.New("no config path: pass -config")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s\n", path)
	return nil
}
