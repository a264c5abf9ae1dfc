// Command wordcards keeps a personal English vocabulary list: it looks words
// up, infers their inflected forms, stores them as flashcards and rates how
// well you know each one.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gonuts/commander"
)

// app carries the streams and context shared by every command.
type app struct {
	ctx    context.Context
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func (a *app) root() *commander.Command {
	return &commander.Command{
		UsageLine: "wordcards <command> [options] [arguments]",
		Short:     "personal vocabulary flashcards",
		Subcommands: []*commander.Command{
			a.lookupCmd(),
			a.addCmd(),
			a.importCmd(),
			a.studyCmd(),
			a.showCmd(),
			a.searchCmd(),
			a.rememberCmd(),
			a.forgetCmd(),
			a.starsCmd(),
			a.completeCmd(),
			a.deleteCmd(),
			a.clearCmd(),
			a.configCmd(),
		},
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	a.ctx = ctx
	return a.root().Dispatch(ctx, args)
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "**error**: %v\n", err)
	os.Exit(1)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		exit(err)
	}
}
