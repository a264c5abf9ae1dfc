package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/japaniel/wordcards/pkg/db"
	"github.com/japaniel/wordcards/pkg/dictionary"
	"github.com/japaniel/wordcards/pkg/lookup"
	"github.com/japaniel/wordcards/pkg/morphology"
)

const maxSensesShown = 3

type styles struct {
	word    lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	stars   lipgloss.Style
	meaning lipgloss.Style
}

// newStyles detects the color support of w, so piped output stays plain.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		word:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:   r.NewStyle().Foreground(lipgloss.Color("8")),
		dim:     r.NewStyle().Faint(true),
		stars:   r.NewStyle().Foreground(lipgloss.Color("11")),
		meaning: r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

func starBar(n int) string {
	n = max(0, min(db.MaxStars, n))
	return strings.Repeat("★", n) + strings.Repeat("☆", db.MaxStars-n)
}

func (a *app) printHeader(s styles, word, phonetic string, pos morphology.PartOfSpeech) {
	line := s.word.Render(word)
	if phonetic != "" {
		line += " " + s.dim.Render(phonetic)
	}
	if pos != "" {
		line += " " + s.label.Render(string(pos))
	}
	fmt.Fprintln(a.out, line)
}

func (a *app) printForms(s styles, forms *morphology.FormSet) {
	if forms == nil {
		return
	}
	for label, value := range forms.All() {
		fmt.Fprintf(a.out, "  %s %s\n", s.label.Render(label+":"), value)
	}
}

func (a *app) printDefinitions(s styles, defs []dictionary.DefinitionEntry) {
	for _, d := range defs {
		fmt.Fprintf(a.out, "  %s\n", s.label.Render(d.POS))
		for i, sense := range d.Senses {
			if i == maxSensesShown {
				fmt.Fprintf(a.out, "    %s\n", s.dim.Render(fmt.Sprintf("(+%d more)", len(d.Senses)-i)))
				break
			}
			fmt.Fprintf(a.out, "    %d. %s\n", i+1, sense)
		}
	}
}

// printCard shows a freshly looked-up word.
func (a *app) printCard(card *lookup.Card) {
	s := newStyles(a.out)
	a.printHeader(s, card.Word, card.Phonetic, card.PartOfSpeech)
	fmt.Fprintf(a.out, "  %s\n", s.meaning.Render(card.Meaning))
	a.printForms(s, card.Forms)
	if card.Entry != nil {
		a.printDefinitions(s, card.Entry.Definitions())
	}
}

// printWord shows a stored word. Forms and definitions are only shown when
// detailed is set.
func (a *app) printWord(w db.Word, detailed bool) {
	s := newStyles(a.out)
	if !detailed {
		fmt.Fprintf(a.out, "%s %s  %s\n", s.stars.Render(starBar(w.Stars)), s.word.Render(w.Word), w.Meaning)
		return
	}
	a.printHeader(s, w.Word, w.Phonetic, w.PartOfSpeech)
	fmt.Fprintf(a.out, "  %s  %s\n", s.stars.Render(starBar(w.Stars)), s.meaning.Render(w.Meaning))
	a.printForms(s, w.Forms)
	if defs, err := dictionary.ParseDefinitions(w.Definitions); err == nil {
		a.printDefinitions(s, defs)
	}
	fmt.Fprintf(a.out, "  %s %s\n", s.label.Render("imported:"), w.ImportDate.Local().Format("2006-01-02 15:04"))
}
