// Package article pulls vocabulary out of web pages: it fetches a page,
// extracts the readable text and splits it into English words.
package article

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const DefaultMaxBodySize = 10 * 1024 * 1024 // 10 MB limit for HTML content

// Document is the readable part of a web page.
type Document struct {
	URL      string
	Title    string
	Byline   string
	SiteName string
	Text     string
}

// Fetcher downloads pages.
type Fetcher struct {
	Client      *http.Client
	MaxBodySize int64
}

// NewFetcher creates a Fetcher with the given timeout and body limit.
func NewFetcher(timeout time.Duration, maxBody int64) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout}, MaxBodySize: maxBody}
}

// Fetch downloads rawURL and extracts its article text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	// Some sites refuse requests that do not look like a browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: got status code %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > f.MaxBodySize {
		return nil, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, f.MaxBodySize)
	}

	// Read one byte past the limit to tell a truncated body from one that fits exactly.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.MaxBodySize {
		return nil, fmt.Errorf("response body exceeded maximum size limit of %d bytes", f.MaxBodySize)
	}

	return Extract(body, parsedURL)
}

// Extract runs readability over an HTML page.
func Extract(html []byte, pageURL *url.URL) (*Document, error) {
	a, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}
	doc := &Document{
		Title:    strings.TrimSpace(a.Title),
		Byline:   strings.TrimSpace(a.Byline),
		SiteName: strings.TrimSpace(a.SiteName),
		Text:     a.TextContent,
	}
	if pageURL != nil {
		doc.URL = pageURL.String()
		if doc.SiteName == "" {
			doc.SiteName = pageURL.Hostname()
		}
	}
	return doc, nil
}

// Sentence is one sentence of a document with the words found in it.
type Sentence struct {
	Text  string
	Words []string
}

// WordCount is a word and the number of times it occurs.
type WordCount struct {
	Word  string
	Count int
}

var reWord = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?`)

// Tokenizer splits English text into lowercase words.
type Tokenizer struct {
	MinLength int
	StopWords map[string]struct{}
}

// NewTokenizer returns a Tokenizer with the built-in stop words.
func NewTokenizer(minLength int) *Tokenizer {
	return &Tokenizer{MinLength: minLength, StopWords: defaultStopWords}
}

// Words returns the words of text that pass the length and stop word filters.
// Contractions are dropped ("don't"), possessives lose their "'s".
func (t *Tokenizer) Words(text string) []string {
	var out []string
	for _, m := range reWord.FindAllString(text, -1) {
		w := strings.ToLower(m)
		if i := strings.IndexByte(w, '\''); i >= 0 {
			if w[i+1:] != "s" {
				continue
			}
			w = w[:i]
		}
		if len(w) < t.MinLength {
			continue
		}
		if _, stop := t.StopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// AnalyzeDocument splits the text into sentences and tokenizes each sentence.
func (t *Tokenizer) AnalyzeDocument(text string) []Sentence {
	var result []Sentence
	for _, s := range splitSentences(text) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		result = append(result, Sentence{Text: s, Words: t.Words(s)})
	}
	return result
}

// CountWords tallies the words of sentences in order of first appearance.
func CountWords(sentences []Sentence) []WordCount {
	index := make(map[string]int)
	var out []WordCount
	for _, s := range sentences {
		for _, w := range s.Words {
			if i, ok := index[w]; ok {
				out[i].Count++
				continue
			}
			index[w] = len(out)
			out = append(out, WordCount{Word: w, Count: 1})
		}
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

var defaultStopWords = toSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her",
	"was", "one", "our", "out", "has", "him", "his", "how", "its", "who", "did", "get",
	"she", "too", "use", "that", "with", "have", "this", "will", "your", "from", "they",
	"been", "were", "said", "each", "which", "their", "there", "what", "about", "would",
	"these", "them", "then", "than", "into", "some", "could", "other", "also", "when",
	"where", "while", "those", "such", "only", "over", "after", "before", "because",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
