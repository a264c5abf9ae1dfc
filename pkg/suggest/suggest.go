// Package suggest completes partially typed words against the stored
// vocabulary.
package suggest

import (
	"sort"
	"strings"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Suggestion is a stored word matching a prefix.
type Suggestion struct {
	Word  string
	Stars int
}

// Completer is a prefix index over words. It is safe for concurrent use.
type Completer struct {
	mu   sync.RWMutex
	trie *patricia.Trie
	size int
}

// New creates an empty Completer.
func New() *Completer {
	return &Completer{trie: patricia.NewTrie()}
}

// Add indexes word with its star count, replacing any previous count.
func (c *Completer) Add(word string, stars int) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := patricia.Prefix(word)
	if !c.trie.Insert(key, stars) {
		c.trie.Set(key, stars)
		return
	}
	c.size++
}

// Remove drops word from the index.
func (c *Completer) Remove(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trie.Delete(patricia.Prefix(word)) {
		c.size--
	}
}

// Len returns the number of indexed words.
func (c *Completer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// Complete returns up to limit words starting with prefix in alphabetical
// order. limit <= 0 means no limit.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}

	var out []Suggestion
	c.mu.RLock()
	c.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		stars, _ := item.(int)
		out = append(out, Suggestion{Word: string(p), Stars: stars})
		return nil
	})
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
