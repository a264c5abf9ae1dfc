// Package dictionary talks to the two public services a lookup needs: the
// Free Dictionary API for English definitions and MyMemory for translations.
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	userAgent            = "wordcards-cli"

	// maxResponseSize caps API bodies read into memory.
	maxResponseSize = 2 * 1024 * 1024
)

// ErrNotFound is returned when the dictionary has no entry for a word.
var ErrNotFound = errors.New("word not found in dictionary")

// Client fetches entries from the Free Dictionary API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client. An empty baseURL selects DefaultDictionaryURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultDictionaryURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Define returns the first dictionary entry for word.
func (c *Client) Define(ctx context.Context, word string) (*Entry, error) {
	endpoint := c.BaseURL + "/" + url.PathEscape(word)
	var entries []Entry
	if err := getJSON(ctx, c.HTTPClient, endpoint, &entries); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", word, ErrNotFound)
		}
		return nil, err
	}
	if len(entries) == 0 || len(entries[0].Meanings) == 0 {
		return nil, fmt.Errorf("%q: %w", word, ErrNotFound)
	}
	return &entries[0], nil
}

// getJSON performs a GET and decodes a JSON body into out.
// A 404 is reported as ErrNotFound.
func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
