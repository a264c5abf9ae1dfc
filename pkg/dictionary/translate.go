package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultTranslateURL = "https://api.mymemory.translated.net/get"

// ErrNoTranslation is returned when the service answers without a usable translation.
var ErrNoTranslation = errors.New("no translation available")

// Translator translates single words through the MyMemory API.
type Translator struct {
	BaseURL    string
	SourceLang string
	TargetLang string
	HTTPClient *http.Client
}

// NewTranslator creates a Translator for the given language pair.
func NewTranslator(baseURL, source, target string, timeout time.Duration) *Translator {
	if baseURL == "" {
		baseURL = DefaultTranslateURL
	}
	if source == "" {
		source = "en"
	}
	if target == "" {
		target = "zh"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Translator{
		BaseURL:    baseURL,
		SourceLang: source,
		TargetLang: target,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string  `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	// The service sends this as a number on success and sometimes as a string on errors.
	ResponseStatus  json.Number `json:"responseStatus"`
	ResponseDetails string      `json:"responseDetails"`
}

// Translate returns the translation of text.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", t.SourceLang+"|"+t.TargetLang)
	endpoint := t.BaseURL + "?" + q.Encode()

	var resp myMemoryResponse
	if err := getJSON(ctx, t.HTTPClient, endpoint, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNoTranslation
		}
		return "", err
	}
	if resp.ResponseStatus.String() != "200" {
		return "", fmt.Errorf("status %s %s: %w", resp.ResponseStatus, resp.ResponseDetails, ErrNoTranslation)
	}
	translated := strings.TrimSpace(resp.ResponseData.TranslatedText)
	if translated == "" {
		return "", ErrNoTranslation
	}
	return translated, nil
}
