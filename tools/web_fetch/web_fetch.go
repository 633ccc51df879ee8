// Package web_fetch retrieves a web page and reduces it to readable text so
// the researcher can read a source behind a search hit.
package web_fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Page is the readable form of a fetched document.
type Page struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
	Text    string `json:"text"`
}

// maxTextLen bounds how much page text is handed back to the model.
const maxTextLen = 8000

// Fetcher downloads pages over plain HTTP and extracts their main content.
type Fetcher struct {
	httpClient *http.Client
}

func New(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

// Fetch downloads rawURL and runs readability extraction over the response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Page{}, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "deepdive/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return Page{}, fmt.Errorf("extract %s: %w", rawURL, err)
	}

	text := article.TextContent
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}
	return Page{
		URL:     rawURL,
		Title:   article.Title,
		Excerpt: article.Excerpt,
		Text:    text,
	}, nil
}
