package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orbiterhq/deepdive/provider"
	webfetch "github.com/orbiterhq/deepdive/tools/web_fetch"
	search "github.com/orbiterhq/deepdive/tools/web_search"
)

const (
	toolWebSearch = "web_search"
	toolWebFetch  = "web_fetch"
)

// ToolSet routes the model's tool calls to the concrete capabilities the
// researcher is allowed to use.
type ToolSet struct {
	searcher   search.WebSearcher
	fetcher    *webfetch.Fetcher
	maxResults int
}

func NewToolSet(searcher search.WebSearcher, fetcher *webfetch.Fetcher, maxResults int) *ToolSet {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &ToolSet{searcher: searcher, fetcher: fetcher, maxResults: maxResults}
}

func (t *ToolSet) Declarations() []provider.ToolDeclaration {
	decls := []provider.ToolDeclaration{
		{
			Name:        toolWebSearch,
			Description: "Search the web and return a ranked list of results with title, url and content snippet.",
			Input: provider.Schema{
				Type: "object",
				Properties: map[string]provider.Schema{
					"query": {Type: "string", Description: "The search query"},
				},
				Required: []string{"query"},
			},
		},
	}
	if t.fetcher != nil {
		decls = append(decls, provider.ToolDeclaration{
			Name:        toolWebFetch,
			Description: "Fetch a web page and return its readable text content.",
			Input: provider.Schema{
				Type: "object",
				Properties: map[string]provider.Schema{
					"url": {Type: "string", Description: "The absolute URL to fetch"},
				},
				Required: []string{"url"},
			},
		})
	}
	return decls
}

// Dispatch executes one tool call and returns its result serialized as JSON.
func (t *ToolSet) Dispatch(ctx context.Context, call provider.ToolCall) (string, error) {
	switch call.Name {
	case toolWebSearch:
		return t.search(ctx, call.Arguments)
	case toolWebFetch:
		return t.fetch(ctx, call.Arguments)
	default:
		return "", &UnknownToolError{Name: call.Name}
	}
}

func (t *ToolSet) search(ctx context.Context, args map[string]any) (string, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return "", fmt.Errorf("web_search requires a non-empty query argument")
	}
	results, err := t.searcher.Search(ctx, query, t.maxResults)
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("web_search: encode results: %w", err)
	}
	return string(data), nil
}

func (t *ToolSet) fetch(ctx context.Context, args map[string]any) (string, error) {
	if t.fetcher == nil {
		return "", &UnknownToolError{Name: toolWebFetch}
	}
	rawURL, ok := args["url"].(string)
	if !ok || rawURL == "" {
		return "", fmt.Errorf("web_fetch requires a non-empty url argument")
	}
	page, err := t.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("web_fetch: %w", err)
	}
	data, err := json.Marshal(page)
	if err != nil {
		return "", fmt.Errorf("web_fetch: encode page: %w", err)
	}
	return string(data), nil
}
