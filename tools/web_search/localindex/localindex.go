// Package localindex is an offline search backend over an in-process bleve
// index. It serves demos and tests that must run without an API key, behind
// the same interface as the hosted backends.
package localindex

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve"

	"github.com/orbiterhq/deepdive/tools/web_search/models"
	"github.com/orbiterhq/deepdive/utils"
)

// Document is one searchable entry in the local corpus.
type Document struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Search indexes a document corpus in memory and answers queries against it.
type Search struct {
	index bleve.Index
}

// New builds an in-memory index over the given documents.
func New(docs []Document) (*Search, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	for i, doc := range docs {
		if err := index.Index(fmt.Sprintf("doc-%d", i), doc); err != nil {
			return nil, fmt.Errorf("index document %d: %w", i, err)
		}
	}
	return &Search{index: index}, nil
}

// Open loads an existing bleve index from disk.
func Open(path string) (*Search, error) {
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	return &Search{index: index}, nil
}

// Search runs a match query and returns up to k hits with their bleve scores.
func (s *Search) Search(ctx context.Context, q string, k int) ([]models.Result, error) {
	query := bleve.NewMatchQuery(q)
	req := bleve.NewSearchRequestOptions(query, k, 0, false)
	req.Fields = []string{"title", "url", "content"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]models.Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, models.Result{
			Title:   utils.Str(hit.Fields["title"]),
			URL:     utils.Str(hit.Fields["url"]),
			Content: utils.Str(hit.Fields["content"]),
			Score:   hit.Score,
		})
	}
	return out, nil
}

// Close releases the underlying index.
func (s *Search) Close() error { return s.index.Close() }
