// Package web_search binds the pluggable search backends behind one
// interface. Serper and Brave hit their hosted APIs; localindex searches an
// in-process bleve index for keyless runs.
package web_search

import (
	"context"
	"errors"

	"github.com/orbiterhq/deepdive/tools/web_search/brave"
	"github.com/orbiterhq/deepdive/tools/web_search/models"
	"github.com/orbiterhq/deepdive/tools/web_search/serper"
)

// WebSearcher answers a query with up to k ranked results.
type WebSearcher interface {
	Search(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported search provider")

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
