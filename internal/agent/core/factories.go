package core

import (
	"fmt"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/provider"
	openai_provider "github.com/orbiterhq/deepdive/provider/openai"
	webfetch "github.com/orbiterhq/deepdive/tools/web_fetch"
	search "github.com/orbiterhq/deepdive/tools/web_search"
	"github.com/orbiterhq/deepdive/tools/web_search/localindex"
)

// NewLLMProvider constructs the configured model backend.
func NewLLMProvider(cfg config.LLMConfig) (provider.Provider, error) {
	switch provider.Client(cfg.Provider) {
	case provider.OpenAI, "":
		return openai_provider.New(openai_provider.Options{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// NewSearcher constructs the configured web-search backend.
func NewSearcher(cfg config.SearchConfig) (search.WebSearcher, error) {
	if cfg.Provider == "local" {
		if cfg.IndexPath == "" {
			return nil, fmt.Errorf("search.index_path is required for the local provider")
		}
		return localindex.Open(cfg.IndexPath)
	}
	return search.NewWebSearcher(search.Provider(cfg.Provider), cfg.APIKey)
}

// NewToolSetFromConfig wires the researcher's tool capabilities.
func NewToolSetFromConfig(cfg *config.Config) (*ToolSet, error) {
	searcher, err := NewSearcher(cfg.Search)
	if err != nil {
		return nil, err
	}
	var fetcher *webfetch.Fetcher
	if cfg.Fetch.Enabled {
		fetcher = webfetch.New(cfg.Fetch.Timeout)
	}
	return NewToolSet(searcher, fetcher, cfg.Search.MaxResults), nil
}
