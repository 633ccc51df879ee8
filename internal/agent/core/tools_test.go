package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/orbiterhq/deepdive/provider"
	"github.com/orbiterhq/deepdive/tools/web_search/models"
)

type fakeSearcher struct {
	gotQuery string
	gotK     int
	results  []models.Result
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, q string, k int) ([]models.Result, error) {
	f.gotQuery, f.gotK = q, k
	return f.results, f.err
}

func TestToolSetSearchDispatch(t *testing.T) {
	searcher := &fakeSearcher{results: []models.Result{
		{Title: "Go", URL: "https://go.dev", Content: "the Go language", Score: 1.0},
	}}
	ts := NewToolSet(searcher, nil, 5)

	out, err := ts.Dispatch(context.Background(), provider.ToolCall{
		ID: "c1", Name: "web_search", Arguments: map[string]any{"query": "golang"},
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if searcher.gotQuery != "golang" || searcher.gotK != 5 {
		t.Fatalf("searcher got query=%q k=%d", searcher.gotQuery, searcher.gotK)
	}
	var results []models.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://go.dev" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestToolSetUnknownTool(t *testing.T) {
	ts := NewToolSet(&fakeSearcher{}, nil, 5)
	_, err := ts.Dispatch(context.Background(), provider.ToolCall{Name: "read_mind"})
	var ute *UnknownToolError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnknownToolError, got %v", err)
	}
	if ute.Name != "read_mind" {
		t.Fatalf("error names wrong tool: %q", ute.Name)
	}
}

func TestToolSetMissingQuery(t *testing.T) {
	ts := NewToolSet(&fakeSearcher{}, nil, 5)
	if _, err := ts.Dispatch(context.Background(), provider.ToolCall{
		Name: "web_search", Arguments: map[string]any{},
	}); err == nil {
		t.Fatal("a search without a query must fail")
	}
}

func TestToolSetSearchFailure(t *testing.T) {
	ts := NewToolSet(&fakeSearcher{err: errors.New("quota exceeded")}, nil, 5)
	if _, err := ts.Dispatch(context.Background(), provider.ToolCall{
		Name: "web_search", Arguments: map[string]any{"query": "x"},
	}); err == nil {
		t.Fatal("a backend failure must surface as an error")
	}
}

func TestToolSetDeclarations(t *testing.T) {
	// Without a fetcher only web_search is declared.
	ts := NewToolSet(&fakeSearcher{}, nil, 5)
	decls := ts.Declarations()
	if len(decls) != 1 || decls[0].Name != "web_search" {
		t.Fatalf("unexpected declarations: %+v", decls)
	}
	if decls[0].Input.Properties["query"].Type != "string" {
		t.Fatalf("query schema missing: %+v", decls[0].Input)
	}
	if len(decls[0].Input.Required) != 1 || decls[0].Input.Required[0] != "query" {
		t.Fatalf("query not required: %+v", decls[0].Input)
	}
}
