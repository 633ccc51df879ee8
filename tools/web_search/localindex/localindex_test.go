package localindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func testCorpus() []Document {
	return []Document{
		{Title: "Go concurrency patterns", URL: "https://docs.example/concurrency", Content: "goroutines and channels form the basis of concurrency in Go"},
		{Title: "Rust ownership", URL: "https://docs.example/ownership", Content: "the borrow checker enforces memory safety at compile time"},
		{Title: "Go generics", URL: "https://docs.example/generics", Content: "type parameters arrived in Go 1.18"},
	}
}

func TestSearchRankedResults(t *testing.T) {
	idx, err := New(testCorpus())
	require.NoError(t, err)
	defer idx.Close()

	results, err := idx.Search(context.Background(), "concurrency goroutines", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, "Go concurrency patterns", results[0].Title)
	require.Equal(t, "https://docs.example/concurrency", results[0].URL)
	require.Greater(t, results[0].Score, 0.0)
}

func TestSearchBoundsResultCount(t *testing.T) {
	idx, err := New(testCorpus())
	require.NoError(t, err)
	defer idx.Close()

	results, err := idx.Search(context.Background(), "go", 1)
	require.NoError(t, err)
	require.LessOrEqual(t, len(results), 1)
}

func TestSearchNoMatches(t *testing.T) {
	idx, err := New(testCorpus())
	require.NoError(t, err)
	defer idx.Close()

	results, err := idx.Search(context.Background(), "zzzqqqxxx", 5)
	require.NoError(t, err)
	require.Empty(t, results)
}
