package web_fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><head><title>Benchmark results</title></head>
<body>
<nav>home | about | contact</nav>
<article>
<h1>Benchmark results</h1>
<p>The new allocator reduced p99 latency by forty percent across all tested workloads.
This paragraph carries the substance of the page and should survive extraction.</p>
<p>A second paragraph with additional measurements and methodology notes, long enough
to convince the readability heuristics that this is the main content block.</p>
</article>
</body></html>`

func TestFetchExtractsReadableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := New(5 * time.Second)
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, srv.URL, page.URL)
	require.Contains(t, page.Text, "p99 latency")
	require.NotContains(t, page.Text, "home | about")
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	f := New(time.Second)
	_, err := f.Fetch(context.Background(), "not a url")
	require.Error(t, err)
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(time.Second)
	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
}
