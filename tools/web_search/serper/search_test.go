package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchNormalizesResults(t *testing.T) {
	var gotKey string
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		_ = json.NewDecoder(r.Body).Decode(&payload)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]any{
				{"title": "First", "link": "https://a.example", "snippet": "about go"},
				{"title": "Second", "link": "https://b.example", "snippet": "more go"},
				{"title": "Third", "link": "https://c.example", "snippet": "extra"},
			},
		})
	}))
	defer srv.Close()

	s := Search{ApiKey: "api-key", Endpoint: srv.URL}
	results, err := s.Search(context.Background(), "go testing", 2)
	require.NoError(t, err)
	require.Equal(t, "api-key", gotKey)
	require.Equal(t, "go testing", payload["q"])
	require.Len(t, results, 2)
	require.Equal(t, "First", results[0].Title)
	require.Equal(t, "https://a.example", results[0].URL)
	require.Equal(t, "about go", results[0].Content)
	require.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := Search{ApiKey: "bad", Endpoint: srv.URL}
	_, err := s.Search(context.Background(), "anything", 3)
	require.Error(t, err)
}
