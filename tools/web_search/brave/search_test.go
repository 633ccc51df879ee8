package brave

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchNormalizesResults(t *testing.T) {
	var gotToken, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Subscription-Token")
		gotQuery = r.URL.Query().Get("q")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"web": map[string]any{
				"results": []map[string]any{
					{"title": "Comparison", "url": "https://x.example", "description": "langs"},
				},
			},
		})
	}))
	defer srv.Close()

	s := Search{ApiKey: "token", Endpoint: srv.URL}
	results, err := s.Search(context.Background(), "rust vs go", 5)
	require.NoError(t, err)
	require.Equal(t, "token", gotToken)
	// the query travels as rust+vs+go on the wire and decodes back to spaces
	require.Equal(t, "rust vs go", gotQuery)
	require.Len(t, results, 1)
	require.Equal(t, "Comparison", results[0].Title)
	require.Equal(t, "langs", results[0].Content)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := Search{ApiKey: "bad", Endpoint: srv.URL}
	_, err := s.Search(context.Background(), "anything", 3)
	require.Error(t, err)
}
