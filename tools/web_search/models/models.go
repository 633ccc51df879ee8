package models

// Result is one normalized web-search hit, the shape the research tooling
// hands back to the model regardless of which backend produced it.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"relevance_score"`
}
