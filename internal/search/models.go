// internal/search/models.go
package search

// Result is one structured record extracted from a search-results page.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}
