// internal/search/extractor.go
package search

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoResults is the designed terminal outcome for a results page with no
// usable result blocks. It is not a transport failure.
var ErrNoResults = errors.New("no search results")

const (
	resultSelector   = ".result"
	noResultClass    = "result--no-result"
	anchorSelector   = ".result__a"
	snippetSelector  = ".result__snippet"
	redirectPrefix   = "//duckduckgo.com"
	adServingPrefix  = "https://duckduckgo.com/y.js?ad_domain="
)

// Extract parses a search-results HTML document into structured records in
// document order. Ad entries are removed and redirect-wrapped hrefs are
// decoded to their true destination. Individual malformed blocks are
// skipped; a page with zero result blocks, or whose first block is the
// no-result variant, yields ErrNoResults.
func Extract(html string) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	blocks := doc.Find(resultSelector)
	if blocks.Length() == 0 || blocks.First().HasClass(noResultClass) {
		return nil, ErrNoResults
	}

	var results []Result
	blocks.Each(func(_ int, block *goquery.Selection) {
		anchor := block.Find(anchorSelector).First()
		snippet := block.Find(snippetSelector).First()
		if anchor.Length() == 0 || snippet.Length() == 0 {
			return
		}

		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			return
		}

		resolved, ok := normalizeHref(href)
		if !ok {
			return
		}
		if strings.HasPrefix(resolved, adServingPrefix) {
			return
		}

		results = append(results, Result{
			Title:       strings.TrimSpace(anchor.Text()),
			Description: strings.TrimSpace(snippet.Text()),
			URL:         resolved,
		})
	})

	if len(results) == 0 {
		return nil, ErrNoResults
	}

	return results, nil
}

// normalizeHref resolves a result href to an absolute URL. Hrefs routed
// through the search engine's own redirect wrapper carry the true
// destination in the uddg query parameter.
func normalizeHref(href string) (string, bool) {
	if strings.HasPrefix(href, redirectPrefix) {
		idx := strings.Index(href, "?")
		if idx < 0 {
			return "", false
		}
		params, err := url.ParseQuery(href[idx+1:])
		if err != nil {
			return "", false
		}
		href = params.Get("uddg")
		if href == "" {
			return "", false
		}
	}

	u, err := url.Parse(href)
	if err != nil || !u.IsAbs() {
		return "", false
	}
	return u.String(), true
}
