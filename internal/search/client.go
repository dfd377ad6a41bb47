// internal/search/client.go
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"searchbot/internal/common/config"
	httpclient "searchbot/internal/common/http"
	"searchbot/internal/common/logger"
	"searchbot/internal/common/metrics"
)

// Client fetches and extracts search-engine result pages.
type Client struct {
	baseURL   string
	userAgent string
	client    *httpclient.Client
	logger    logger.Logger
}

func NewClient(cfg config.SearchConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client:    httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger:    log.With(map[string]interface{}{"component": "search"}),
	}
}

// Search fetches the results page for the given keywords and extracts the
// structured result records. Returns ErrNoResults when the page has no
// usable result blocks.
func (c *Client) Search(ctx context.Context, keywords string) ([]Result, error) {
	endpoint := c.baseURL + url.QueryEscape(keywords)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	results, err := Extract(string(body))
	if err != nil {
		return nil, err
	}

	metrics.SearchResultsExtracted.Observe(float64(len(results)))
	c.logger.Info("search completed", map[string]interface{}{
		"keywords":    keywords,
		"resultCount": len(results),
	})

	return results, nil
}
