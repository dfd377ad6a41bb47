// internal/render/client.go
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"searchbot/internal/common/config"
	httpclient "searchbot/internal/common/http"
	"searchbot/internal/common/logger"
)

// Client talks to the external markdown-to-image rendering service. Its
// absence is a valid runtime condition; callers fall back to text output.
type Client struct {
	baseURL string
	client  *httpclient.Client
	logger  logger.Logger
}

func NewClient(cfg config.RenderConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger:  log.With(map[string]interface{}{"component": "render"}),
	}
}

// Render converts a Markdown document to image bytes.
func (c *Client) Render(ctx context.Context, markdown string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"markdown": markdown})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service returned %d", resp.StatusCode)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("markdown rendered", map[string]interface{}{
		"markdownBytes": len(markdown),
		"imageBytes":    len(img),
	})

	return img, nil
}
