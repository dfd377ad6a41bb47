// internal/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"searchbot/internal/common/config"
	"searchbot/internal/common/logger"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyCompletion = errors.New("completion service returned no choices")

// Message is one chat message sent to the completion service.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

// Client wraps the OpenAI-compatible completion endpoint. It is constructed
// once from configuration and passed explicitly to its consumers.
type Client struct {
	api    *openai.Client
	model  string
	logger logger.Logger
}

func NewClient(cfg config.OpenAIConfig, log logger.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	apiCfg.HTTPClient = &http.Client{Timeout: config.GetDuration(cfg.Timeout)}

	return &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		model:  cfg.Model,
		logger: log.With(map[string]interface{}{"component": "llm"}),
	}
}

// Complete sends the messages to the configured model and returns the first
// choice's text content verbatim.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	c.logger.Debug("completion received", map[string]interface{}{
		"model":  c.model,
		"length": len(resp.Choices[0].Message.Content),
	})

	return resp.Choices[0].Message.Content, nil
}
