// internal/bot/dispatcher.go
package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"searchbot/internal/citation"
	"searchbot/internal/common/errors"
	"searchbot/internal/common/logger"
	"searchbot/internal/common/metrics"
	"searchbot/internal/common/observability"
	"searchbot/internal/pipeline"
	"searchbot/pkg/registry"
)

const (
	msgEmptyPrompt     = "Usage: search <question>"
	msgUnexpectedError = "Unexpected error while resolving the citation."
)

// Runner is the answer pipeline behind the search command.
type Runner interface {
	Run(ctx context.Context, sess pipeline.Session, req pipeline.Request) error
}

// Dispatcher routes inbound messages. A reply-quote of a cached result with
// a citation index is handled by the lookup responder; everything else
// falls through to command dispatch against the registry.
type Dispatcher struct {
	runner   Runner
	cache    *citation.Cache
	registry *registry.CommandRegistry
	obs      *observability.Observability
	logger   logger.Logger
}

func NewDispatcher(runner Runner, cache *citation.Cache, reg *registry.CommandRegistry, obs *observability.Observability, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		runner:   runner,
		cache:    cache,
		registry: reg,
		obs:      obs,
		logger:   log.With(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Handle processes one inbound message. Messages that are neither citation
// lookups nor known commands are ignored.
func (d *Dispatcher) Handle(ctx context.Context, sess Session, msg Message) error {
	if msg.QuotedID != "" && d.cache.Enabled() {
		if rec, ok := d.cache.Get(ctx, msg.QuotedID); ok {
			return d.respondCitation(ctx, sess, msg, rec)
		}
	}

	name, prompt := splitCommand(msg.Content)
	cmd, ok := d.registry.Find(name)
	if !ok {
		return nil
	}
	if prompt == "" {
		_, err := sess.SendQuoted(ctx, msg.ID, usageMessage(cmd))
		return err
	}
	if err := cmd.ValidateInput(map[string]interface{}{"prompt": prompt}); err != nil {
		d.logger.Debug("command input rejected", map[string]interface{}{
			"command": cmd.Name,
			"error":   err.Error(),
		})
		_, sendErr := sess.SendQuoted(ctx, msg.ID, usageMessage(cmd))
		return sendErr
	}

	start := time.Now()
	err := d.runner.Run(ctx, sess, pipeline.Request{MessageID: msg.ID, Prompt: prompt})

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	d.obs.RecordQueryProcessed(ctx, outcome)
	d.obs.RecordQueryDuration(ctx, time.Since(start), outcome)

	return err
}

// respondCitation resolves a citation index against the cached record of
// the quoted message. Validation failures each get a dedicated reply; the
// invocation itself always completes.
func (d *Dispatcher) respondCitation(ctx context.Context, sess Session, msg Message, rec *citation.Record) error {
	link, err := rec.Resolve(msg.Content)

	var reply, result string
	var rangeErr *citation.OutOfRangeError
	switch {
	case err == nil:
		reply, result = link, "success"
	case stderrors.Is(err, citation.ErrInvalidIndex):
		reply, result = errors.UserMessages[errors.ErrCodeInvalidCitationIndex], "invalid_index"
	case stderrors.Is(err, citation.ErrNoCitations):
		reply, result = errors.UserMessages[errors.ErrCodeCitationNotFound], "not_found"
	case stderrors.As(err, &rangeErr):
		reply = fmt.Sprintf("%s Valid range is [1, %d].", errors.UserMessages[errors.ErrCodeCitationOutOfRange], rangeErr.N)
		result = "out_of_range"
	default:
		reply, result = msgUnexpectedError, "error"
	}

	metrics.CitationLookups.WithLabelValues(result).Inc()
	d.logger.Info("citation lookup", map[string]interface{}{
		"messageId": msg.QuotedID,
		"result":    result,
	})

	_, sendErr := sess.SendQuoted(ctx, msg.ID, reply)
	return sendErr
}

func usageMessage(cmd *registry.Command) string {
	if cmd.Usage != "" {
		return "Usage: " + cmd.Usage
	}
	return msgEmptyPrompt
}

// splitCommand splits a message into its leading command word and the
// remainder as free text.
func splitCommand(content string) (string, string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	name := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return name, ""
	}
	return name, strings.TrimSpace(parts[1])
}
