// internal/pipeline/orchestrator.go
package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"searchbot/internal/citation"
	"searchbot/internal/common/errors"
	"searchbot/internal/common/logger"
	"searchbot/internal/common/metrics"
	"searchbot/internal/llm"
	"searchbot/internal/search"
)

const msgNoResults = "No relevant search results were found."

// Completer is the opaque completion service.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Searcher fetches and extracts search results for a keyword query.
type Searcher interface {
	Search(ctx context.Context, keywords string) ([]search.Result, error)
}

// Renderer converts Markdown to image bytes. A nil Renderer means the
// collaborator is absent and the pipeline falls back to text output.
type Renderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

// Session delivers outbound content to the originating conversation.
type Session interface {
	Send(ctx context.Context, text string) (string, error)
	SendQuoted(ctx context.Context, quoteID, text string) (string, error)
	SendImageQuoted(ctx context.Context, quoteID string, image []byte) (string, error)
	Retract(ctx context.Context, messageID string) error
}

// Request is one triggering user message.
type Request struct {
	MessageID string
	Prompt    string
}

// Config holds the per-process pipeline settings, read-only after startup.
type Config struct {
	Persona  string
	TextMode bool
	Verbose  bool
}

// Orchestrator drives the end-to-end flow: reformulate the query, fetch and
// extract results, summarize with a grounding prompt, rewrite citations,
// render, deliver, and cache the citation list. Each invocation is
// independent; the citation cache is the only cross-call state.
type Orchestrator struct {
	llm    Completer
	search Searcher
	render Renderer
	cache  *citation.Cache
	cfg    Config
	logger logger.Logger
}

func New(completer Completer, searcher Searcher, renderer Renderer, cache *citation.Cache, cfg Config, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		llm:    completer,
		search: searcher,
		render: renderer,
		cache:  cache,
		cfg:    cfg,
		logger: log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// Run processes one user query. Transport failures abort the invocation:
// the error is logged, a generic failure message is sent best-effort, and
// the error propagates to the caller.
func (o *Orchestrator) Run(ctx context.Context, sess Session, req Request) error {
	start := time.Now()
	progress := newProgress(sess, o.cfg.Verbose, o.logger)
	defer progress.clear(ctx)

	progress.update(ctx, "(thinking)")

	stageStart := time.Now()
	keywords, err := o.llm.Complete(ctx, reformulationMessages(req.Prompt))
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return o.fail(ctx, sess, req, errors.NewLLMTimeoutError())
		}
		return o.fail(ctx, sess, req, errors.NewReformulationFailedError(err))
	}
	metrics.PipelineStageDuration.WithLabelValues("reformulate").Observe(time.Since(stageStart).Seconds())

	progress.update(ctx, "(searching: "+keywords+")")

	stageStart = time.Now()
	results, err := o.search.Search(ctx, keywords)
	if stderrors.Is(err, search.ErrNoResults) {
		progress.clear(ctx)
		if _, sendErr := sess.SendQuoted(ctx, req.MessageID, msgNoResults); sendErr != nil {
			return o.fail(ctx, sess, req, errors.NewTransportFailedError(sendErr))
		}
		metrics.PipelineRuns.WithLabelValues("no_results").Inc()
		return nil
	}
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return o.fail(ctx, sess, req, errors.NewSearchTimeoutError())
		}
		return o.fail(ctx, sess, req, errors.NewSearchFetchFailedError(err))
	}
	metrics.PipelineStageDuration.WithLabelValues("search").Observe(time.Since(stageStart).Seconds())

	progress.update(ctx, "(summarizing)")

	stageStart = time.Now()
	answer, err := o.llm.Complete(ctx, groundingMessages(o.cfg.Persona, results, req.Prompt))
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return o.fail(ctx, sess, req, errors.NewLLMTimeoutError())
		}
		return o.fail(ctx, sess, req, errors.NewSummaryFailedError(err))
	}
	metrics.PipelineStageDuration.WithLabelValues("summarize").Observe(time.Since(stageStart).Seconds())

	rewritten := citation.Rewrite(answer)

	progress.update(ctx, "(rendering)")

	elapsed := time.Since(start)
	var sentID string
	if o.render != nil && !o.cfg.TextMode {
		stageStart = time.Now()
		image, renderErr := o.render.Render(ctx, BuildMarkdown(keywords, rewritten.ImageMarkdown(), elapsed))
		if renderErr != nil {
			return o.fail(ctx, sess, req, errors.NewRenderFailedError(renderErr))
		}
		metrics.PipelineStageDuration.WithLabelValues("render").Observe(time.Since(stageStart).Seconds())

		progress.clear(ctx)
		sentID, err = sess.SendImageQuoted(ctx, req.MessageID, image)
	} else {
		progress.clear(ctx)
		sentID, err = sess.SendQuoted(ctx, req.MessageID, BuildText(keywords, rewritten.PlainText(), elapsed))
	}
	if err != nil {
		return o.fail(ctx, sess, req, errors.NewTransportFailedError(err))
	}

	o.cache.Put(ctx, sentID, rewritten.Links)

	metrics.PipelineRuns.WithLabelValues("success").Inc()
	o.logger.Info("query answered", map[string]interface{}{
		"keywords":  keywords,
		"links":     len(rewritten.Links),
		"elapsedMs": time.Since(start).Milliseconds(),
	})

	return nil
}

// fail logs the pipeline failure, notifies the user best-effort, and
// returns the error to abort the invocation.
func (o *Orchestrator) fail(ctx context.Context, sess Session, req Request, err *errors.StandardError) error {
	metrics.PipelineRuns.WithLabelValues("error").Inc()
	o.logger.Error("pipeline aborted", map[string]interface{}{
		"errorCode": string(err.Code),
		"error":     err.Details,
		"retryable": errors.IsRetryable(err),
	})

	if _, sendErr := sess.SendQuoted(ctx, req.MessageID, errors.GenericFailureMessage); sendErr != nil {
		o.logger.Warn("failure notice not delivered", map[string]interface{}{"error": sendErr.Error()})
	}

	return err
}

// progress manages the sent-then-retracted notices of verbose mode. All of
// its operations are best-effort and never affect pipeline outcomes.
type progress struct {
	sess    Session
	enabled bool
	lastID  string
	logger  logger.Logger
}

func newProgress(sess Session, enabled bool, log logger.Logger) *progress {
	return &progress{sess: sess, enabled: enabled, logger: log}
}

func (p *progress) update(ctx context.Context, notice string) {
	if !p.enabled {
		return
	}
	p.clear(ctx)
	id, err := p.sess.Send(ctx, notice)
	if err != nil {
		p.logger.Debug("progress notice failed", map[string]interface{}{"error": err.Error()})
		return
	}
	p.lastID = id
}

func (p *progress) clear(ctx context.Context) {
	if !p.enabled || p.lastID == "" {
		return
	}
	if err := p.sess.Retract(ctx, p.lastID); err != nil {
		p.logger.Debug("progress retract failed", map[string]interface{}{"error": err.Error()})
	}
	p.lastID = ""
}
