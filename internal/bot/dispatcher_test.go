// internal/bot/dispatcher_test.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchbot/internal/citation"
	"searchbot/internal/common/database"
	"searchbot/internal/common/logger"
	"searchbot/internal/common/observability"
	"searchbot/internal/pipeline"
	"searchbot/pkg/registry"
)

// ==========================
// Test Doubles
// ==========================

type fakeRunner struct {
	requests []pipeline.Request
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, sess pipeline.Session, req pipeline.Request) error {
	f.requests = append(f.requests, req)
	return f.err
}

type sentReply struct {
	quoteID string
	text    string
}

type recordingSession struct {
	replies []sentReply
	nextID  int
}

func (s *recordingSession) newID() string {
	s.nextID++
	return fmt.Sprintf("sent-%d", s.nextID)
}

func (s *recordingSession) Send(ctx context.Context, text string) (string, error) {
	return s.newID(), nil
}

func (s *recordingSession) SendQuoted(ctx context.Context, quoteID, text string) (string, error) {
	s.replies = append(s.replies, sentReply{quoteID: quoteID, text: text})
	return s.newID(), nil
}

func (s *recordingSession) SendImageQuoted(ctx context.Context, quoteID string, image []byte) (string, error) {
	return s.newID(), nil
}

func (s *recordingSession) Retract(ctx context.Context, messageID string) error {
	return nil
}

// ==========================
// Test Helper Functions
// ==========================

func testRegistry() *registry.CommandRegistry {
	return &registry.CommandRegistry{
		Version: "1.0.0",
		Commands: []registry.Command{
			{
				Name:    "search",
				Aliases: []string{"ask"},
				Usage:   "search <question>",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"prompt": map[string]interface{}{"type": "string", "minLength": 1},
					},
					"required": []interface{}{"prompt"},
				},
			},
		},
	}
}

func setupDispatcher(t *testing.T, runner *fakeRunner) (*Dispatcher, *citation.Cache) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := &database.RedisClient{Client: redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})}
	cache := citation.New(store, 0, logger.NewNoOpLogger())
	obs := observability.New("dispatcher-test")
	t.Cleanup(obs.Shutdown)

	return NewDispatcher(runner, cache, testRegistry(), obs, logger.NewNoOpLogger()), cache
}

var cachedLinks = []string{
	"https://en.wikipedia.org/wiki/Paris",
	"https://www.france.fr/en",
}

// ==========================
// Command Dispatch Tests
// ==========================

func TestDispatcher_Handle_RunsCommand(t *testing.T) {
	runner := &fakeRunner{}
	d, _ := setupDispatcher(t, runner)
	session := &recordingSession{}

	err := d.Handle(context.Background(), session, Message{
		ID:      "msg-1",
		Content: "search what is the capital of France?",
	})

	require.NoError(t, err)
	require.Len(t, runner.requests, 1)
	assert.Equal(t, "msg-1", runner.requests[0].MessageID)
	assert.Equal(t, "what is the capital of France?", runner.requests[0].Prompt)
}

func TestDispatcher_Handle_Alias(t *testing.T) {
	runner := &fakeRunner{}
	d, _ := setupDispatcher(t, runner)

	err := d.Handle(context.Background(), &recordingSession{}, Message{
		ID:      "msg-1",
		Content: "ask anything",
	})

	require.NoError(t, err)
	require.Len(t, runner.requests, 1)
}

func TestDispatcher_Handle_CommandCaseInsensitive(t *testing.T) {
	runner := &fakeRunner{}
	d, _ := setupDispatcher(t, runner)

	err := d.Handle(context.Background(), &recordingSession{}, Message{
		ID:      "msg-1",
		Content: "SEARCH capital of France",
	})

	require.NoError(t, err)
	require.Len(t, runner.requests, 1)
	assert.Equal(t, "capital of France", runner.requests[0].Prompt)
}

func TestDispatcher_Handle_UnknownCommandIgnored(t *testing.T) {
	runner := &fakeRunner{}
	d, _ := setupDispatcher(t, runner)
	session := &recordingSession{}

	err := d.Handle(context.Background(), session, Message{
		ID:      "msg-1",
		Content: "weather in Paris",
	})

	require.NoError(t, err)
	assert.Empty(t, runner.requests)
	assert.Empty(t, session.replies)
}

func TestDispatcher_Handle_EmptyPrompt(t *testing.T) {
	runner := &fakeRunner{}
	d, _ := setupDispatcher(t, runner)
	session := &recordingSession{}

	err := d.Handle(context.Background(), session, Message{
		ID:      "msg-1",
		Content: "search",
	})

	require.NoError(t, err)
	assert.Empty(t, runner.requests)
	require.Len(t, session.replies, 1)
	assert.Equal(t, msgEmptyPrompt, session.replies[0].text)
}

func TestDispatcher_Handle_SchemaRejection(t *testing.T) {
	runner := &fakeRunner{}
	obs := observability.New("dispatcher-test-schema")
	t.Cleanup(obs.Shutdown)

	reg := &registry.CommandRegistry{Commands: []registry.Command{
		{
			Name:  "search",
			Usage: "search <question>",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"prompt": map[string]interface{}{"type": "string", "minLength": 10},
				},
				"required": []interface{}{"prompt"},
			},
		},
	}}
	d := NewDispatcher(runner, citation.New(nil, 0, logger.NewNoOpLogger()), reg, obs, logger.NewNoOpLogger())
	session := &recordingSession{}

	err := d.Handle(context.Background(), session, Message{
		ID:      "msg-1",
		Content: "search hi",
	})

	require.NoError(t, err)
	assert.Empty(t, runner.requests)
	require.Len(t, session.replies, 1)
	assert.Equal(t, "Usage: search <question>", session.replies[0].text)
}

func TestDispatcher_Handle_RunnerErrorPropagates(t *testing.T) {
	runner := &fakeRunner{err: errors.New("pipeline aborted")}
	d, _ := setupDispatcher(t, runner)

	err := d.Handle(context.Background(), &recordingSession{}, Message{
		ID:      "msg-1",
		Content: "search something",
	})

	assert.Error(t, err)
}

// ==========================
// Citation Lookup Tests
// ==========================

func TestDispatcher_Handle_CitationLookup(t *testing.T) {
	runner := &fakeRunner{}
	d, cache := setupDispatcher(t, runner)
	session := &recordingSession{}
	ctx := context.Background()

	cache.Put(ctx, "answer-1", cachedLinks)

	err := d.Handle(ctx, session, Message{
		ID:       "msg-2",
		Content:  "2",
		QuotedID: "answer-1",
	})

	require.NoError(t, err)
	assert.Empty(t, runner.requests)
	require.Len(t, session.replies, 1)
	assert.Equal(t, "msg-2", session.replies[0].quoteID)
	assert.Equal(t, cachedLinks[1], session.replies[0].text)
}

func TestDispatcher_Handle_CitationOutOfRange(t *testing.T) {
	runner := &fakeRunner{}
	d, cache := setupDispatcher(t, runner)
	session := &recordingSession{}
	ctx := context.Background()

	cache.Put(ctx, "answer-1", cachedLinks)

	err := d.Handle(ctx, session, Message{
		ID:       "msg-2",
		Content:  "5",
		QuotedID: "answer-1",
	})

	require.NoError(t, err)
	require.Len(t, session.replies, 1)
	assert.Contains(t, session.replies[0].text, "[1, 2]")
}

func TestDispatcher_Handle_CitationInvalidIndex(t *testing.T) {
	runner := &fakeRunner{}
	d, cache := setupDispatcher(t, runner)
	session := &recordingSession{}
	ctx := context.Background()

	cache.Put(ctx, "answer-1", cachedLinks)

	err := d.Handle(ctx, session, Message{
		ID:       "msg-2",
		Content:  "1.5",
		QuotedID: "answer-1",
	})

	require.NoError(t, err)
	require.Len(t, session.replies, 1)
	assert.Contains(t, session.replies[0].text, "whole number")
}

func TestDispatcher_Handle_CitationNoLinks(t *testing.T) {
	runner := &fakeRunner{}
	d, cache := setupDispatcher(t, runner)
	session := &recordingSession{}
	ctx := context.Background()

	cache.Put(ctx, "answer-1", nil)

	err := d.Handle(ctx, session, Message{
		ID:       "msg-2",
		Content:  "1",
		QuotedID: "answer-1",
	})

	require.NoError(t, err)
	require.Len(t, session.replies, 1)
	assert.Contains(t, session.replies[0].text, "no citations")
}

func TestDispatcher_Handle_QuoteOfUncachedMessageFallsThrough(t *testing.T) {
	runner := &fakeRunner{}
	d, _ := setupDispatcher(t, runner)
	session := &recordingSession{}

	// Quoting an arbitrary message does not hijack command dispatch.
	err := d.Handle(context.Background(), session, Message{
		ID:       "msg-2",
		Content:  "search capital of France",
		QuotedID: "some-other-message",
	})

	require.NoError(t, err)
	require.Len(t, runner.requests, 1)
}

func TestDispatcher_Handle_CacheDisabledQuotedCommandStillRuns(t *testing.T) {
	runner := &fakeRunner{}
	obs := observability.New("dispatcher-test-nocache")
	t.Cleanup(obs.Shutdown)
	d := NewDispatcher(runner, citation.New(nil, 0, logger.NewNoOpLogger()), testRegistry(), obs, logger.NewNoOpLogger())

	err := d.Handle(context.Background(), &recordingSession{}, Message{
		ID:       "msg-2",
		Content:  "search capital of France",
		QuotedID: "answer-1",
	})

	require.NoError(t, err)
	require.Len(t, runner.requests, 1)
}

// ==========================
// Unit Tests
// ==========================

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantName   string
		wantPrompt string
	}{
		{name: "command with prompt", content: "search capital of France", wantName: "search", wantPrompt: "capital of France"},
		{name: "bare command", content: "search", wantName: "search", wantPrompt: ""},
		{name: "uppercased", content: "Search Paris", wantName: "search", wantPrompt: "Paris"},
		{name: "surrounding whitespace", content: "  search  Paris  ", wantName: "search", wantPrompt: "Paris"},
		{name: "empty", content: "", wantName: "", wantPrompt: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, prompt := splitCommand(tt.content)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantPrompt, prompt)
		})
	}
}
