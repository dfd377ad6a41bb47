// internal/citation/cache.go
package citation

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"searchbot/internal/common/errors"
	"searchbot/internal/common/logger"
)

const keyPrefix = "citations:"

var (
	// ErrInvalidIndex reports a lookup input that is not a whole number.
	ErrInvalidIndex = stderrors.New("citation index must be a whole number")
	// ErrNoCitations reports a cached record with zero links.
	ErrNoCitations = stderrors.New("record has no citations")
)

// OutOfRangeError reports a whole-number index outside [1, N].
type OutOfRangeError struct {
	N int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("citation index out of range [1, %d]", e.N)
}

// Record is the ordered link list stored for one rendered message.
type Record struct {
	Links []string `json:"links"`
}

// Resolve returns the link at the given 1-based index. The raw input is
// validated as a whole number before any range check.
func (r *Record) Resolve(raw string) (string, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidIndex
	}
	if len(r.Links) == 0 {
		return "", ErrNoCitations
	}
	if idx < 1 || idx > len(r.Links) {
		return "", &OutOfRangeError{N: len(r.Links)}
	}
	return r.Links[idx-1], nil
}

// Store is the keyed storage backing the cache. database.RedisClient
// satisfies it.
type Store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// Cache associates a rendered message's identity with its ordered link
// list. A nil store degrades every operation to a silent no-op so the rest
// of the pipeline behaves identically with or without a configured backend.
type Cache struct {
	store  Store
	maxAge time.Duration
	logger logger.Logger
}

// New creates a Cache. Pass a nil store to disable caching; maxAge of zero
// stores records without expiry.
func New(store Store, maxAge time.Duration, log logger.Logger) *Cache {
	return &Cache{
		store:  store,
		maxAge: maxAge,
		logger: log.With(map[string]interface{}{"component": "citation-cache"}),
	}
}

// Enabled reports whether a backing store is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.store != nil
}

// Put stores (or overwrites) the citation list for a message id. Store
// failures are logged and swallowed; caching is best-effort.
func (c *Cache) Put(ctx context.Context, messageID string, links []string) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(Record{Links: links})
	if err != nil {
		c.logger.Error("marshal citation record", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := c.store.Set(ctx, keyPrefix+messageID, string(data), c.maxAge); err != nil {
		storeErr := errors.NewCacheUnavailableError(err)
		c.logger.Warn("citation cache write failed", map[string]interface{}{
			"messageId": messageID,
			"errorCode": string(storeErr.Code),
			"error":     storeErr.Details,
		})
		return
	}

	c.logger.Debug("citation record stored", map[string]interface{}{
		"messageId": messageID,
		"linkCount": len(links),
	})
}

// Get retrieves the record for a message id. Absent, expired, or unreadable
// records all report !ok.
func (c *Cache) Get(ctx context.Context, messageID string) (*Record, bool) {
	if !c.Enabled() {
		return nil, false
	}

	data, err := c.store.Get(ctx, keyPrefix+messageID)
	if err != nil {
		return nil, false
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		c.logger.Warn("corrupt citation record", map[string]interface{}{
			"messageId": messageID,
			"error":     err.Error(),
		})
		return nil, false
	}

	return &rec, true
}

// Resolve looks up the record for a message id and resolves the raw index
// input against it. A missing record reports !ok; resolution errors are
// ErrInvalidIndex, ErrNoCitations, or *OutOfRangeError.
func (c *Cache) Resolve(ctx context.Context, messageID, raw string) (string, bool, error) {
	rec, ok := c.Get(ctx, messageID)
	if !ok {
		return "", false, nil
	}
	link, err := rec.Resolve(raw)
	return link, true, err
}
