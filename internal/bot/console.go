// internal/bot/console.go
package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"searchbot/internal/common/logger"

	"github.com/google/uuid"
)

// Console is a Session over stdin/stdout for local runs. Sent messages get
// generated ids so reply-based citation lookup works interactively; images
// are written to the temp directory.
type Console struct {
	out    io.Writer
	logger logger.Logger
}

func NewConsole(log logger.Logger) *Console {
	return &Console{
		out:    os.Stdout,
		logger: log.With(map[string]interface{}{"component": "console"}),
	}
}

// newID returns a short id so replies typed by hand stay manageable.
func newID() string {
	return uuid.NewString()[:8]
}

func (c *Console) Send(ctx context.Context, text string) (string, error) {
	id := newID()
	fmt.Fprintf(c.out, "[%s] %s\n", id, text)
	return id, nil
}

func (c *Console) SendQuoted(ctx context.Context, quoteID, text string) (string, error) {
	id := newID()
	fmt.Fprintf(c.out, "[%s -> %s] %s\n", id, quoteID, text)
	return id, nil
}

func (c *Console) SendImageQuoted(ctx context.Context, quoteID string, image []byte) (string, error) {
	id := newID()
	path := filepath.Join(os.TempDir(), "searchbot-"+id+".png")
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", err
	}
	fmt.Fprintf(c.out, "[%s -> %s] (image saved to %s)\n", id, quoteID, path)
	return id, nil
}

func (c *Console) Retract(ctx context.Context, messageID string) error {
	fmt.Fprintf(c.out, "[%s] (retracted)\n", messageID)
	return nil
}

// Listen reads stdin lines and dispatches each as an inbound message until
// EOF or context cancellation. A line of the form "@<messageId> <text>"
// is treated as a reply quoting that message.
func (c *Console) Listen(ctx context.Context, handle func(context.Context, Session, Message) error) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		msg := Message{
			ID:        newID(),
			ChannelID: "console",
			UserID:    "local",
			Content:   line,
		}
		if strings.HasPrefix(line, "@") {
			parts := strings.SplitN(line[1:], " ", 2)
			if len(parts) == 2 {
				msg.QuotedID = parts[0]
				msg.Content = strings.TrimSpace(parts[1])
			}
		}

		if err := handle(ctx, c, msg); err != nil {
			c.logger.Error("message handling failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return scanner.Err()
}
