// internal/bot/transport.go
package bot

import "context"

// Message is one inbound chat message. QuotedID is set when the message is
// a reply-quote of a prior message.
type Message struct {
	ID        string
	ChannelID string
	UserID    string
	Content   string
	QuotedID  string
}

// Session delivers outbound content to the conversation a message came
// from. Implementations are transport adapters; the pipeline only ever
// talks to this interface.
type Session interface {
	Send(ctx context.Context, text string) (string, error)
	SendQuoted(ctx context.Context, quoteID, text string) (string, error)
	SendImageQuoted(ctx context.Context, quoteID string, image []byte) (string, error)
	Retract(ctx context.Context, messageID string) error
}
