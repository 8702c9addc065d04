package reply

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout reports that no qualifying reply or reaction arrived
// within the wait bound.
var ErrTimeout = errors.New("no response before the deadline")

// Channel is the messaging-platform capability the enrollment flow
// consumes: send a message or reaction, and wait for the originating
// user's next qualifying reply or reaction. Waits are bounded; a wait
// that expires returns ErrTimeout, any other error is a transport
// failure.
type Channel interface {
	SendMessage(ctx context.Context, channelID, text string) (messageID string, err error)
	SendReaction(ctx context.Context, channelID, messageID, emoji string) error
	AwaitReply(ctx context.Context, channelID, userID string, timeout time.Duration) (string, error)
	AwaitReaction(ctx context.Context, channelID, messageID, userID string, emojis []string, timeout time.Duration) (string, error)
}
