package enroll

import (
	"context"
	"errors"
	"time"

	"boombot/pkg/reply"
)

type Decision int

const (
	Accepted Decision = iota
	Declined
	NoResponse
)

const (
	emojiProceed = "✅" // ✅
	emojiCancel  = "❌" // ❌

	confirmText = "BoomBot can link your Riot account so you get Valorant shop notifications. " +
		"Your password is sent to Riot once for verification and is never stored. " +
		"React ✅ to continue or ❌ to cancel."
)

// Gate runs the initial accept/cancel round: one explanation message,
// two reaction affordances, one bounded wait for the originating
// user's reaction. Reactions from other users or with other emojis are
// ignored by the channel and do not consume the wait.
type Gate struct {
	channel reply.Channel
	timeout time.Duration
}

func NewGate(channel reply.Channel, timeout time.Duration) *Gate {
	return &Gate{channel: channel, timeout: timeout}
}

// Await returns NoResponse on timeout; any channel transport failure
// propagates to the orchestrator as fatal.
func (g *Gate) Await(ctx context.Context, s *Session) (Decision, error) {
	msgID, err := g.channel.SendMessage(ctx, s.ChannelID, confirmText)
	if err != nil {
		return NoResponse, err
	}
	if err := g.channel.SendReaction(ctx, s.ChannelID, msgID, emojiProceed); err != nil {
		return NoResponse, err
	}
	if err := g.channel.SendReaction(ctx, s.ChannelID, msgID, emojiCancel); err != nil {
		return NoResponse, err
	}

	emoji, err := g.channel.AwaitReaction(ctx, s.ChannelID, msgID, s.UserID,
		[]string{emojiProceed, emojiCancel}, g.timeout)
	if errors.Is(err, reply.ErrTimeout) {
		return NoResponse, nil
	}
	if err != nil {
		return NoResponse, err
	}

	if emoji == emojiProceed {
		return Accepted, nil
	}
	return Declined, nil
}
