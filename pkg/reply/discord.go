package reply

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Channel on top of a discordgo gateway session.
// Waits register a temporary gateway handler, filter events down to the
// originating user (and, for reactions, the offered emojis), and remove
// the handler on return; non-matching events never consume the wait.
type Discord struct {
	session *discordgo.Session
}

func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

// OpenDM opens (or reuses) the private channel with a user and returns
// its channel ID.
func (d *Discord) OpenDM(userID string) (string, error) {
	ch, err := d.session.UserChannelCreate(userID)
	if err != nil {
		return "", fmt.Errorf("failed to open DM channel: %w", err)
	}
	return ch.ID, nil
}

func (d *Discord) SendMessage(_ context.Context, channelID, text string) (string, error) {
	msg, err := d.session.ChannelMessageSend(channelID, text)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

func (d *Discord) SendReaction(_ context.Context, channelID, messageID, emoji string) error {
	if err := d.session.MessageReactionAdd(channelID, messageID, emoji); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

func (d *Discord) AwaitReply(ctx context.Context, channelID, userID string, timeout time.Duration) (string, error) {
	replies := make(chan string, 1)

	remove := d.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.ChannelID != channelID || m.Author == nil || m.Author.ID != userID {
			return
		}
		select {
		case replies <- m.Content:
		default:
		}
	})
	defer remove()

	return await(ctx, replies, timeout)
}

func (d *Discord) AwaitReaction(ctx context.Context, channelID, messageID, userID string, emojis []string, timeout time.Duration) (string, error) {
	wanted := make(map[string]bool, len(emojis))
	for _, e := range emojis {
		wanted[e] = true
	}

	reactions := make(chan string, 1)

	remove := d.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.ChannelID != channelID || r.MessageID != messageID || r.UserID != userID {
			return
		}
		if !wanted[r.Emoji.Name] {
			return
		}
		select {
		case reactions <- r.Emoji.Name:
		default:
		}
	})
	defer remove()

	return await(ctx, reactions, timeout)
}

func await(ctx context.Context, events <-chan string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-events:
		return v, nil
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
