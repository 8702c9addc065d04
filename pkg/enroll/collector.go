package enroll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"boombot/pkg/reply"
	"boombot/pkg/riot"
)

var (
	// ErrInputTimeout: a prompt went unanswered within the bound.
	ErrInputTimeout = errors.New("no reply before the deadline")
	// ErrInputRejected: an empty reply or a malformed MFA code. The
	// round fails outright, there is no re-prompt.
	ErrInputRejected = errors.New("input rejected")
	// ErrTooManyAttempts: the invalid-credential retry cap was hit.
	ErrTooManyAttempts = errors.New("too many failed attempts")
	// ErrMfaFailed: the single-shot MFA round did not verify.
	ErrMfaFailed = errors.New("multi-factor verification failed")
)

const mfaCodeLength = 6

const (
	promptUsername = "What's your Riot username?"
	promptPassword = "And your Riot password?"
	retryText      = "Riot didn't accept those credentials. Let's try again from the top."
)

// Verifier is the provider exchange the collector drives. A non-nil
// error is a transport failure and aborts the session; credential and
// MFA outcomes arrive in the Result.
type Verifier interface {
	Verify(ctx context.Context, username, password, mfaToken string) (*riot.Result, error)
}

// Collector drives the username/password/MFA prompt rounds against the
// reply channel and the verifier. Invalid credentials restart the full
// round, bounded by maxAttempts; MFA is single-shot.
type Collector struct {
	channel     reply.Channel
	verifier    Verifier
	timeout     time.Duration
	maxAttempts int
}

func NewCollector(channel reply.Channel, verifier Verifier, timeout time.Duration, maxAttempts int) *Collector {
	return &Collector{
		channel:     channel,
		verifier:    verifier,
		timeout:     timeout,
		maxAttempts: maxAttempts,
	}
}

func (c *Collector) Collect(ctx context.Context, s *Session) (*riot.Result, error) {
	for attempt := 1; ; attempt++ {
		s.State = StateCollectingUsername
		username, err := c.ask(ctx, s, promptUsername, "username")
		if err != nil {
			return nil, err
		}

		s.State = StateCollectingPassword
		password, err := c.ask(ctx, s, promptPassword, "password")
		if err != nil {
			return nil, err
		}

		s.username = username
		s.password = password

		s.State = StateVerifying
		res, err := c.verifier.Verify(ctx, s.username, s.password, "")
		if err != nil {
			return nil, err
		}

		switch res.Status {
		case riot.StatusSuccess:
			return res, nil
		case riot.StatusMfaRequired:
			return c.collectMfa(ctx, s, res)
		case riot.StatusInvalidCredentials:
			if attempt >= c.maxAttempts {
				return nil, ErrTooManyAttempts
			}
			if _, err := c.channel.SendMessage(ctx, s.ChannelID, retryText); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unexpected status %d", riot.ErrTransport, res.Status)
		}
	}
}

// ask prompts and waits for one reply. Empty replies fail the round;
// the source aborts rather than re-prompting on missing input.
func (c *Collector) ask(ctx context.Context, s *Session, prompt, field string) (string, error) {
	if _, err := c.channel.SendMessage(ctx, s.ChannelID, prompt); err != nil {
		return "", err
	}

	answer, err := c.channel.AwaitReply(ctx, s.ChannelID, s.UserID, c.timeout)
	if errors.Is(err, reply.ErrTimeout) {
		return "", ErrInputTimeout
	}
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInputRejected, field)
	}
	return answer, nil
}

func (c *Collector) collectMfa(ctx context.Context, s *Session, first *riot.Result) (*riot.Result, error) {
	s.State = StateAwaitingMfaCode

	prompt := "Riot wants a second factor. Reply with the 6-character code"
	if first.MfaEmail != "" {
		prompt += " sent to " + first.MfaEmail
	}
	prompt += "."

	code, err := c.ask(ctx, s, prompt, "code")
	if err != nil {
		return nil, err
	}
	if len(code) != mfaCodeLength {
		return nil, fmt.Errorf("%w: code must be %d characters", ErrInputRejected, mfaCodeLength)
	}
	s.mfaCode = code

	s.State = StateVerifying
	res, err := c.verifier.Verify(ctx, s.username, s.password, s.mfaCode)
	if err != nil {
		return nil, err
	}
	if res.Status != riot.StatusSuccess {
		return nil, ErrMfaFailed
	}
	return res, nil
}
