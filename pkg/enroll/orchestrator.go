package enroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"boombot/pkg/account"
	"boombot/pkg/audit"
	"boombot/pkg/reply"
	"boombot/pkg/riot"
)

const (
	reasonDeclined       = "declined"
	reasonInputTimeout   = "input_timeout"
	reasonInputRejected  = "input_rejected"
	reasonTooManyRetries = "too_many_attempts"
	reasonMfaFailed      = "mfa_failed"
	reasonProviderDown   = "provider_unreachable"
	reasonChannelFailure = "channel_failure"
	reasonStoreFailure   = "store_failure"
)

const (
	msgDeclined  = "No problem. Run /register any time you change your mind."
	msgTimeout   = "Looks like you stepped away. Run /register again when you're ready."
	msgRejected  = "That input didn't look right, so enrollment was stopped. Run /register to start over."
	msgTooMany   = "Too many failed attempts. Run /register to start over."
	msgMfaFailed = "That code didn't verify. Run /register to start over."
	msgProvider  = "Riot couldn't be reached right now. Nothing was wrong with your credentials, please try again later."
	msgStore     = "Your account verified, but saving it failed. Please run /register again later."
	msgInternal  = "Something went wrong on our side. Please run /register again later."
	msgSuccess   = "You're all set! Your Riot account is linked and shop notifications are on the way."
)

// Options bound the reply waits and the invalid-credential retries.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
}

// Orchestrator owns enrollment sessions: it enforces one active
// session per user, sequences the confirmation gate, the credential
// collector, and the persistence sink, and reports every terminal
// outcome with exactly one explanatory message.
type Orchestrator struct {
	registry  *Registry
	gate      *Gate
	collector *Collector
	channel   reply.Channel
	accounts  account.Repository
	audit     audit.Recorder
	logger    *slog.Logger
}

func NewOrchestrator(
	registry *Registry,
	channel reply.Channel,
	verifier Verifier,
	accounts account.Repository,
	auditor audit.Recorder,
	logger *slog.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		gate:      NewGate(channel, opts.Timeout),
		collector: NewCollector(channel, verifier, opts.Timeout, opts.MaxAttempts),
		channel:   channel,
		accounts:  accounts,
		audit:     auditor,
		logger:    logger,
	}
}

// Begin claims the user's registry slot and returns the new session.
// It is synchronous so the dispatcher can reject a concurrent attempt
// before acknowledging the command. Returns ErrSessionActive when an
// enrollment is already running for the user.
func (o *Orchestrator) Begin(userID, channelID string) (*Session, error) {
	s := NewSession(userID, channelID)
	if err := o.registry.Add(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Run drives the session to a terminal state. It releases the registry
// slot and scrubs collected credentials on every exit path.
func (o *Orchestrator) Run(ctx context.Context, s *Session) {
	defer func() {
		o.registry.Remove(s.UserID)
		s.scrub()
	}()

	decision, err := o.gate.Await(ctx, s)
	if err != nil {
		o.terminal(ctx, s, StateFailed, reasonChannelFailure, msgInternal, err)
		return
	}

	switch decision {
	case Declined:
		o.terminal(ctx, s, StateCancelled, reasonDeclined, msgDeclined, nil)
		return
	case NoResponse:
		o.terminal(ctx, s, StateFailed, reasonInputTimeout, msgTimeout, nil)
		return
	}

	res, err := o.collector.Collect(ctx, s)
	if err != nil {
		o.collectFailed(ctx, s, err)
		return
	}

	verified := &account.Account{
		DiscordID:    s.UserID,
		RiotUsername: s.username,
		RiotSubject:  res.Subject,
		SecretHandle: res.SecretHandle,
		VerifiedAt:   time.Now().UTC(),
	}
	if err := o.accounts.Upsert(verified); err != nil {
		o.terminal(ctx, s, StateFailed, reasonStoreFailure, msgStore, err)
		return
	}

	o.terminal(ctx, s, StateSucceeded, "", msgSuccess, nil)
}

func (o *Orchestrator) collectFailed(ctx context.Context, s *Session, err error) {
	switch {
	case errors.Is(err, ErrInputTimeout):
		o.terminal(ctx, s, StateFailed, reasonInputTimeout, msgTimeout, nil)
	case errors.Is(err, ErrInputRejected):
		o.terminal(ctx, s, StateFailed, reasonInputRejected, msgRejected, nil)
	case errors.Is(err, ErrTooManyAttempts):
		o.terminal(ctx, s, StateFailed, reasonTooManyRetries, msgTooMany, nil)
	case errors.Is(err, ErrMfaFailed):
		o.terminal(ctx, s, StateFailed, reasonMfaFailed, msgMfaFailed, nil)
	case errors.Is(err, riot.ErrTransport):
		o.terminal(ctx, s, StateFailed, reasonProviderDown, msgProvider, err)
	default:
		o.terminal(ctx, s, StateFailed, reasonChannelFailure, msgInternal, err)
	}
}

// terminal records the final state, sends the session's one
// explanatory message, and writes the audit entry. Audit and notify
// failures are logged, never raised; the session is already over.
func (o *Orchestrator) terminal(ctx context.Context, s *Session, state State, reason, userMsg string, cause error) {
	s.State = state

	if cause != nil {
		o.logger.Error("enrollment", "session", s.ID, "state", state.String(), "reason", reason, "error", cause)
	} else {
		o.logger.Info("enrollment", "session", s.ID, "state", state.String(), "reason", reason)
	}

	if _, err := o.channel.SendMessage(ctx, s.ChannelID, userMsg); err != nil {
		o.logger.Error("enrollment notify", "session", s.ID, "error", err)
	}

	entry := &audit.Entry{
		SessionID: s.ID,
		DiscordID: s.UserID,
		Outcome:   state.String(),
		Reason:    reason,
		StartedAt: s.StartedAt,
		EndedAt:   time.Now().UTC(),
	}
	if err := o.audit.Record(entry); err != nil {
		o.logger.Error("enrollment audit", "session", s.ID, "error", err)
	}
}

// ActiveSessions reports the registry size for the ops endpoint.
func (o *Orchestrator) ActiveSessions() int {
	return o.registry.Count()
}
