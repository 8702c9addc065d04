package enroll

import (
	"time"

	"github.com/google/uuid"
)

type State int

const (
	StateAwaitingConfirmation State = iota
	StateCollectingUsername
	StateCollectingPassword
	StateVerifying
	StateAwaitingMfaCode
	StateSucceeded
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateCollectingUsername:
		return "collecting_username"
	case StateCollectingPassword:
		return "collecting_password"
	case StateVerifying:
		return "verifying"
	case StateAwaitingMfaCode:
		return "awaiting_mfa_code"
	case StateSucceeded:
		return "succeeded"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateCancelled || s == StateFailed
}

// Session is one user's end-to-end enrollment attempt. It lives only
// in memory, is mutated only by the orchestrator goroutine that owns
// it, and is released from the registry on its terminal transition.
// Collected credentials stay unexported and are scrubbed on every
// exit path.
type Session struct {
	ID        string
	UserID    string
	ChannelID string
	State     State
	StartedAt time.Time

	username string
	password string
	mfaCode  string
}

func NewSession(userID, channelID string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChannelID: channelID,
		State:     StateAwaitingConfirmation,
		StartedAt: time.Now().UTC(),
	}
}

func (s *Session) scrub() {
	s.username = ""
	s.password = ""
	s.mfaCode = ""
}
