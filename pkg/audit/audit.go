package audit

import "time"

// Entry is one terminal enrollment outcome. It never carries
// credentials, codes, cookies, or tokens.
type Entry struct {
	SessionID string    `bson:"session_id"`
	DiscordID string    `bson:"discord_id"`
	Outcome   string    `bson:"outcome"`
	Reason    string    `bson:"reason,omitempty"`
	StartedAt time.Time `bson:"started_at"`
	EndedAt   time.Time `bson:"ended_at"`
}

type Recorder interface {
	Record(entry *Entry) error
	FindByDiscordID(discordID string) ([]*Entry, error)
}
