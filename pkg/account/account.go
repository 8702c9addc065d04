package account

import "time"

// Account is a verified Riot account linked to a Discord user. The
// secret handle is the provider's re-auth cookie; the password itself
// is never written anywhere.
type Account struct {
	DiscordID    string    `json:"discord_id"`
	RiotUsername string    `json:"riot_username"`
	RiotSubject  string    `json:"riot_subject"`
	SecretHandle string    `json:"-"`
	VerifiedAt   time.Time `json:"verified_at"`
}

type Repository interface {
	Upsert(account *Account) error
	FindByDiscordID(discordID string) (*Account, error)
}
