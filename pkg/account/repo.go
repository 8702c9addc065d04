package account

import (
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("account not found")

type MySQLRepo struct {
	DB *sql.DB
}

func NewMySQLRepo(db *sql.DB) *MySQLRepo {
	return &MySQLRepo{DB: db}
}

// Upsert replaces any previous enrollment for the same Discord user; a
// user re-registering a new Riot account overwrites the old link.
func (r *MySQLRepo) Upsert(account *Account) error {
	_, err := r.DB.Exec(`
		REPLACE INTO accounts (discord_id, riot_username, riot_subject, secret_handle, verified_at)
		VALUES (?, ?, ?, ?, ?)
	`, account.DiscordID, account.RiotUsername, account.RiotSubject, account.SecretHandle, account.VerifiedAt)

	return err
}

func (r *MySQLRepo) FindByDiscordID(discordID string) (*Account, error) {
	var a Account
	err := r.DB.QueryRow(`
		SELECT discord_id, riot_username, riot_subject, secret_handle, verified_at
		FROM accounts WHERE discord_id = ?
	`, discordID).Scan(&a.DiscordID, &a.RiotUsername, &a.RiotSubject, &a.SecretHandle, &a.VerifiedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &a, nil
}
