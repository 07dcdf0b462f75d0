// internal/model/bot.go
package model

import "time"

type Bot struct {
	ID             int       `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	TokenEncrypted string    `db:"token_encrypted" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
