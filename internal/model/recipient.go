// internal/model/recipient.go
package model

import "time"

// Verification outcomes for a single recipient. UNKNOWN is the only state
// the batch scanner selects from; throttling is never persisted here.
const (
	OutcomeUnknown    = "UNKNOWN"
	OutcomeOK         = "OK"
	OutcomeBlocked    = "BLOCKED"
	OutcomeNotStarted = "NOT_STARTED"
	OutcomeOtherError = "OTHER_ERROR"
)

type Recipient struct {
	ID                 int        `db:"id" json:"id"`
	BotID              int        `db:"bot_id" json:"bot_id"`
	TgID               int64      `db:"tg_id" json:"tg_id"`
	Locale             string     `db:"locale" json:"locale"`
	VerificationStatus string     `db:"verification_status" json:"verification_status"`
	LastVerifiedAt     *time.Time `db:"last_verified_at" json:"last_verified_at,omitempty"`
}
