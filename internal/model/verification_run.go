// internal/model/verification_run.go
package model

import "time"

// Run statuses. A full scan that exhausts all UNKNOWN recipients ends in
// COMPLETED; FAILED is set when a run aborts (bad credential, unhandled fault).
const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

type VerificationRun struct {
	BotID             int        `db:"bot_id" json:"bot_id"`
	Status            string     `db:"status" json:"status"`
	TotalUsers        int        `db:"total_users" json:"total_users"`
	VerifiedUsers     int        `db:"verified_users" json:"verified_users"`
	OkCount           int        `db:"ok_count" json:"ok_count"`
	BlockedCount      int        `db:"blocked_count" json:"blocked_count"`
	NotStartedCount   int        `db:"not_started_count" json:"not_started_count"`
	OtherErrorCount   int        `db:"other_error_count" json:"other_error_count"`
	StartedAt         time.Time  `db:"started_at" json:"started_at"`
	FinishedAt        *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	LastProcessedTgID int64      `db:"last_processed_tg_id" json:"last_processed_tg_id"`
	EtaSeconds        int        `db:"eta_seconds" json:"eta_seconds"`
	ClaimedBy         *string    `db:"claimed_by" json:"-"`
	ClaimedAt         *time.Time `db:"claimed_at" json:"-"`
}
