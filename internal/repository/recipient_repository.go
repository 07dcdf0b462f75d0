package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/botreach/verification-service-go/internal/locale"
	"github.com/botreach/verification-service-go/internal/model"
)

// DefaultBatchSize caps how many UNKNOWN recipients one scan returns.
const DefaultBatchSize = 200

// LocaleStat is one row of the per-locale status breakdown.
type LocaleStat struct {
	Locale     string `json:"locale"`
	Total      int    `json:"total"`
	Ok         int    `json:"ok"`
	Blocked    int    `json:"blocked"`
	NotStarted int    `json:"not_started"`
	OtherError int    `json:"other_error"`
}

type RecipientRepositoryInterface interface {
	// Batch scanning
	NextBatch(botID int, localeFilter string, limit int) ([]*model.Recipient, error)
	UpdateOutcome(id int, outcome string, verifiedAt time.Time) error

	// Aggregates
	CountByBot(botID int) (int, error)
	LocaleStats(botID int) ([]LocaleStat, error)
}

type RecipientRepository struct {
	DB *sql.DB
}

// localeOrder is the CASE expression ranking locales by business priority.
// Built once from the fixed priority list; unlisted locales sort last.
var localeOrder = func() string {
	var sb strings.Builder
	sb.WriteString("CASE locale")
	for i, code := range locale.Priority {
		fmt.Fprintf(&sb, " WHEN '%s' THEN %d", code, i)
	}
	fmt.Fprintf(&sb, " ELSE %d END", len(locale.Priority)+1)
	return sb.String()
}()

// NextBatch selects up to limit UNKNOWN recipients for the bot, ordered by
// locale priority then tg_id. The secondary tg_id ordering makes two scans of
// the same unmutated set return identical batches, which is what makes
// resumption after a crash deterministic. No rows are marked in flight.
func (r *RecipientRepository) NextBatch(botID int, localeFilter string, limit int) ([]*model.Recipient, error) {
	if limit <= 0 {
		limit = DefaultBatchSize
	}

	query := `SELECT id, bot_id, tg_id, locale, verification_status, last_verified_at
			  FROM audience
			  WHERE bot_id=$1 AND verification_status=$2`
	args := []interface{}{botID, model.OutcomeUnknown}
	argPos := 3

	if localeFilter != "" {
		query += fmt.Sprintf(" AND locale=$%d", argPos)
		args = append(args, localeFilter)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY %s ASC, tg_id ASC LIMIT $%d", localeOrder, argPos)
	args = append(args, limit)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := []*model.Recipient{}
	for rows.Next() {
		rec := &model.Recipient{}
		if err := rows.Scan(&rec.ID, &rec.BotID, &rec.TgID, &rec.Locale, &rec.VerificationStatus, &rec.LastVerifiedAt); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

// UpdateOutcome writes the terminal outcome and probe timestamp for one
// recipient. Committed per recipient, not per batch, so an interrupted run
// resumes at single-recipient granularity.
func (r *RecipientRepository) UpdateOutcome(id int, outcome string, verifiedAt time.Time) error {
	query := `UPDATE audience SET verification_status=$1, last_verified_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, outcome, verifiedAt, id)
	return err
}

// CountByBot returns the current audience size, used to recompute total_users
// when a run is (re)triggered.
func (r *RecipientRepository) CountByBot(botID int) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM audience WHERE bot_id=$1`, botID).Scan(&count)
	return count, err
}

// LocaleStats groups persisted recipients by locale with per-outcome
// sub-counts. Read-only; never touches run state.
func (r *RecipientRepository) LocaleStats(botID int) ([]LocaleStat, error) {
	query := `
		SELECT locale,
			   COUNT(*) as total,
			   SUM(CASE WHEN verification_status = 'OK' THEN 1 ELSE 0 END) as ok,
			   SUM(CASE WHEN verification_status = 'BLOCKED' THEN 1 ELSE 0 END) as blocked,
			   SUM(CASE WHEN verification_status = 'NOT_STARTED' THEN 1 ELSE 0 END) as not_started,
			   SUM(CASE WHEN verification_status = 'OTHER_ERROR' THEN 1 ELSE 0 END) as other_error
		FROM audience
		WHERE bot_id = $1
		GROUP BY locale
		ORDER BY locale
	`
	rows, err := r.DB.Query(query, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []LocaleStat{}
	for rows.Next() {
		var s LocaleStat
		if err := rows.Scan(&s.Locale, &s.Total, &s.Ok, &s.Blocked, &s.NotStarted, &s.OtherError); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

var _ RecipientRepositoryInterface = (*RecipientRepository)(nil)
