package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/botreach/verification-service-go/internal/model"
)

type VerificationRunRepositoryInterface interface {
	GetByBot(botID int) (*model.VerificationRun, error)

	// Lifecycle. StartRun upserts the single run row per bot: status flips to
	// RUNNING and total/eta are recomputed, outcome counters are cumulative.
	StartRun(botID, totalUsers, etaSeconds int) error
	Complete(botID int) error
	Fail(botID int) error

	// Per-recipient persist step
	RecordResult(botID int, outcome string, tgID int64) error

	// Advisory run claim
	Claim(botID int, workerID string, staleAfter time.Duration) (bool, error)
	Release(botID int, workerID string) error
}

type VerificationRunRepository struct {
	DB *sql.DB
}

// GetByBot fetches the run row for a bot, nil when no run was ever triggered
func (r *VerificationRunRepository) GetByBot(botID int) (*model.VerificationRun, error) {
	query := `
        SELECT bot_id, status, total_users, verified_users,
               ok_count, blocked_count, not_started_count, other_error_count,
               started_at, finished_at, last_processed_tg_id, eta_seconds,
               claimed_by, claimed_at
        FROM bot_verification WHERE bot_id=$1
    `
	var run model.VerificationRun
	err := r.DB.QueryRow(query, botID).Scan(
		&run.BotID, &run.Status, &run.TotalUsers, &run.VerifiedUsers,
		&run.OkCount, &run.BlockedCount, &run.NotStartedCount, &run.OtherErrorCount,
		&run.StartedAt, &run.FinishedAt, &run.LastProcessedTgID, &run.EtaSeconds,
		&run.ClaimedBy, &run.ClaimedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// StartRun creates or re-arms the run row. total_users and eta_seconds are
// recomputed on every trigger; finished_at is cleared; the cumulative outcome
// counters are left alone so repeated triggers keep already-verified totals.
func (r *VerificationRunRepository) StartRun(botID, totalUsers, etaSeconds int) error {
	query := `
        INSERT INTO bot_verification (bot_id, status, total_users, eta_seconds, started_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (bot_id) DO UPDATE
        SET status=$2, total_users=$3, eta_seconds=$4, finished_at=NULL
    `
	_, err := r.DB.Exec(query, botID, model.RunStatusRunning, totalUsers, etaSeconds)
	return err
}

// Complete marks a full scan as done
func (r *VerificationRunRepository) Complete(botID int) error {
	query := `UPDATE bot_verification SET status=$1, finished_at=NOW() WHERE bot_id=$2`
	_, err := r.DB.Exec(query, model.RunStatusCompleted, botID)
	return err
}

// Fail marks a run as aborted so the status API surfaces it to the operator
func (r *VerificationRunRepository) Fail(botID int) error {
	query := `UPDATE bot_verification SET status=$1, finished_at=NOW() WHERE bot_id=$2`
	_, err := r.DB.Exec(query, model.RunStatusFailed, botID)
	return err
}

// RecordResult bumps verified_users, the matching per-outcome counter and the
// watermark in a single UPDATE, so verified = ok+blocked+not_started+other_error
// holds after every persist step, not just at run end. It also refreshes
// claimed_at: an actively persisting run keeps renewing its claim, so only a
// claim whose holder stopped persisting can ever go stale.
func (r *VerificationRunRepository) RecordResult(botID int, outcome string, tgID int64) error {
	var column string
	switch outcome {
	case model.OutcomeOK:
		column = "ok_count"
	case model.OutcomeBlocked:
		column = "blocked_count"
	case model.OutcomeNotStarted:
		column = "not_started_count"
	case model.OutcomeOtherError:
		column = "other_error_count"
	default:
		return fmt.Errorf("cannot record outcome %q", outcome)
	}

	query := fmt.Sprintf(`
        UPDATE bot_verification
        SET verified_users = verified_users + 1,
            %s = %s + 1,
            last_processed_tg_id = $1,
            claimed_at = NOW()
        WHERE bot_id = $2
    `, column, column)
	_, err := r.DB.Exec(query, tgID, botID)
	return err
}

// Claim takes the per-bot advisory lock with a conditional update, preventing
// two concurrent runs for the same bot from double-processing the same
// UNKNOWN rows. A claim whose claimed_at is older than staleAfter is treated
// as abandoned (worker killed before its deferred Release could run) and is
// taken over, so a crashed worker never strands a bot unverifiable.
func (r *VerificationRunRepository) Claim(botID int, workerID string, staleAfter time.Duration) (bool, error) {
	query := `
        UPDATE bot_verification
        SET claimed_by=$1, claimed_at=NOW()
        WHERE bot_id=$2
          AND (claimed_by IS NULL
               OR claimed_at IS NULL
               OR claimed_at < NOW() - make_interval(secs => $3))
    `
	res, err := r.DB.Exec(query, workerID, botID, staleAfter.Seconds())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Release drops the claim; only the holder can release
func (r *VerificationRunRepository) Release(botID int, workerID string) error {
	query := `UPDATE bot_verification SET claimed_by=NULL, claimed_at=NULL WHERE bot_id=$1 AND claimed_by=$2`
	_, err := r.DB.Exec(query, botID, workerID)
	return err
}

var _ VerificationRunRepositoryInterface = (*VerificationRunRepository)(nil)
