// internal/service/verification_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	appErrors "github.com/botreach/verification-service-go/internal/errors"
	"github.com/botreach/verification-service-go/internal/model"
	"github.com/botreach/verification-service-go/internal/ratelimit"
	"github.com/botreach/verification-service-go/internal/repository"
	"github.com/botreach/verification-service-go/internal/security"
	"github.com/botreach/verification-service-go/internal/telegram"
)

type VerificationService struct {
	BotRepo       repository.BotRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
	RunRepo       repository.VerificationRunRepositoryInterface
	Prober        telegram.Prober

	// Rate is the provider ceiling in requests per second; zero means the
	// default 15. Each run owns its own pacer built from this.
	Rate int

	// WorkerID identifies this process in the per-bot run claim.
	WorkerID string

	// ClaimStaleAfter bounds how long a run claim survives without a persist
	// heartbeat before another worker may take it over. Zero means the
	// default. Must comfortably exceed the longest gap between two persist
	// steps (pacing plus throttling back-offs).
	ClaimStaleAfter time.Duration

	BatchSize int

	// Sleep is the throttling back-off; overridable in tests. Nil means a
	// context-aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// StatusReport is the externally visible progress snapshot
type StatusReport struct {
	Status        string                 `json:"status"`
	Total         int                    `json:"total"`
	Verified      int                    `json:"verified"`
	Ok            int                    `json:"ok"`
	Blocked       int                    `json:"blocked"`
	NotStarted    int                    `json:"not_started"`
	OtherError    int                    `json:"other_error"`
	EtaSeconds    int                    `json:"eta_seconds"`
	Locales       []repository.LocaleStat `json:"locales"`
}

// StatusNone is reported when no verification was ever triggered for a bot,
// distinct from a run sitting at zero counters.
const StatusNone = "NONE"

func (s *VerificationService) rate() int {
	if s.Rate > 0 {
		return s.Rate
	}
	return ratelimit.DefaultRequestsPerSecond
}

// DefaultClaimStaleAfter is the run-claim staleness bound. RecordResult
// refreshes the claim on every persisted recipient, so a live run renews at
// least every few seconds; ten minutes only ever elapses when the holder died.
const DefaultClaimStaleAfter = 10 * time.Minute

func (s *VerificationService) claimStaleAfter() time.Duration {
	if s.ClaimStaleAfter > 0 {
		return s.ClaimStaleAfter
	}
	return DefaultClaimStaleAfter
}

func (s *VerificationService) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return repository.DefaultBatchSize
}

func (s *VerificationService) workerID() string {
	if s.WorkerID != "" {
		return s.WorkerID
	}
	host, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func (s *VerificationService) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func etaSeconds(total, verified, ratePerSec int) int {
	remaining := total - verified
	if remaining < 0 {
		remaining = 0
	}
	return remaining / ratePerSec
}

// PrimeRun re-arms the run row (RUNNING, fresh total_users and eta_seconds)
// before the job is enqueued, so the status API shows progress immediately.
func (s *VerificationService) PrimeRun(botID int) error {
	bot, err := s.BotRepo.GetByID(botID)
	if err != nil {
		return err
	}
	if bot == nil {
		return appErrors.NewBotNotFound(botID)
	}

	total, err := s.RecipientRepo.CountByBot(botID)
	if err != nil {
		return err
	}
	return s.RunRepo.StartRun(botID, total, etaSeconds(total, 0, s.rate()))
}

// RunVerification drives one verification sweep for a bot to completion.
// localeFilter narrows the sweep to a single locale; empty means full scope.
// Recipients are processed strictly sequentially in locale-priority order
// under the provider pacer, and every outcome is committed individually, so
// an interrupted run resumes by simply re-running (the scanner only ever
// selects UNKNOWN rows).
func (s *VerificationService) RunVerification(ctx context.Context, botID int, localeFilter string) (err error) {
	bot, err := s.BotRepo.GetByID(botID)
	if err != nil {
		return err
	}
	if bot == nil {
		return appErrors.NewBotNotFound(botID)
	}

	total, err := s.RecipientRepo.CountByBot(botID)
	if err != nil {
		return err
	}
	if err = s.RunRepo.StartRun(botID, total, etaSeconds(total, 0, s.rate())); err != nil {
		return err
	}

	claimed, err := s.RunRepo.Claim(botID, s.workerID(), s.claimStaleAfter())
	if err != nil {
		return err
	}
	if !claimed {
		log.Println("⚠️ verification run for bot", botID, "is claimed by another live worker, skipping")
		return nil
	}
	defer func() {
		if releaseErr := s.RunRepo.Release(botID, s.workerID()); releaseErr != nil {
			log.Println("⚠️ failed to release run claim for bot", botID, ":", releaseErr)
		}
	}()

	// Terminal-status guard: no exit path may leave the row RUNNING on error.
	defer func() {
		if err != nil {
			if failErr := s.RunRepo.Fail(botID); failErr != nil {
				log.Println("⚠️ failed to mark run FAILED for bot", botID, ":", failErr)
			}
		}
	}()

	token, err := security.DecryptToken(bot.TokenEncrypted)
	if err != nil {
		return appErrors.NewTokenDecrypt(botID, err)
	}

	pacer := ratelimit.New(s.rate())

	for {
		batch, err := s.RecipientRepo.NextBatch(botID, localeFilter, s.batchSize())
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			if localeFilter == "" {
				if err := s.RunRepo.Complete(botID); err != nil {
					return err
				}
				log.Println("✅ verification completed for bot", botID)
			}
			// A locale-scoped sweep never advances the aggregate status.
			return nil
		}

		for _, rec := range batch {
			if err := pacer.Wait(ctx); err != nil {
				return err
			}

			resp, probeErr := s.Prober.Probe(ctx, token, rec.TgID)

			var cls telegram.Classification
			if probeErr != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Network-level failure on a single probe must not abort the
				// whole sweep; record it and keep moving.
				log.Println("⚠️ probe failed for recipient", rec.TgID, ":", probeErr)
				cls = telegram.Classification{Outcome: model.OutcomeOtherError}
			} else {
				cls = telegram.Classify(resp)
			}

			if cls.Retry {
				// Throttled: back off and leave the recipient UNKNOWN so a
				// later scan picks it up again.
				if err := s.sleep(ctx, time.Duration(cls.RetryAfter)*time.Second); err != nil {
					return err
				}
				continue
			}

			if err := s.RecipientRepo.UpdateOutcome(rec.ID, cls.Outcome, time.Now()); err != nil {
				return err
			}
			if err := s.RunRepo.RecordResult(botID, cls.Outcome, rec.TgID); err != nil {
				return err
			}
		}
	}
}

// Status computes the read-only progress snapshot for the status API.
func (s *VerificationService) Status(botID int) (*StatusReport, error) {
	bot, err := s.BotRepo.GetByID(botID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, appErrors.NewBotNotFound(botID)
	}

	run, err := s.RunRepo.GetByBot(botID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return &StatusReport{Status: StatusNone}, nil
	}

	locales, err := s.RecipientRepo.LocaleStats(botID)
	if err != nil {
		return nil, err
	}

	return &StatusReport{
		Status:     run.Status,
		Total:      run.TotalUsers,
		Verified:   run.VerifiedUsers,
		Ok:         run.OkCount,
		Blocked:    run.BlockedCount,
		NotStarted: run.NotStartedCount,
		OtherError: run.OtherErrorCount,
		EtaSeconds: etaSeconds(run.TotalUsers, run.VerifiedUsers, s.rate()),
		Locales:    locales,
	}, nil
}
