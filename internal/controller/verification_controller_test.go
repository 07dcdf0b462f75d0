package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/botreach/verification-service-go/internal/controller"
	"github.com/botreach/verification-service-go/internal/model"
	"github.com/botreach/verification-service-go/internal/queue"
	"github.com/botreach/verification-service-go/internal/repository"
	"github.com/botreach/verification-service-go/internal/service"
)

// --- Mocks ---

type MockBotRepo struct {
	bots map[int]*model.Bot
}

func (m *MockBotRepo) GetByID(id int) (*model.Bot, error) { return m.bots[id], nil }
func (m *MockBotRepo) Create(b *model.Bot) error          { return nil }

type MockRecipientRepo struct {
	total int
}

func (m *MockRecipientRepo) NextBatch(botID int, localeFilter string, limit int) ([]*model.Recipient, error) {
	return nil, nil
}
func (m *MockRecipientRepo) UpdateOutcome(id int, outcome string, verifiedAt time.Time) error {
	return nil
}
func (m *MockRecipientRepo) CountByBot(botID int) (int, error) { return m.total, nil }
func (m *MockRecipientRepo) LocaleStats(botID int) ([]repository.LocaleStat, error) {
	return nil, nil
}

type MockRunRepo struct {
	startedTotal int
	startedEta   int
	startCalls   int
}

func (m *MockRunRepo) GetByBot(botID int) (*model.VerificationRun, error) { return nil, nil }
func (m *MockRunRepo) StartRun(botID, totalUsers, etaSeconds int) error {
	m.startCalls++
	m.startedTotal = totalUsers
	m.startedEta = etaSeconds
	return nil
}
func (m *MockRunRepo) Complete(botID int) error                             { return nil }
func (m *MockRunRepo) Fail(botID int) error                                 { return nil }
func (m *MockRunRepo) RecordResult(botID int, outcome string, tgID int64) error { return nil }
func (m *MockRunRepo) Claim(botID int, workerID string, staleAfter time.Duration) (bool, error) {
	return true, nil
}
func (m *MockRunRepo) Release(botID int, workerID string) error             { return nil }

// CaptureQueue records published jobs instead of executing them
type CaptureQueue struct {
	jobs []queue.VerificationJob
}

func (q *CaptureQueue) Publish(topic string, payload any) error {
	q.jobs = append(q.jobs, payload.(queue.VerificationJob))
	return nil
}

func (q *CaptureQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

func newFixture(t *testing.T, bots map[int]*model.Bot, total int) (*chi.Mux, *CaptureQueue, *MockRunRepo) {
	t.Setenv("AMQP_URL", "")

	runRepo := &MockRunRepo{}
	svc := &service.VerificationService{
		BotRepo:       &MockBotRepo{bots: bots},
		RecipientRepo: &MockRecipientRepo{total: total},
		RunRepo:       runRepo,
	}
	q := &CaptureQueue{}
	ctrl := &controller.VerificationController{
		VerificationService: svc,
		Queue:               q,
	}

	r := chi.NewRouter()
	r.Post("/bots/{id}/verify/start", ctrl.StartVerification)
	r.Post("/bots/{id}/verify/locale", ctrl.StartLocaleVerification)
	return r, q, runRepo
}

// --- Tests ---

func TestStartVerificationEnqueuesFullRun(t *testing.T) {
	r, q, runRepo := newFixture(t, map[int]*model.Bot{1: {ID: 1, Username: "test_bot"}}, 150)

	req := httptest.NewRequest("POST", "/bots/1/verify/start", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(q.jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(q.jobs))
	}
	job := q.jobs[0]
	if job.BotID != 1 || job.Locale != "" {
		t.Errorf("unexpected job: %+v", job)
	}
	if runRepo.startCalls != 1 || runRepo.startedTotal != 150 {
		t.Errorf("run row not primed: calls=%d total=%d", runRepo.startCalls, runRepo.startedTotal)
	}
	if runRepo.startedEta != 10 {
		t.Errorf("expected eta 10s for 150 users at 15 rps, got %d", runRepo.startedEta)
	}
}

func TestStartVerificationUnknownBot(t *testing.T) {
	r, q, _ := newFixture(t, map[int]*model.Bot{}, 0)

	req := httptest.NewRequest("POST", "/bots/7/verify/start", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if len(q.jobs) != 0 {
		t.Errorf("no job must be enqueued for an unknown bot, got %d", len(q.jobs))
	}
}

func TestLocaleVerificationNormalizesLocale(t *testing.T) {
	r, q, _ := newFixture(t, map[int]*model.Bot{1: {ID: 1}}, 10)

	body, _ := json.Marshal(map[string]string{"locale": " PT-br "})
	req := httptest.NewRequest("POST", "/bots/1/verify/locale", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(q.jobs) != 1 || q.jobs[0].Locale != "pt-BR" {
		t.Errorf("expected normalized pt-BR job, got %+v", q.jobs)
	}
}

func TestLocaleVerificationAcceptsScriptSubtag(t *testing.T) {
	r, q, _ := newFixture(t, map[int]*model.Bot{1: {ID: 1}}, 10)

	body, _ := json.Marshal(map[string]string{"locale": "ZH-Hans"})
	req := httptest.NewRequest("POST", "/bots/1/verify/locale", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(q.jobs) != 1 || q.jobs[0].Locale != "zh-hans" {
		t.Errorf("expected zh-hans job, got %+v", q.jobs)
	}
}

func TestLocaleVerificationRejectsInvalidLocale(t *testing.T) {
	r, q, _ := newFixture(t, map[int]*model.Bot{1: {ID: 1}}, 10)

	body, _ := json.Marshal(map[string]string{"locale": "not a locale"})
	req := httptest.NewRequest("POST", "/bots/1/verify/locale", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if len(q.jobs) != 0 {
		t.Errorf("invalid locale must not enqueue, got %+v", q.jobs)
	}
}
