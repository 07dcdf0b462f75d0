// internal/controller/verification_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	appErrors "github.com/botreach/verification-service-go/internal/errors"
	"github.com/botreach/verification-service-go/internal/locale"
	"github.com/botreach/verification-service-go/internal/queue"
	"github.com/botreach/verification-service-go/internal/service"

	"github.com/go-chi/chi/v5"
)

type VerificationController struct {
	VerificationService *service.VerificationService

	// Queue is the in-memory fallback used when AMQP_URL is not configured
	// (single-process deployments).
	Queue queue.Queue
}

func (c *VerificationController) publish(job queue.VerificationJob) error {
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		return queue.PublishAMQP(amqpURL, job)
	}
	return c.Queue.Publish(queue.TopicVerificationRuns, job)
}

func (c *VerificationController) enqueueRun(w http.ResponseWriter, botID int, localeFilter string) {
	// Prime the row first so the status endpoint shows RUNNING immediately,
	// before the worker has even picked the job up.
	if err := c.VerificationService.PrimeRun(botID); err != nil {
		var notFound *appErrors.ErrBotNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	job := queue.VerificationJob{BotID: botID, Locale: localeFilter}
	if err := c.publish(job); err != nil {
		log.Println("⚠️ failed to enqueue verification run:", err)
		http.Error(w, "failed to enqueue verification run", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"bot_id":               botID,
		"locale":               localeFilter,
		"verification_started": true,
	})
}

// StartVerification triggers a full audience sweep for a bot
func (c *VerificationController) StartVerification(w http.ResponseWriter, r *http.Request) {
	botIDStr := chi.URLParam(r, "id")
	botID, err := strconv.Atoi(botIDStr)
	if err != nil {
		http.Error(w, "invalid bot id", http.StatusBadRequest)
		return
	}

	c.enqueueRun(w, botID, "")
}

// StartLocaleVerification triggers a sweep restricted to one locale
func (c *VerificationController) StartLocaleVerification(w http.ResponseWriter, r *http.Request) {
	botIDStr := chi.URLParam(r, "id")
	botID, err := strconv.Atoi(botIDStr)
	if err != nil {
		http.Error(w, "invalid bot id", http.StatusBadRequest)
		return
	}

	var body struct {
		Locale string `json:"locale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	normalized := locale.Normalize(body.Locale)
	if !locale.IsValid(normalized) {
		http.Error(w, "invalid locale", http.StatusBadRequest)
		return
	}

	c.enqueueRun(w, botID, normalized)
}
