// internal/handler/status_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/botreach/verification-service-go/internal/errors"
	"github.com/botreach/verification-service-go/internal/service"
)

// StatusHandler holds the dependencies for the read-only status endpoint
type StatusHandler struct {
	Service *service.VerificationService
}

// GetVerificationStatus returns the progress snapshot for a bot's run:
// counters, ETA and the per-locale breakdown. Read-only; the worker owns
// all mutation.
func (h *StatusHandler) GetVerificationStatus(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid bot id", http.StatusBadRequest)
		return
	}

	report, err := h.Service.Status(id)
	if err != nil {
		var notFound *appErrors.ErrBotNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Println("⚠️ failed to compute verification status:", err)
		http.Error(w, "failed to fetch verification status: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
