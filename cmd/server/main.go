// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/botreach/verification-service-go/internal/controller"
	"github.com/botreach/verification-service-go/internal/db"
	"github.com/botreach/verification-service-go/internal/handler"
	"github.com/botreach/verification-service-go/internal/queue"
	"github.com/botreach/verification-service-go/internal/repository"
	"github.com/botreach/verification-service-go/internal/service"
	"github.com/botreach/verification-service-go/internal/telegram"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	botRepo := &repository.BotRepository{DB: db.DB}
	recipientRepo := &repository.RecipientRepository{DB: db.DB}
	runRepo := &repository.VerificationRunRepository{DB: db.DB}

	verificationService := &service.VerificationService{
		BotRepo:       botRepo,
		RecipientRepo: recipientRepo,
		RunRepo:       runRepo,
		Prober:        telegram.NewClient(),
	}

	// Without a broker the runs execute in-process off the in-memory queue;
	// with AMQP_URL set the controller publishes to RabbitMQ instead and
	// cmd/worker does the processing.
	q := queue.NewInMemoryQueue()
	if os.Getenv("AMQP_URL") == "" {
		queue.StartVerificationRunSubscriber(q, verificationService)
		log.Println("⚠️ AMQP_URL not set, running verification jobs in-process")
	}

	verificationController := &controller.VerificationController{
		VerificationService: verificationService,
		Queue:               q,
	}

	statusHandler := &handler.StatusHandler{
		Service: verificationService,
	}

	r := chi.NewRouter()

	// Verification routes
	r.Post("/bots/{id}/verify/start", verificationController.StartVerification)
	r.Post("/bots/{id}/verify/locale", verificationController.StartLocaleVerification)
	r.Get("/bots/{id}/verification/status", statusHandler.GetVerificationStatus)

	log.Println("🚀 Server running on :8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}
