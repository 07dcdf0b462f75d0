package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/botreach/verification-service-go/internal/service"
)

// TopicVerificationRuns carries run triggers from the web tier to the worker.
const TopicVerificationRuns = "verification_runs"

// VerificationJob is the whole trigger payload: which bot, and optionally
// which locale subset. Empty Locale means a full sweep.
type VerificationJob struct {
	BotID  int    `json:"bot_id"`
	Locale string `json:"locale,omitempty"`
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue backs single-process deployments where no broker is running
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// jobEnvelope wraps a payload with retry info
type jobEnvelope struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := jobEnvelope{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job jobEnvelope) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("⚠️ Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartVerificationRunSubscriber wires the in-memory queue straight into the
// run controller. Each run still executes on its own goroutine, sequentially
// inside, exactly like the broker-backed worker.
func StartVerificationRunSubscriber(q Queue, svc *service.VerificationService) {
	go func() {
		err := q.Subscribe(TopicVerificationRuns, func(payload any) error {
			job, ok := payload.(VerificationJob)
			if !ok {
				log.Println("⚠️ Invalid payload type, expected VerificationJob")
				return nil // no retry
			}

			log.Println("📩 Starting verification run for bot", job.BotID)

			if err := svc.RunVerification(context.Background(), job.BotID, job.Locale); err != nil {
				log.Println("⚠️ Verification run failed:", err)
				return err // triggers retry in queue
			}
			return nil
		})

		if err != nil {
			log.Println("⚠️ Failed to start subscriber for verification_runs:", err)
		}
	}()
}

// PublishAMQP pushes a run trigger onto the durable broker queue consumed by
// cmd/worker. Fire-and-forget from the caller's point of view.
func PublishAMQP(amqpURL string, job VerificationJob) error {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to queue: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open queue channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		TopicVerificationRuns,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return ch.Publish(
		"",
		q.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
