//cmd/seeder/main.go
package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/botreach/verification-service-go/internal/db"
	"github.com/botreach/verification-service-go/internal/model"
	"github.com/botreach/verification-service-go/internal/repository"
	"github.com/botreach/verification-service-go/internal/security"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bots (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		token_encrypted TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audience (
		id SERIAL PRIMARY KEY,
		bot_id INTEGER NOT NULL REFERENCES bots(id),
		tg_id BIGINT NOT NULL,
		locale TEXT NOT NULL,
		verification_status TEXT NOT NULL DEFAULT 'UNKNOWN',
		last_verified_at TIMESTAMPTZ,
		CONSTRAINT uq_audience_bot_tg UNIQUE (bot_id, tg_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audience_scan
		ON audience (bot_id, verification_status)`,
	`CREATE TABLE IF NOT EXISTS bot_verification (
		bot_id INTEGER PRIMARY KEY REFERENCES bots(id),
		status TEXT NOT NULL DEFAULT 'RUNNING',
		total_users INTEGER NOT NULL DEFAULT 0,
		verified_users INTEGER NOT NULL DEFAULT 0,
		ok_count INTEGER NOT NULL DEFAULT 0,
		blocked_count INTEGER NOT NULL DEFAULT 0,
		not_started_count INTEGER NOT NULL DEFAULT 0,
		other_error_count INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finished_at TIMESTAMPTZ,
		last_processed_tg_id BIGINT NOT NULL DEFAULT 0,
		eta_seconds INTEGER NOT NULL DEFAULT 0,
		claimed_by TEXT,
		claimed_at TIMESTAMPTZ
	)`,
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	conn, err := sql.Open("postgres", db.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			log.Fatalf("failed to execute schema statement: %v", err)
		}
	}
	fmt.Println("Schema created")

	tokenEncrypted, err := security.EncryptToken("1234567890:SEED-TOKEN-NOT-REAL")
	if err != nil {
		log.Fatalf("failed to encrypt seed token: %v", err)
	}

	botRepo := &repository.BotRepository{DB: conn}
	bot := &model.Bot{Username: "demo_push_bot", TokenEncrypted: tokenEncrypted}
	if err := botRepo.Create(bot); err != nil {
		log.Fatalf("failed to seed bot: %v", err)
	}

	sample := []struct {
		tgID   int64
		locale string
	}{
		{100001, "ru"},
		{100002, "ru"},
		{100003, "uk"},
		{100004, "en"},
		{100005, "en"},
		{100006, "pt-BR"},
	}
	for _, s := range sample {
		_, err := conn.Exec(
			`INSERT INTO audience (bot_id, tg_id, locale) VALUES ($1, $2, $3)
			 ON CONFLICT ON CONSTRAINT uq_audience_bot_tg DO NOTHING`,
			bot.ID, s.tgID, s.locale,
		)
		if err != nil {
			log.Fatalf("failed to seed audience row: %v", err)
		}
	}
	fmt.Printf("Seeded bot %d with %d audience rows\n", bot.ID, len(sample))

	fmt.Println("Database seeding completed successfully!")
}
