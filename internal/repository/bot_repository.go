package repository

import (
	"database/sql"
	"time"

	"github.com/botreach/verification-service-go/internal/model"
)

// BotRepositoryInterface defines methods used by the verification service
type BotRepositoryInterface interface {
	GetByID(id int) (*model.Bot, error)
	Create(b *model.Bot) error
}

// BotRepository is the concrete implementation
type BotRepository struct {
	DB *sql.DB
}

// GetByID fetches a bot by ID
func (r *BotRepository) GetByID(id int) (*model.Bot, error) {
	query := `
        SELECT id, username, token_encrypted, created_at
        FROM bots
        WHERE id = $1
    `
	row := r.DB.QueryRow(query, id)

	var b model.Bot
	if err := row.Scan(&b.ID, &b.Username, &b.TokenEncrypted, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a bot (used by the seeder; registration lives in the web tier)
func (r *BotRepository) Create(b *model.Bot) error {
	b.CreatedAt = time.Now()
	query := `
        INSERT INTO bots (username, token_encrypted, created_at)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	return r.DB.QueryRow(query, b.Username, b.TokenEncrypted, b.CreatedAt).Scan(&b.ID)
}

var _ BotRepositoryInterface = (*BotRepository)(nil)
