package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crucial707/journal-prompt-api/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type PromptRepo struct {
	DB *sql.DB
}

func NewPromptRepo(db *sql.DB) *PromptRepo {
	return &PromptRepo{DB: db}
}

// ========================
// RANDOM PROMPT
// ========================

// Random returns one prompt chosen by the database at random.
// An empty table yields (nil, nil).
func (r *PromptRepo) Random(ctx context.Context) (*models.Prompt, error) {
	var p models.Prompt
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, text FROM prompts ORDER BY random() LIMIT 1`,
	).Scan(&p.ID, &p.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("random prompt: %w", err)
	}
	return &p, nil
}

// ========================
// CREATE PROMPT
// ========================

// Create inserts text as a new prompt and returns it with the assigned id.
// Callers are expected to trim text beforehand.
func (r *PromptRepo) Create(ctx context.Context, text string) (models.Prompt, error) {
	p := models.Prompt{Text: text}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO prompts (text) VALUES ($1) RETURNING id`,
		text,
	).Scan(&p.ID)
	if err != nil {
		return models.Prompt{}, fmt.Errorf("insert prompt: %w", err)
	}
	return p, nil
}
