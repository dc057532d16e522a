package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
)

// CardProgressStore persists one CardProgress record per (learner, card)
// pair. Records are created on first answer and never deleted.
type CardProgressStore interface {
	// Get retrieves the progress record for a learner and card.
	// Returns ErrCardProgressNotFound if the learner has never answered the
	// card. This method takes no row lock; use GetForUpdate inside a
	// transaction when the record is about to change.
	Get(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardProgress, error)

	// GetForUpdate retrieves the record with a SELECT ... FOR UPDATE row
	// lock. Must be called within a transaction.
	GetForUpdate(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardProgress, error)

	// Upsert inserts or replaces the record identified by
	// (progress.LearnerID, progress.CardID). Domain validation runs first.
	Upsert(ctx context.Context, progress *domain.CardProgress) error

	// CountDue returns how many of the learner's cards have
	// next_review <= before.
	CountDue(ctx context.Context, learnerID uuid.UUID, before time.Time) (int, error)

	// FindByLearner returns all progress records for a learner, optionally
	// restricted to a card set. An empty cardIDs slice means no restriction.
	FindByLearner(ctx context.Context, learnerID uuid.UUID, cardIDs []uuid.UUID) ([]*domain.CardProgress, error)

	// FindDue returns the learner's due records among cardIDs sorted oldest
	// due first (ties broken by card ID for a stable order).
	FindDue(ctx context.Context, learnerID uuid.UUID, cardIDs []uuid.UUID, now time.Time) ([]*domain.CardProgress, error)

	// WithTx returns a CardProgressStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardProgressStore
}
