package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
)

// StudySessionStore persists study sessions.
type StudySessionStore interface {
	// Create saves a new session. Returns ErrDuplicate if the ID exists.
	Create(ctx context.Context, session *domain.StudySession) error

	// Get retrieves a session by ID. Returns ErrSessionNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*domain.StudySession, error)

	// GetForUpdate retrieves a session with a SELECT ... FOR UPDATE row
	// lock. Must be called within a transaction; answer submission uses it
	// so the cursor check and the update see the same row version.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.StudySession, error)

	// Update replaces the stored session state.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.StudySession) error

	// ListActive returns the learner's sessions in ACTIVE or BREAK state,
	// most recently started first.
	ListActive(ctx context.Context, learnerID uuid.UUID) ([]*domain.StudySession, error)

	// ListSince returns the learner's sessions started at or after the given
	// time, most recently started first. Used by historical analytics; pass
	// a zero limit for no cap.
	ListSince(ctx context.Context, learnerID uuid.UUID, since time.Time, limit int) ([]*domain.StudySession, error)

	// WithTx returns a StudySessionStore bound to the given transaction.
	WithTx(tx *sql.Tx) StudySessionStore
}
