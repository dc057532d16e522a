package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/store"
)

// DeckCatalogStore implements store.DeckCatalog against the cards table.
// Card content lives in the excluded CRUD subsystem; this read model only
// carries identity, deck membership and deck order.
type DeckCatalogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDeckCatalogStore creates a DeckCatalogStore over the given connection.
func NewDeckCatalogStore(db store.DBTX, log *slog.Logger) *DeckCatalogStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &DeckCatalogStore{
		db:     db,
		logger: log.With(slog.String("component", "deck_catalog_store")),
	}
}

var _ store.DeckCatalog = (*DeckCatalogStore)(nil)

// ListCardIDs implements store.DeckCatalog.ListCardIDs. Deck order is the
// cards' position column.
func (s *DeckCatalogStore) ListCardIDs(
	ctx context.Context,
	deckID uuid.UUID,
	lessonID *uuid.UUID,
) ([]uuid.UUID, error) {
	query := `SELECT id FROM cards WHERE deck_id = $1`
	args := []any{deckID}

	if lessonID != nil {
		query += ` AND lesson_id = $2`
		args = append(args, *lessonID)
	}
	query += ` ORDER BY position ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
