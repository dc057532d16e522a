package store

import (
	"context"

	"github.com/google/uuid"
)

// DeckCatalog is the narrow read contract against the deck/flashcard CRUD
// subsystem. Card content, ownership and privacy are that subsystem's
// concern; the study core only needs ordered card identifiers.
type DeckCatalog interface {
	// ListCardIDs returns the IDs of all cards in the deck in deck order,
	// optionally filtered to a lesson. Returns ErrDeckNotFound if the deck
	// does not exist.
	ListCardIDs(ctx context.Context, deckID uuid.UUID, lessonID *uuid.UUID) ([]uuid.UUID, error)
}
