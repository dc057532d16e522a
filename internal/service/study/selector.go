package study

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/platform/logger"
	"github.com/davrell/mnemo-api/internal/store"
)

// SelectorConfig holds the tunables of card selection.
type SelectorConfig struct {
	// NewCardFallback caps how many never-studied cards pad a REVIEW queue
	// when fewer due cards exist than requested (or none at all and no
	// target was given).
	NewCardFallback int
}

// CardSelector builds the ordered card queue for a new session according to
// the study mode. Shuffling for PRACTICE/TEST uses an injected random source
// so tests can pin the order with a fixed seed.
type CardSelector struct {
	catalog  store.DeckCatalog
	progress store.CardProgressStore
	cfg      SelectorConfig
	logger   *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCardSelector creates a CardSelector. rng may be nil, in which case a
// time-seeded source is used.
func NewCardSelector(
	catalog store.DeckCatalog,
	progress store.CardProgressStore,
	cfg SelectorConfig,
	rng *rand.Rand,
	log *slog.Logger,
) *CardSelector {
	if catalog == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog cannot be nil")
	}
	if progress == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progress store cannot be nil")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = slog.Default()
	}

	return &CardSelector{
		catalog:  catalog,
		progress: progress,
		cfg:      cfg,
		rng:      rng,
		logger:   log.With(slog.String("component", "card_selector")),
	}
}

// SelectCards returns the ordered card IDs for a new session. targetCount of
// zero means "no limit". An empty eligible set is not an error here; the
// session start rejects it.
func (s *CardSelector) SelectCards(
	ctx context.Context,
	learnerID, deckID uuid.UUID,
	mode domain.StudyMode,
	lessonID *uuid.UUID,
	targetCount int,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deckCards, err := s.catalog.ListCardIDs(ctx, deckID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deck cards: %w", err)
	}

	var selected []uuid.UUID
	switch mode {
	case domain.StudyModeReview:
		selected, err = s.selectReview(ctx, learnerID, deckCards, targetCount)
	case domain.StudyModeLearn:
		selected, err = s.selectNew(ctx, learnerID, deckCards, targetCount)
	case domain.StudyModePractice, domain.StudyModeTest:
		selected = s.selectShuffled(deckCards, targetCount)
	case domain.StudyModeCram:
		selected = truncate(deckCards, targetCount)
	default:
		return nil, fmt.Errorf("%w: %v", ErrValidation, domain.ErrInvalidStudyMode)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("selected cards for session",
		slog.String("mode", string(mode)),
		slog.String("deck_id", deckID.String()),
		slog.Int("deck_size", len(deckCards)),
		slog.Int("selected", len(selected)))
	return selected, nil
}

// selectReview picks due cards oldest-due-first, then pads with
// never-studied cards in deck order. The pad ceiling is targetCount when
// given, otherwise NewCardFallback applies only when nothing is due.
func (s *CardSelector) selectReview(
	ctx context.Context,
	learnerID uuid.UUID,
	deckCards []uuid.UUID,
	targetCount int,
) ([]uuid.UUID, error) {
	now := time.Now().UTC()

	due, err := s.progress.FindDue(ctx, learnerID, deckCards, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find due cards: %w", err)
	}

	selected := make([]uuid.UUID, 0, len(due))
	for _, record := range due {
		selected = append(selected, record.CardID)
	}
	selected = truncate(selected, targetCount)

	padTo := targetCount
	if padTo == 0 && len(selected) == 0 {
		padTo = s.cfg.NewCardFallback
	}
	if len(selected) >= padTo {
		return selected, nil
	}

	fresh, err := s.neverStudied(ctx, learnerID, deckCards)
	if err != nil {
		return nil, err
	}
	for _, id := range fresh {
		if len(selected) >= padTo {
			break
		}
		selected = append(selected, id)
	}

	return selected, nil
}

// selectNew returns the deck's never-studied cards in deck order.
func (s *CardSelector) selectNew(
	ctx context.Context,
	learnerID uuid.UUID,
	deckCards []uuid.UUID,
	targetCount int,
) ([]uuid.UUID, error) {
	fresh, err := s.neverStudied(ctx, learnerID, deckCards)
	if err != nil {
		return nil, err
	}
	return truncate(fresh, targetCount), nil
}

// selectShuffled returns a uniformly shuffled copy of the deck.
func (s *CardSelector) selectShuffled(deckCards []uuid.UUID, targetCount int) []uuid.UUID {
	shuffled := make([]uuid.UUID, len(deckCards))
	copy(shuffled, deckCards)

	s.mu.Lock()
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()

	return truncate(shuffled, targetCount)
}

func (s *CardSelector) neverStudied(
	ctx context.Context,
	learnerID uuid.UUID,
	deckCards []uuid.UUID,
) ([]uuid.UUID, error) {
	records, err := s.progress.FindByLearner(ctx, learnerID, deckCards)
	if err != nil {
		return nil, fmt.Errorf("failed to load card progress: %w", err)
	}

	studied := make(map[uuid.UUID]struct{}, len(records))
	for _, record := range records {
		studied[record.CardID] = struct{}{}
	}

	var fresh []uuid.UUID
	for _, id := range deckCards {
		if _, ok := studied[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	return fresh, nil
}

func truncate(ids []uuid.UUID, limit int) []uuid.UUID {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
