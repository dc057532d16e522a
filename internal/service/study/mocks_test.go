package study

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/store"
)

// fakeTxRunner invokes the function directly with a nil transaction; the
// fake stores ignore WithTx so everything runs against their in-memory maps.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeSessionStore is an in-memory store.StudySessionStore.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.StudySession

	updateErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*domain.StudySession)}
}

var _ store.StudySessionStore = (*fakeSessionStore)(nil)

func (f *fakeSessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; ok {
		return store.ErrDuplicate
	}
	f.sessions[session.ID] = cloneSession(session)
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (f *fakeSessionStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.StudySession, error) {
	return f.Get(ctx, id)
}

func (f *fakeSessionStore) Update(ctx context.Context, session *domain.StudySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.sessions[session.ID]; !ok {
		return store.ErrSessionNotFound
	}
	f.sessions[session.ID] = cloneSession(session)
	return nil
}

func (f *fakeSessionStore) ListActive(ctx context.Context, learnerID uuid.UUID) ([]*domain.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.StudySession
	for _, session := range f.sessions {
		if session.LearnerID == learnerID && !session.IsTerminal() {
			out = append(out, cloneSession(session))
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ListSince(ctx context.Context, learnerID uuid.UUID, since time.Time, limit int) ([]*domain.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.StudySession
	for _, session := range f.sessions {
		if session.LearnerID == learnerID && !session.StartedAt.Before(since) {
			out = append(out, cloneSession(session))
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionStore) WithTx(tx *sql.Tx) store.StudySessionStore { return f }

// fakeProgressStore is an in-memory store.CardProgressStore keyed by
// (learner, card).
type fakeProgressStore struct {
	mu      sync.Mutex
	records map[progressKey]*domain.CardProgress

	upsertErr error
}

type progressKey struct {
	learnerID uuid.UUID
	cardID    uuid.UUID
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: make(map[progressKey]*domain.CardProgress)}
}

var _ store.CardProgressStore = (*fakeProgressStore)(nil)

func (f *fakeProgressStore) put(progress *domain.CardProgress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[progressKey{progress.LearnerID, progress.CardID}] = cloneProgress(progress)
}

func (f *fakeProgressStore) Get(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[progressKey{learnerID, cardID}]
	if !ok {
		return nil, store.ErrCardProgressNotFound
	}
	return cloneProgress(record), nil
}

func (f *fakeProgressStore) GetForUpdate(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardProgress, error) {
	return f.Get(ctx, learnerID, cardID)
}

func (f *fakeProgressStore) Upsert(ctx context.Context, progress *domain.CardProgress) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if err := progress.Validate(); err != nil {
		return store.ErrInvalidEntity
	}
	f.put(progress)
	return nil
}

func (f *fakeProgressStore) CountDue(ctx context.Context, learnerID uuid.UUID, before time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key, record := range f.records {
		if key.learnerID == learnerID && !record.NextReview.After(before) {
			count++
		}
	}
	return count, nil
}

func (f *fakeProgressStore) FindByLearner(ctx context.Context, learnerID uuid.UUID, cardIDs []uuid.UUID) ([]*domain.CardProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(cardIDs))
	for _, id := range cardIDs {
		wanted[id] = struct{}{}
	}
	var out []*domain.CardProgress
	for key, record := range f.records {
		if key.learnerID != learnerID {
			continue
		}
		if len(cardIDs) > 0 {
			if _, ok := wanted[key.cardID]; !ok {
				continue
			}
		}
		out = append(out, cloneProgress(record))
	}
	return out, nil
}

func (f *fakeProgressStore) FindDue(ctx context.Context, learnerID uuid.UUID, cardIDs []uuid.UUID, now time.Time) ([]*domain.CardProgress, error) {
	records, err := f.FindByLearner(ctx, learnerID, cardIDs)
	if err != nil {
		return nil, err
	}
	var due []*domain.CardProgress
	for _, record := range records {
		if record.IsDue(now) {
			due = append(due, record)
		}
	}
	// Oldest due first, card ID as tie-break, matching the real store.
	for i := 0; i < len(due); i++ {
		for j := i + 1; j < len(due); j++ {
			a, b := due[i], due[j]
			if b.NextReview.Before(a.NextReview) ||
				(b.NextReview.Equal(a.NextReview) && b.CardID.String() < a.CardID.String()) {
				due[i], due[j] = due[j], due[i]
			}
		}
	}
	return due, nil
}

func (f *fakeProgressStore) WithTx(tx *sql.Tx) store.CardProgressStore { return f }

// fakeDeckCatalog serves a fixed ordered card list.
type fakeDeckCatalog struct {
	cards map[uuid.UUID][]uuid.UUID
}

var _ store.DeckCatalog = (*fakeDeckCatalog)(nil)

func (f *fakeDeckCatalog) ListCardIDs(ctx context.Context, deckID uuid.UUID, lessonID *uuid.UUID) ([]uuid.UUID, error) {
	cards, ok := f.cards[deckID]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	out := make([]uuid.UUID, len(cards))
	copy(out, cards)
	return out, nil
}

func cloneSession(session *domain.StudySession) *domain.StudySession {
	clone := *session
	clone.CardsScheduled = append([]uuid.UUID(nil), session.CardsScheduled...)
	clone.Answers = append([]domain.SessionAnswer(nil), session.Answers...)
	return &clone
}

func cloneProgress(progress *domain.CardProgress) *domain.CardProgress {
	clone := *progress
	clone.QualityHistory = append([]domain.QualityRecord(nil), progress.QualityHistory...)
	return &clone
}
