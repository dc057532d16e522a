package progress

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/store"
)

// fakeSessionStore serves a fixed session list; analytics only reads.
type fakeSessionStore struct {
	sessions []*domain.StudySession
}

var _ store.StudySessionStore = (*fakeSessionStore)(nil)

func (f *fakeSessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.StudySession, error) {
	for _, session := range f.sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return nil, store.ErrSessionNotFound
}

func (f *fakeSessionStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.StudySession, error) {
	return f.Get(ctx, id)
}

func (f *fakeSessionStore) Update(ctx context.Context, session *domain.StudySession) error {
	return nil
}

func (f *fakeSessionStore) ListActive(ctx context.Context, learnerID uuid.UUID) ([]*domain.StudySession, error) {
	var out []*domain.StudySession
	for _, session := range f.sessions {
		if session.LearnerID == learnerID && !session.IsTerminal() {
			out = append(out, session)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) ListSince(ctx context.Context, learnerID uuid.UUID, since time.Time, limit int) ([]*domain.StudySession, error) {
	var out []*domain.StudySession
	for _, session := range f.sessions {
		if session.LearnerID == learnerID && !session.StartedAt.Before(since) {
			out = append(out, session)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionStore) WithTx(tx *sql.Tx) store.StudySessionStore { return f }

// fakeProgressStore serves fixed card progress records.
type fakeProgressStore struct {
	records []*domain.CardProgress
}

var _ store.CardProgressStore = (*fakeProgressStore)(nil)

func (f *fakeProgressStore) Get(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardProgress, error) {
	for _, record := range f.records {
		if record.LearnerID == learnerID && record.CardID == cardID {
			return record, nil
		}
	}
	return nil, store.ErrCardProgressNotFound
}

func (f *fakeProgressStore) GetForUpdate(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.CardProgress, error) {
	return f.Get(ctx, learnerID, cardID)
}

func (f *fakeProgressStore) Upsert(ctx context.Context, progress *domain.CardProgress) error {
	f.records = append(f.records, progress)
	return nil
}

func (f *fakeProgressStore) CountDue(ctx context.Context, learnerID uuid.UUID, before time.Time) (int, error) {
	count := 0
	for _, record := range f.records {
		if record.LearnerID == learnerID && !record.NextReview.After(before) {
			count++
		}
	}
	return count, nil
}

func (f *fakeProgressStore) FindByLearner(ctx context.Context, learnerID uuid.UUID, cardIDs []uuid.UUID) ([]*domain.CardProgress, error) {
	wanted := make(map[uuid.UUID]struct{}, len(cardIDs))
	for _, id := range cardIDs {
		wanted[id] = struct{}{}
	}
	var out []*domain.CardProgress
	for _, record := range f.records {
		if record.LearnerID != learnerID {
			continue
		}
		if len(cardIDs) > 0 {
			if _, ok := wanted[record.CardID]; !ok {
				continue
			}
		}
		out = append(out, record)
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
	return due, nil
}

func (f *fakeProgressStore) WithTx(tx *sql.Tx) store.CardProgressStore { return f }
