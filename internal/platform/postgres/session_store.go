package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/platform/logger"
	"github.com/davrell/mnemo-api/internal/store"
)

// StudySessionStore implements store.StudySessionStore backed by the
// study_sessions table. The card queue, answer log and progress counters are
// stored as JSONB; they are only ever read and written whole.
type StudySessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStudySessionStore creates a StudySessionStore over the given connection
// or transaction. If logger is nil, the default logger is used.
func NewStudySessionStore(db store.DBTX, log *slog.Logger) *StudySessionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &StudySessionStore{
		db:     db,
		logger: log.With(slog.String("component", "study_session_store")),
	}
}

var _ store.StudySessionStore = (*StudySessionStore)(nil)

const sessionColumns = `
	id, learner_id, deck_id, lesson_id, mode, status,
	cards_scheduled, current_card_index, target_cards, target_time_minutes,
	progress, answers, break_reminders_enabled, break_interval_minutes,
	break_started_at, next_break_reminder, completion_type,
	performance_rating, recommended_mode, started_at, last_activity_at,
	completed_at
`

// Create implements store.StudySessionStore.Create.
func (s *StudySessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	cards, progress, answers, err := marshalSessionBlobs(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO study_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.LearnerID,
		session.DeckID,
		session.LessonID,
		session.Mode,
		session.Status,
		cards,
		session.CurrentCardIndex,
		session.TargetCards,
		session.TargetTimeMinutes,
		progress,
		answers,
		session.BreakRemindersEnabled,
		session.BreakIntervalMinutes,
		session.BreakStartedAt,
		session.NextBreakReminder,
		session.CompletionType,
		session.PerformanceRating,
		string(session.RecommendedMode),
		session.StartedAt,
		session.LastActivityAt,
		session.CompletedAt,
	)
	if err != nil {
		log.Error("failed to create study session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("learner_id", session.LearnerID.String()))
		return mapError(err, store.ErrSessionNotFound)
	}

	log.Debug("study session created",
		slog.String("session_id", session.ID.String()),
		slog.String("mode", string(session.Mode)),
		slog.Int("cards_scheduled", len(session.CardsScheduled)))
	return nil
}

// Get implements store.StudySessionStore.Get.
func (s *StudySessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// GetForUpdate implements store.StudySessionStore.GetForUpdate.
func (s *StudySessionStore) GetForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = $1 FOR UPDATE`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

// Update implements store.StudySessionStore.Update.
func (s *StudySessionStore) Update(ctx context.Context, session *domain.StudySession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	cards, progress, answers, err := marshalSessionBlobs(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE study_sessions SET
			status = $2,
			cards_scheduled = $3,
			current_card_index = $4,
			progress = $5,
			answers = $6,
			break_interval_minutes = $7,
			break_started_at = $8,
			next_break_reminder = $9,
			completion_type = $10,
			performance_rating = $11,
			recommended_mode = $12,
			last_activity_at = $13,
			completed_at = $14
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.Status,
		cards,
		session.CurrentCardIndex,
		progress,
		answers,
		session.BreakIntervalMinutes,
		session.BreakStartedAt,
		session.NextBreakReminder,
		session.CompletionType,
		session.PerformanceRating,
		string(session.RecommendedMode),
		session.LastActivityAt,
		session.CompletedAt,
	)
	if err != nil {
		log.Error("failed to update study session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return mapError(err, store.ErrSessionNotFound)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// ListActive implements store.StudySessionStore.ListActive.
func (s *StudySessionStore) ListActive(
	ctx context.Context,
	learnerID uuid.UUID,
) ([]*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE learner_id = $1 AND status IN ($2, $3)
		ORDER BY started_at DESC`

	return s.queryMany(
		ctx,
		query,
		learnerID,
		domain.SessionStatusActive,
		domain.SessionStatusBreak,
	)
}

// ListSince implements store.StudySessionStore.ListSince.
func (s *StudySessionStore) ListSince(
	ctx context.Context,
	learnerID uuid.UUID,
	since time.Time,
	limit int,
) ([]*domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE learner_id = $1 AND started_at >= $2
		ORDER BY started_at DESC`
	args := []any{learnerID, since}

	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	return s.queryMany(ctx, query, args...)
}

// WithTx implements store.StudySessionStore.WithTx.
func (s *StudySessionStore) WithTx(tx *sql.Tx) store.StudySessionStore {
	return &StudySessionStore{db: tx, logger: s.logger}
}

func (s *StudySessionStore) queryMany(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.StudySession, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.StudySession
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func (s *StudySessionStore) scanOne(row *sql.Row) (*domain.StudySession, error) {
	session, err := scanSession(row.Scan)
	if err != nil {
		return nil, mapError(err, store.ErrSessionNotFound)
	}
	return session, nil
}

func scanSession(scan func(...any) error) (*domain.StudySession, error) {
	var (
		session         domain.StudySession
		lessonID        *uuid.UUID
		mode            string
		status          string
		recommendedMode sql.NullString
		completionType  sql.NullString
		rating          sql.NullString
		cards           []byte
		progress        []byte
		answers         []byte
	)

	err := scan(
		&session.ID,
		&session.LearnerID,
		&session.DeckID,
		&lessonID,
		&mode,
		&status,
		&cards,
		&session.CurrentCardIndex,
		&session.TargetCards,
		&session.TargetTimeMinutes,
		&progress,
		&answers,
		&session.BreakRemindersEnabled,
		&session.BreakIntervalMinutes,
		&session.BreakStartedAt,
		&session.NextBreakReminder,
		&completionType,
		&rating,
		&recommendedMode,
		&session.StartedAt,
		&session.LastActivityAt,
		&session.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	session.LessonID = lessonID
	session.Mode = domain.StudyMode(mode)
	session.Status = domain.SessionStatus(status)
	session.CompletionType = completionType.String
	session.PerformanceRating = rating.String
	session.RecommendedMode = domain.StudyMode(recommendedMode.String)

	if err := json.Unmarshal(cards, &session.CardsScheduled); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card queue: %w", err)
	}
	if err := json.Unmarshal(progress, &session.Progress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session progress: %w", err)
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &session.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answer log: %w", err)
		}
	}
	if session.Answers == nil {
		session.Answers = []domain.SessionAnswer{}
	}

	return &session, nil
}

func marshalSessionBlobs(session *domain.StudySession) (cards, progress, answers []byte, err error) {
	if cards, err = json.Marshal(session.CardsScheduled); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal card queue: %w", err)
	}
	if progress, err = json.Marshal(session.Progress); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal session progress: %w", err)
	}
	if answers, err = json.Marshal(session.Answers); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal answer log: %w", err)
	}
	return cards, progress, answers, nil
}
