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

// CardProgressStore implements store.CardProgressStore backed by the
// card_progress table. The quality history is stored as a JSONB array and
// only ever appended to.
type CardProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardProgressStore creates a CardProgressStore over the given connection
// or transaction. If logger is nil, the default logger is used.
func NewCardProgressStore(db store.DBTX, log *slog.Logger) *CardProgressStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &CardProgressStore{
		db:     db,
		logger: log.With(slog.String("component", "card_progress_store")),
	}
}

var _ store.CardProgressStore = (*CardProgressStore)(nil)

const progressColumns = `
	learner_id, card_id, ease_factor, interval_days, repetitions,
	next_review, last_quality, times_studied, first_studied_at,
	last_studied_at, quality_history, created_at, updated_at
`

// Get implements store.CardProgressStore.Get.
func (s *CardProgressStore) Get(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
) (*domain.CardProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM card_progress
		WHERE learner_id = $1 AND card_id = $2`

	return s.scanOne(s.db.QueryRowContext(ctx, query, learnerID, cardID))
}

// GetForUpdate implements store.CardProgressStore.GetForUpdate. It must run
// inside a transaction; the row lock is held until commit or rollback.
func (s *CardProgressStore) GetForUpdate(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
) (*domain.CardProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM card_progress
		WHERE learner_id = $1 AND card_id = $2
		FOR UPDATE`

	return s.scanOne(s.db.QueryRowContext(ctx, query, learnerID, cardID))
}

// Upsert implements store.CardProgressStore.Upsert.
func (s *CardProgressStore) Upsert(ctx context.Context, progress *domain.CardProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("card progress validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("learner_id", progress.LearnerID.String()),
			slog.String("card_id", progress.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	history, err := json.Marshal(progress.QualityHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal quality history: %w", err)
	}

	query := `
		INSERT INTO card_progress (
			learner_id, card_id, ease_factor, interval_days, repetitions,
			next_review, last_quality, times_studied, first_studied_at,
			last_studied_at, quality_history, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (learner_id, card_id) DO UPDATE SET
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			next_review = EXCLUDED.next_review,
			last_quality = EXCLUDED.last_quality,
			times_studied = EXCLUDED.times_studied,
			first_studied_at = EXCLUDED.first_studied_at,
			last_studied_at = EXCLUDED.last_studied_at,
			quality_history = EXCLUDED.quality_history,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		progress.LearnerID,
		progress.CardID,
		progress.EaseFactor,
		progress.Interval,
		progress.Repetitions,
		progress.NextReview,
		progress.LastQuality,
		progress.TimesStudied,
		nullableTime(progress.FirstStudiedAt),
		nullableTime(progress.LastStudiedAt),
		history,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert card progress",
			slog.String("error", err.Error()),
			slog.String("learner_id", progress.LearnerID.String()),
			slog.String("card_id", progress.CardID.String()))
		return mapError(err, store.ErrCardProgressNotFound)
	}

	return nil
}

// CountDue implements store.CardProgressStore.CountDue.
func (s *CardProgressStore) CountDue(
	ctx context.Context,
	learnerID uuid.UUID,
	before time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM card_progress
		WHERE learner_id = $1 AND next_review <= $2
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, learnerID, before).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// FindByLearner implements store.CardProgressStore.FindByLearner.
func (s *CardProgressStore) FindByLearner(
	ctx context.Context,
	learnerID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]*domain.CardProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM card_progress
		WHERE learner_id = $1`
	args := []any{learnerID}

	if len(cardIDs) > 0 {
		query += ` AND card_id = ANY($2::uuid[])`
		args = append(args, uuidStrings(cardIDs))
	}
	query += ` ORDER BY card_id`

	return s.queryMany(ctx, query, args...)
}

// FindDue implements store.CardProgressStore.FindDue. Results come back
// oldest due first with card ID as the stable tie-break.
func (s *CardProgressStore) FindDue(
	ctx context.Context,
	learnerID uuid.UUID,
	cardIDs []uuid.UUID,
	now time.Time,
) ([]*domain.CardProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM card_progress
		WHERE learner_id = $1 AND next_review <= $2`
	args := []any{learnerID, now}

	if len(cardIDs) > 0 {
		query += ` AND card_id = ANY($3::uuid[])`
		args = append(args, uuidStrings(cardIDs))
	}
	query += ` ORDER BY next_review ASC, card_id ASC`

	return s.queryMany(ctx, query, args...)
}

// WithTx implements store.CardProgressStore.WithTx.
func (s *CardProgressStore) WithTx(tx *sql.Tx) store.CardProgressStore {
	return &CardProgressStore{db: tx, logger: s.logger}
}

func (s *CardProgressStore) queryMany(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.CardProgress, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.CardProgress
	for rows.Next() {
		progress, err := scanProgress(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, progress)
	}

	return records, rows.Err()
}

func (s *CardProgressStore) scanOne(row *sql.Row) (*domain.CardProgress, error) {
	progress, err := scanProgress(row.Scan)
	if err != nil {
		return nil, mapError(err, store.ErrCardProgressNotFound)
	}
	return progress, nil
}

func scanProgress(scan func(...any) error) (*domain.CardProgress, error) {
	var (
		progress       domain.CardProgress
		firstStudiedAt sql.NullTime
		lastStudiedAt  sql.NullTime
		history        []byte
	)

	err := scan(
		&progress.LearnerID,
		&progress.CardID,
		&progress.EaseFactor,
		&progress.Interval,
		&progress.Repetitions,
		&progress.NextReview,
		&progress.LastQuality,
		&progress.TimesStudied,
		&firstStudiedAt,
		&lastStudiedAt,
		&history,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if firstStudiedAt.Valid {
		progress.FirstStudiedAt = firstStudiedAt.Time
	}
	if lastStudiedAt.Valid {
		progress.LastStudiedAt = lastStudiedAt.Time
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &progress.QualityHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quality history: %w", err)
		}
	}

	return &progress, nil
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
