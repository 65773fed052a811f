package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightstart/screening-api/internal/models"
)

// Repository stores prediction records in Postgres. Records are append-only:
// the only mutation is the administrative delete.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the predictions table when it does not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS predictions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			username TEXT NOT NULL,
			filename TEXT NOT NULL,
			original_filename TEXT NOT NULL,
			result_class TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_predictions_user_created
			ON predictions (user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_predictions_class
			ON predictions (result_class);
	`)
	if err != nil {
		return fmt.Errorf("migrate predictions table: %w", err)
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, event *models.ArchiveEvent) error {
	query := `
		INSERT INTO predictions
			(id, user_id, username, filename, original_filename,
			 result_class, confidence, image_url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID, event.UserID, event.Username, event.Filename,
		event.OriginalFilename, event.ResultClass, event.Confidence,
		event.ImageURL, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert prediction record: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.PredictionRecord, error) {
	query := `
		SELECT id, user_id, username, filename, original_filename,
		       result_class, confidence, image_url, created_at
		FROM predictions
		WHERE id = $1
	`
	record, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get prediction record: %w", err)
	}
	return record, nil
}

// ListByUser returns a user's records, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.PredictionRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM predictions WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prediction records: %w", err)
	}

	query := `
		SELECT id, user_id, username, filename, original_filename,
		       result_class, confidence, image_url, created_at
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list prediction records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.PredictionRecord, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan prediction record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list prediction records: %w", err)
	}

	return records, total, nil
}

// Delete removes one record. Admin-only; enforced by the caller.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM predictions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prediction record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (*models.PredictionRecord, error) {
	var record models.PredictionRecord
	err := row.Scan(
		&record.ID, &record.UserID, &record.Username,
		&record.Filename, &record.OriginalFilename,
		&record.ResultClass, &record.Confidence,
		&record.ImageURL, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
