package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aarshiv/grader-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// Repository is the persisted per-user history store. Items are immutable
// once written; the only mutations are append and delete.
type Repository interface {
	Create(ctx context.Context, item *models.HistoryItem) error
	ListByUser(ctx context.Context, userID string) ([]models.HistoryItem, error)
	GetByID(ctx context.Context, userID, id string) (*models.HistoryItem, error)
	Delete(ctx context.Context, userID, id string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *models.HistoryItem) error {
	reportJSON, err := json.Marshal(item.Report)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO evaluations (id, user_id, timestamp, sheets_count, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		item.Timestamp,
		item.SheetsCount,
		string(reportJSON),
		time.Now(),
	)

	return err
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]models.HistoryItem, error) {
	query := `
		SELECT id, user_id, timestamp, sheets_count, report
		FROM evaluations
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.HistoryItem{}
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, userID, id string) (*models.HistoryItem, error) {
	query := `
		SELECT id, user_id, timestamp, sheets_count, report
		FROM evaluations
		WHERE id = $1 AND user_id = $2
	`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id, userID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *repository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM evaluations WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func scanItem(scan func(dest ...any) error) (*models.HistoryItem, error) {
	var item models.HistoryItem
	var reportJSON string

	if err := scan(&item.ID, &item.UserID, &item.Timestamp, &item.SheetsCount, &reportJSON); err != nil {
		return nil, err
	}

	if reportJSON != "" {
		if err := json.Unmarshal([]byte(reportJSON), &item.Report); err != nil {
			return nil, err
		}
	}

	return &item, nil
}
