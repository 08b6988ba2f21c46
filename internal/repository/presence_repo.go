package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"employee-portal/internal/model"
)

// PresenceRepository is an append-only log. Rows are never updated or
// deleted by the application.
type PresenceRepository struct {
	pool *pgxpool.Pool
}

func NewPresenceRepository(pool *pgxpool.Pool) *PresenceRepository {
	return &PresenceRepository{pool: pool}
}

func (r *PresenceRepository) Insert(ctx context.Context, userID string, page string, userAgent string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO presence_logs (id, user_id, page, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), userID, page, userAgent, time.Now().UTC())
	if err != nil {
		return storageErr("insert presence log", err)
	}
	return nil
}

func (r *PresenceRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]model.PresenceLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, page, user_agent, created_at
		 FROM presence_logs
		 WHERE created_at >= $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		since, limit)
	if err != nil {
		return nil, storageErr("list recent presence", err)
	}
	defer rows.Close()

	logs := make([]model.PresenceLog, 0)
	for rows.Next() {
		var p model.PresenceLog
		if err := rows.Scan(&p.ID, &p.UserID, &p.Page, &p.UserAgent, &p.CreatedAt); err != nil {
			return nil, storageErr("scan presence log", err)
		}
		logs = append(logs, p)
	}
	return logs, rows.Err()
}
