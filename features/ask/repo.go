package ask

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, entry *HistoryEntry) error {
	query := `INSERT INTO chat_history (session_id, user_id, question, answer) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, entry.SessionID, entry.UserID, entry.Question, entry.Answer).
		Scan(&entry.ID, &entry.CreatedAt)
}

func (r *PostgresRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error) {
	query := `SELECT id, session_id, user_id, question, answer, created_at FROM chat_history WHERE session_id = $1 ORDER BY created_at ASC, id ASC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.Question, &e.Answer, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) CountQuestions(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM chat_history`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
