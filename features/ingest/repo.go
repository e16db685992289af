package ingest

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, run *Run) error {
	query := `INSERT INTO ingest_runs (id, directory, status) VALUES ($1, $2, $3) RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, run.ID, run.Directory, run.Status).
		Scan(&run.CreatedAt, &run.UpdatedAt)
}

func (r *PostgresRepo) UpdateResult(ctx context.Context, id, status string, totalFiles, totalChunks int, failedFiles []string, errMsg string) error {
	query := `
		UPDATE ingest_runs
		SET status = $1, total_files = $2, total_chunks = $3, failed_files = $4, error = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, status, totalFiles, totalChunks, pq.Array(failedFiles), errMsg, id)
	return err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Run, error) {
	query := `SELECT id, directory, status, total_files, total_chunks, failed_files, error, created_at, updated_at FROM ingest_runs ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Directory, &run.Status, &run.TotalFiles, &run.TotalChunks,
			pq.Array(&run.FailedFiles), &run.Error, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
