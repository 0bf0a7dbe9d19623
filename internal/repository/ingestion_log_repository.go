package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/richarq/admetrics/internal/domain"
)

type ingestionLogRepository struct {
	pool *pgxpool.Pool
}

// NewIngestionLogRepository wires a repository backed by pgxpool.
func NewIngestionLogRepository(pool *pgxpool.Pool) IngestionLogRepository {
	return &ingestionLogRepository{pool: pool}
}

func (r *ingestionLogRepository) Record(ctx context.Context, entry domain.IngestionLogEntry) error {
	if r.pool == nil {
		return fmt.Errorf("ingestion log repository not initialized")
	}

	var rowNumber any
	if entry.RowNumber != nil {
		rowNumber = *entry.RowNumber
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO ingestion_logs (tenant_id, platform, file_name, row_number, error_message)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.TenantID,
		string(entry.Platform),
		entry.FileName,
		rowNumber,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record ingestion log: %w", err)
	}

	return nil
}

func (r *ingestionLogRepository) List(ctx context.Context, tenantID uuid.UUID, fileName string, limit int, offset int) ([]domain.IngestionLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("ingestion log repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, tenant_id, platform, file_name, row_number, error_message, created_at
		 FROM ingestion_logs
		 WHERE tenant_id = $1
		   AND ($2 = '' OR file_name = $2)
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		tenantID,
		fileName,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.IngestionLogEntry
	for rows.Next() {
		var entry domain.IngestionLogEntry
		var platform string
		var rowNumber *int
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&platform,
			&entry.FileName,
			&rowNumber,
			&entry.ErrorMessage,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion log: %w", err)
		}
		entry.Platform = domain.Platform(platform)
		entry.RowNumber = rowNumber
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
