package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/richarq/admetrics/internal/domain"
)

// campaignRepository implements CampaignRepository backed by pgxpool.
type campaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(pool *pgxpool.Pool) CampaignRepository {
	return &campaignRepository{pool: pool}
}

func (r *campaignRepository) Exists(ctx context.Context, externalID string, platform domain.Platform) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM campaigns WHERE external_id = $1 AND platform = $2
		 )`,
		externalID,
		string(platform),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check campaign existence: %w", err)
	}
	return exists, nil
}

// Upsert creates or updates a campaign on the (external_id, platform) natural
// key. Re-ingestion refreshes the name only; status and tenant_id stay as
// first written. The statement is a single atomic INSERT .. ON CONFLICT so
// concurrent ingestions cannot race into duplicates.
func (r *campaignRepository) Upsert(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO campaigns (id, tenant_id, external_id, name, platform, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (external_id, platform)
		 DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		 RETURNING id, tenant_id, external_id, name, platform, status, created_at, updated_at`,
		campaign.ID,
		campaign.TenantID,
		campaign.ExternalID,
		campaign.Name,
		string(campaign.Platform),
		campaign.Status,
	)

	stored, err := scanCampaign(row)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("failed to upsert campaign: %w", err)
	}
	return stored, nil
}

func (r *campaignRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(
		ctx,
		`SELECT count(*) FROM campaigns WHERE tenant_id = $1`,
		tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count campaigns: %w", err)
	}
	return count, nil
}

func (r *campaignRepository) CountByPlatform(ctx context.Context, tenantID uuid.UUID) (map[domain.Platform]int64, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT platform, count(*)
		 FROM campaigns
		 WHERE tenant_id = $1
		 GROUP BY platform`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count campaigns by platform: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Platform]int64)
	for rows.Next() {
		var platform string
		var count int64
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("failed to scan platform count: %w", err)
		}
		counts[domain.Platform(platform)] = count
	}
	return counts, rows.Err()
}

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var campaign domain.Campaign
	var platform string
	err := row.Scan(
		&campaign.ID,
		&campaign.TenantID,
		&campaign.ExternalID,
		&campaign.Name,
		&platform,
		&campaign.Status,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	campaign.Platform = domain.Platform(platform)
	return campaign, err
}
