package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/richarq/admetrics/internal/domain"
)

// campaignMetricRepository implements CampaignMetricRepository backed by
// pgxpool.
type campaignMetricRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignMetricRepository creates a new campaign metric repository.
func NewCampaignMetricRepository(pool *pgxpool.Pool) CampaignMetricRepository {
	return &campaignMetricRepository{pool: pool}
}

func (r *campaignMetricRepository) Exists(ctx context.Context, campaignID uuid.UUID, date time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM campaign_metrics WHERE campaign_id = $1 AND date = $2
		 )`,
		campaignID,
		date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check metric existence: %w", err)
	}
	return exists, nil
}

// Upsert writes one snapshot on the (campaign_id, date) natural key. Every
// numeric field is replaced wholesale: if today's import carries fewer fields
// than yesterday's, the missing ones become zero/null rather than keeping the
// previous values.
func (r *campaignMetricRepository) Upsert(ctx context.Context, metric domain.CampaignMetric) (domain.CampaignMetric, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO campaign_metrics
		   (id, campaign_id, date, impressions, clicks, spend, conversions, cpc, cpm, ctr)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (campaign_id, date)
		 DO UPDATE SET
		   impressions = EXCLUDED.impressions,
		   clicks = EXCLUDED.clicks,
		   spend = EXCLUDED.spend,
		   conversions = EXCLUDED.conversions,
		   cpc = EXCLUDED.cpc,
		   cpm = EXCLUDED.cpm,
		   ctr = EXCLUDED.ctr,
		   updated_at = now()
		 RETURNING id, campaign_id, date, impressions, clicks, spend, conversions, cpc, cpm, ctr, created_at, updated_at`,
		metric.ID,
		metric.CampaignID,
		metric.Date,
		metric.Impressions,
		metric.Clicks,
		metric.Spend,
		metric.Conversions,
		metric.CPC,
		metric.CPM,
		metric.CTR,
	)

	stored, err := scanMetric(row)
	if err != nil {
		return domain.CampaignMetric{}, fmt.Errorf("failed to upsert metric: %w", err)
	}
	return stored, nil
}

func (r *campaignMetricRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(
		ctx,
		`SELECT count(*)
		 FROM campaign_metrics m
		 JOIN campaigns c ON c.id = m.campaign_id
		 WHERE c.tenant_id = $1`,
		tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count metrics: %w", err)
	}
	return count, nil
}

func scanMetric(row pgx.Row) (domain.CampaignMetric, error) {
	var metric domain.CampaignMetric
	err := row.Scan(
		&metric.ID,
		&metric.CampaignID,
		&metric.Date,
		&metric.Impressions,
		&metric.Clicks,
		&metric.Spend,
		&metric.Conversions,
		&metric.CPC,
		&metric.CPM,
		&metric.CTR,
		&metric.CreatedAt,
		&metric.UpdatedAt,
	)
	return metric, err
}
