package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/richarq/admetrics/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// TenantRepository defines the interface for tenant operations. Tenants are
// created by the admin flow; ingestion only ever reads them.
type TenantRepository interface {
	Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
}

// CampaignRepository defines the interface for campaign operations. Upsert
// must be atomic on the (external_id, platform) natural key so concurrent
// callers cannot produce duplicates.
type CampaignRepository interface {
	Exists(ctx context.Context, externalID string, platform domain.Platform) (bool, error)
	Upsert(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountByPlatform(ctx context.Context, tenantID uuid.UUID) (map[domain.Platform]int64, error)
}

// CampaignMetricRepository defines the interface for metric snapshot
// operations. Upsert is a full replace of every numeric field on the
// (campaign_id, date) natural key, never an incremental merge.
type CampaignMetricRepository interface {
	Exists(ctx context.Context, campaignID uuid.UUID, date time.Time) (bool, error)
	Upsert(ctx context.Context, metric domain.CampaignMetric) (domain.CampaignMetric, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// IngestionLogRepository stores ingestion errors for observability.
type IngestionLogRepository interface {
	Record(ctx context.Context, entry domain.IngestionLogEntry) error
	List(ctx context.Context, tenantID uuid.UUID, fileName string, limit int, offset int) ([]domain.IngestionLogEntry, error)
}
