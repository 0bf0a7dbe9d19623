package domain

import (
	"time"

	"github.com/google/uuid"
)

// Campaign statuses. Exports rarely agree on status vocabulary, so ingestion
// always creates campaigns as ACTIVE and never mutates status afterwards.
const (
	CampaignStatusActive = "ACTIVE"
	CampaignStatusPaused = "PAUSED"
)

// Campaign represents one advertising campaign from one platform.
//
// ExternalID is derived from the source row (campaign name plus row
// position), not the platform's own campaign id. The pair
// (ExternalID, Platform) is globally unique and is the natural key used for
// upsert idempotency.
type Campaign struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Platform   Platform  `json:"platform"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCampaign creates a campaign in the ACTIVE state.
func NewCampaign(tenantID uuid.UUID, externalID, name string, platform Platform) Campaign {
	now := time.Now()
	return Campaign{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ExternalID: externalID,
		Name:       name,
		Platform:   platform,
		Status:     CampaignStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
