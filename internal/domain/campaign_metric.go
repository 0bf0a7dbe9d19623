package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignMetric is one snapshot of performance numbers for a campaign on one
// calendar date. The pair (CampaignID, Date) is unique: re-ingesting the same
// date replaces the snapshot wholesale, it never accumulates.
//
// CPC, CPM and CTR are nullable because a zero there is a real value while
// nil means the source did not supply one. CTR is stored as a 0..1 fraction.
type CampaignMetric struct {
	ID          uuid.UUID `json:"id"`
	CampaignID  uuid.UUID `json:"campaign_id"`
	Date        time.Time `json:"date"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Spend       float64   `json:"spend"`
	Conversions float64   `json:"conversions"`
	CPC         *float64  `json:"cpc"`
	CPM         *float64  `json:"cpm"`
	CTR         *float64  `json:"ctr"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
