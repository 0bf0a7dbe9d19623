package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is the isolation boundary for ingested data. Every campaign belongs
// to exactly one tenant. Tenants are created out-of-band by an admin flow and
// are immutable as far as ingestion is concerned.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTenant creates a tenant with a fresh id.
func NewTenant(name, slug string) Tenant {
	now := time.Now()
	return Tenant{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
