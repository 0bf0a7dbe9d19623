package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/richarq/admetrics/internal/domain"
)

// tenantRepository implements TenantRepository backed by pgxpool.
type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository creates a new tenant repository.
func NewTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &tenantRepository{pool: pool}
}

func (r *tenantRepository) Create(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO tenants (id, name, slug, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, slug, is_active, created_at, updated_at`,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.IsActive,
	)

	created, err := scanTenant(row)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to create tenant: %w", err)
	}
	return created, nil
}

func (r *tenantRepository) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, slug, is_active, created_at, updated_at
		 FROM tenants
		 WHERE slug = $1`,
		slug,
	)

	tenant, err := scanTenant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Tenant{}, fmt.Errorf("tenant %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("failed to get tenant by slug: %w", err)
	}
	return tenant, nil
}

func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, slug, is_active, created_at, updated_at
		 FROM tenants
		 ORDER BY slug`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

func scanTenant(row pgx.Row) (domain.Tenant, error) {
	var tenant domain.Tenant
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.IsActive,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	return tenant, err
}
