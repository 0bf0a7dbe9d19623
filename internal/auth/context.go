package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type contextKey string

const tenantIDKey contextKey = "tenantID"

// ContextWithTenantID returns a new context that carries the authenticated tenant scope.
func ContextWithTenantID(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tenantIDKey, id)
}

// TenantIDFromContext retrieves the authenticated tenant scope from the context, if any.
func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	value := ctx.Value(tenantIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	if id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// EnforceTenantScope ensures the provided tenant matches the authenticated scope
// when one is present. Requests without a scope pass through unchecked.
func EnforceTenantScope(ctx context.Context, tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return fmt.Errorf("tenantId is required")
	}
	scopedID, ok := TenantIDFromContext(ctx)
	if !ok {
		return nil
	}
	if scopedID != tenantID {
		return fmt.Errorf("tenant %s does not match authenticated scope", tenantID)
	}
	return nil
}
