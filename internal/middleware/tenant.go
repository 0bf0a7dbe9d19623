package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richarq/admetrics/internal/auth"
)

// TenantHeader carries the caller's tenant scope when a reverse proxy
// injects it in front of the service.
const TenantHeader = "X-Tenant-Id"

// TenantScope attaches the tenant id from the request header, if present, to
// the request context. Downstream handlers reject work for other tenants.
func TenantScope(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(TenantHeader); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn("invalid tenant header", zap.String("value", raw))
				http.Error(w, "invalid "+TenantHeader+" header", http.StatusBadRequest)
				return
			}
			r = r.WithContext(auth.ContextWithTenantID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
