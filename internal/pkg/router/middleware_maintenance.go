package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/cybershield/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed under
// app.maintenance.endpoints. The list is read per request so a config reload
// takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg != nil && lo.Contains(cfg.GetArray("app.maintenance.endpoints"), matchedRoutePath(r)) {
				writeJSON(w, errorResponse{Reason: "MAINTENANCE", Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
