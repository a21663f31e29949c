// Package dashboards provides the dashboards bounded context module:
// the executive and receivables overviews.
package dashboards

import (
	"crm_portal_backend/internal/dashboards/cache"
	"crm_portal_backend/internal/dashboards/handler"
	"crm_portal_backend/internal/dashboards/repository"
	"crm_portal_backend/internal/dashboards/service"
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the dashboards bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the dashboards module. The cache
// may be nil when Redis is not configured.
func NewModule(pool *pgxpool.Pool, c *cache.Cache, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, c, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dashboards"
}

// RegisterRoutes mounts dashboard routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/dashboards")
	group.GET("/executive", m.handler.Executive)
	group.GET("/receivables", m.handler.Receivables)
	group.GET("/receivables/buckets/:bucket", m.handler.BucketInvoices)
	group.GET("/receivables/export", m.handler.ExportReceivables)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
