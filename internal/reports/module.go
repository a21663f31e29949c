// Package reports provides the reports bounded context module: the
// lifecycle funnel with stage drill-down and CSV export.
package reports

import (
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/internal/reports/handler"
	"crm_portal_backend/internal/reports/repository"
	"crm_portal_backend/internal/reports/service"
	"crm_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the reports bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the reports module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes mounts report routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/reports")
	group.GET("/funnel", m.handler.GetFunnel)
	group.GET("/funnel/stages/:stage", m.handler.Drilldown)
	group.GET("/funnel/export", m.handler.ExportFunnel)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
