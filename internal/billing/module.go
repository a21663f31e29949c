// Package billing provides the billing bounded context module: invoice
// creation, the form calculation preview and payment transitions.
package billing

import (
	"crm_portal_backend/internal/billing/handler"
	"crm_portal_backend/internal/billing/repository"
	"crm_portal_backend/internal/billing/service"
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/platform/events"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the billing bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the billing module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "billing"
}

// RegisterRoutes mounts invoice routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/invoices")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.POST("/calculate", m.handler.Calculate)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/pay", m.handler.MarkPaid)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
