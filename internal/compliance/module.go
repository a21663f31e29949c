// Package compliance provides the compliance bounded context module:
// the audit trail, SSO connection configuration and the role permission
// matrix. All routes require the admin role.
package compliance

import (
	"crm_portal_backend/internal/compliance/handler"
	"crm_portal_backend/internal/compliance/repository"
	"crm_portal_backend/internal/compliance/service"
	"crm_portal_backend/internal/events"
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the compliance bounded context module implementing
// http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	subscriber *service.AuditSubscriber
}

// NewModule creates and initializes the compliance module and hooks the
// audit subscriber into the event bus.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	subscriber := service.NewAuditSubscriber(repo, log)
	if bus != nil {
		subscriber.Register(bus)
	}

	return &Module{
		handler:    handler.New(svc, val),
		service:    svc,
		subscriber: subscriber,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "compliance"
}

// RegisterRoutes mounts compliance routes on the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/audit-events", m.handler.ListAudit)

	sso := ctx.Admin.Group("/sso-connections")
	sso.GET("", m.handler.ListSSOConnections)
	sso.POST("", m.handler.CreateSSOConnection)
	sso.GET("/:id", m.handler.GetSSOConnection)
	sso.PATCH("/:id", m.handler.UpdateSSOConnection)
	sso.DELETE("/:id", m.handler.DeleteSSOConnection)

	ctx.Admin.GET("/roles", m.handler.ListRoles)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
