// Package integrations provides the integrations bounded context module:
// the integrations list with its enable toggle, webhook endpoints with
// delivery history and manual redelivery, and payment gateways.
package integrations

import (
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/internal/integrations/handler"
	"crm_portal_backend/internal/integrations/repository"
	"crm_portal_backend/internal/integrations/service"
	"crm_portal_backend/internal/scheduler"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the integrations bounded context module implementing
// http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the integrations module. The
// enqueuer may be nil when the task queue is not configured.
func NewModule(pool *pgxpool.Pool, enqueuer scheduler.DeliveryEnqueuer, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, enqueuer, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "integrations"
}

// RegisterRoutes mounts integrations, webhook and gateway routes on the
// provided router context. The gateway callback is mounted on the open
// v1 group; payment providers cannot present a user JWT.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	integrations := ctx.Protected.Group("/integrations")
	integrations.GET("", m.handler.ListIntegrations)
	integrations.PATCH("/:id/toggle", m.handler.ToggleIntegration)

	webhooks := ctx.Protected.Group("/webhooks")
	webhooks.GET("", m.handler.ListEndpoints)
	webhooks.POST("", m.handler.CreateEndpoint)
	webhooks.PATCH("/:id/toggle", m.handler.ToggleEndpoint)
	webhooks.GET("/:id/deliveries", m.handler.ListDeliveries)
	webhooks.POST("/:id/deliveries/:deliveryId/retry", m.handler.RetryDelivery)

	gateways := ctx.Protected.Group("/gateways")
	gateways.GET("", m.handler.ListGateways)
	gateways.POST("", m.handler.CreateGateway)

	ctx.V1.POST("/gateways/:id/callback", m.handler.GatewayCallback)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
