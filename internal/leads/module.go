// Package leads provides the leads bounded context module.
// It covers the lead list and detail pages, the scoring widget,
// lifecycle stage changes and conversion into contacts.
package leads

import (
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/internal/leads/handler"
	"crm_portal_backend/internal/leads/repository"
	"crm_portal_backend/internal/leads/service"
	"crm_portal_backend/platform/events"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, contacts service.ContactCreator, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, contacts, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.GetDetail)
	group.GET("/:id/score", m.handler.GetScore)
	group.PATCH("/:id", m.handler.Update)
	group.PATCH("/:id/stage", m.handler.ChangeStage)
	group.POST("/:id/convert", m.handler.Convert)
	group.POST("/:id/activities", m.handler.AddActivity)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
