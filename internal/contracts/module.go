// Package contracts provides the contracts bounded context module:
// contract lifecycle, document storage and reusable templates.
package contracts

import (
	"crm_portal_backend/internal/adapters/storage"
	"crm_portal_backend/internal/contracts/handler"
	"crm_portal_backend/internal/contracts/repository"
	"crm_portal_backend/internal/contracts/service"
	apphttp "crm_portal_backend/internal/http"
	"crm_portal_backend/platform/events"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contracts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the contracts module. The storage
// service may be nil when object storage is disabled.
func NewModule(pool *pgxpool.Pool, store storage.Service, bucket string, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, store, bucket, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contracts"
}

// RegisterRoutes mounts contract and template routes on the provided
// router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/contracts")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/documents/:docId/download-url", m.handler.DocumentDownloadURL)
	group.GET("/:id", m.handler.Get)
	group.PATCH("/:id/status", m.handler.ChangeStatus)
	group.POST("/:id/documents/upload-url", m.handler.RequestDocumentUpload)
	group.POST("/:id/documents", m.handler.ConfirmDocument)

	templates := ctx.Protected.Group("/templates")
	templates.GET("", m.handler.ListTemplates)
	templates.POST("/:id/preview", m.handler.PreviewTemplate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
