package handler

import (
	"net/http"

	"crm_portal_backend/internal/search/service"
	"crm_portal_backend/internal/search/transport"
	"crm_portal_backend/platform/httpkit"
	"crm_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.GlobalSearch)
}

// GlobalSearch answers the debounced search box. The client applies the
// trailing-edge debounce; the endpoint itself is a plain query.
// GET /api/v1/search?q=
func (h *Handler) GlobalSearch(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	tenantIDPtr := identity.TenantID()
	if tenantIDPtr == nil {
		httpkit.Error(c, http.StatusForbidden, "organization required", nil)
		return
	}

	result, err := h.svc.GlobalSearch(c.Request.Context(), *tenantIDPtr, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
