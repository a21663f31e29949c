// Package transport defines request and response shapes for the
// integrations HTTP API.
package transport

import (
	"crm_portal_backend/internal/integrations/repository"
)

// ToggleIntegrationRequest flips the enable switch on an integration row.
type ToggleIntegrationRequest struct {
	Enabled bool `json:"enabled"`
}

// CreateEndpointRequest registers a new webhook endpoint.
type CreateEndpointRequest struct {
	URL         string   `json:"url" binding:"required,url"`
	Description string   `json:"description" binding:"omitempty,max=500"`
	Secret      string   `json:"secret" binding:"required,min=16,max=128"`
	EventTypes  []string `json:"eventTypes" binding:"required,min=1,dive,oneof=leads.lead.created leads.lead.converted billing.invoice.issued billing.invoice.paid contracts.document.uploaded"`
}

// ToggleEndpointRequest flips the active switch on a webhook endpoint.
type ToggleEndpointRequest struct {
	Active bool `json:"active"`
}

// ListDeliveriesRequest captures query parameters for the delivery
// history rows under an endpoint.
type ListDeliveriesRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending delivered failed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// CreateGatewayRequest registers a payment gateway. The signing secret
// is stored bcrypt-hashed and never returned.
type CreateGatewayRequest struct {
	Provider    string `json:"provider" binding:"required,oneof=mollie stripe adyen"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=100"`
	Secret      string `json:"secret" binding:"required,min=16,max=128"`
}

// DeliveryListResponse is the paginated delivery history payload.
type DeliveryListResponse struct {
	Deliveries []repository.Delivery `json:"deliveries"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
}

// RetryResponse reports the delivery row created by a manual retry.
type RetryResponse struct {
	Delivery repository.Delivery `json:"delivery"`
}
