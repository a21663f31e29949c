// Package repository provides PostgreSQL persistence for integrations,
// webhook endpoints with their delivery history and payment gateways.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// Delivery statuses.
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// Integration is a third-party connection shown on the integrations
// list page.
type Integration struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenantId"`
	Provider  string    `json:"provider"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	IsEnabled bool      `json:"isEnabled"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// Endpoint is an outbound webhook destination.
type Endpoint struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenantId"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Secret      string    `json:"-"`
	EventTypes  []string  `json:"eventTypes"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// Delivery is a single webhook delivery attempt. Redelivery creates a
// new row referencing the failed one through RetryOf.
type Delivery struct {
	ID         uuid.UUID  `json:"id"`
	EndpointID uuid.UUID  `json:"endpointId"`
	TenantID   uuid.UUID  `json:"tenantId"`
	EventType  string     `json:"eventType"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	StatusCode int        `json:"statusCode,omitempty"`
	Error      string     `json:"error,omitempty"`
	RetryOf    *uuid.UUID `json:"retryOf,omitempty"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

// Gateway is a payment provider whose inbound callbacks are verified
// against a bcrypt-hashed signing secret.
type Gateway struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenantId"`
	Provider    string    `json:"provider"`
	DisplayName string    `json:"displayName"`
	SecretHash  string    `json:"-"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// DeliveryFilters narrows the delivery history query.
type DeliveryFilters struct {
	Status   string
	Page     int
	PageSize int
}

// Repository defines persistence operations for the integrations context.
type Repository interface {
	ListIntegrations(ctx context.Context, tenantID uuid.UUID) ([]Integration, error)
	SetIntegrationEnabled(ctx context.Context, tenantID, id uuid.UUID, enabled bool) (Integration, error)

	ListEndpoints(ctx context.Context, tenantID uuid.UUID) ([]Endpoint, error)
	GetEndpoint(ctx context.Context, tenantID, id uuid.UUID) (Endpoint, error)
	CreateEndpoint(ctx context.Context, endpoint Endpoint) (Endpoint, error)
	SetEndpointActive(ctx context.Context, tenantID, id uuid.UUID, active bool) (Endpoint, error)

	ListDeliveries(ctx context.Context, tenantID, endpointID uuid.UUID, filters DeliveryFilters) ([]Delivery, int, error)
	GetDelivery(ctx context.Context, tenantID, id uuid.UUID) (Delivery, error)
	CreateDelivery(ctx context.Context, delivery Delivery) (Delivery, error)
	FinishDelivery(ctx context.Context, id uuid.UUID, status string, statusCode int, deliveryErr string) error

	ListGateways(ctx context.Context, tenantID uuid.UUID) ([]Gateway, error)
	GetGateway(ctx context.Context, tenantID, id uuid.UUID) (Gateway, error)
	// GetGatewayByID is used by the unauthenticated callback route where
	// no tenant claim is available.
	GetGatewayByID(ctx context.Context, id uuid.UUID) (Gateway, error)
	CreateGateway(ctx context.Context, gateway Gateway) (Gateway, error)
}
