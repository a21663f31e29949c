// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"crm_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	Company  string    `json:"company,omitempty"`
	Source   string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published when a lead moves to a different
// lifecycle stage.
type LeadStageChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	OldStage  string    `json:"oldStage"`
	NewStage  string    `json:"newStage"`
	ChangedBy uuid.UUID `json:"changedBy"`
}

func (e LeadStageChanged) EventName() string { return "leads.stage.changed" }

// LeadConverted is published when a lead is converted into a contact.
type LeadConverted struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	ContactID   uuid.UUID `json:"contactId"`
	TenantID    uuid.UUID `json:"tenantId"`
	ConvertedBy uuid.UUID `json:"convertedBy"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// =============================================================================
// Billing Domain Events
// =============================================================================

// InvoiceIssued is published when a new invoice is created.
type InvoiceIssued struct {
	BaseEvent
	InvoiceID     uuid.UUID `json:"invoiceId"`
	TenantID      uuid.UUID `json:"tenantId"`
	ContactID     uuid.UUID `json:"contactId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerName  string    `json:"customerName"`
	TotalCents    int64     `json:"totalCents"`
	Currency      string    `json:"currency"`
	DueDate       string    `json:"dueDate"`
}

func (e InvoiceIssued) EventName() string { return "billing.invoice.issued" }

// InvoicePaid is published when an invoice transitions to paid.
type InvoicePaid struct {
	BaseEvent
	InvoiceID     uuid.UUID `json:"invoiceId"`
	TenantID      uuid.UUID `json:"tenantId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerName  string    `json:"customerName"`
	TotalCents    int64     `json:"totalCents"`
	Currency      string    `json:"currency"`
}

func (e InvoicePaid) EventName() string { return "billing.invoice.paid" }

// =============================================================================
// Integrations Domain Events
// =============================================================================

// WebhookDeliveryFailed is published when a webhook delivery attempt
// exhausts without a 2xx response. Redelivery is never automatic; an
// operator triggers it explicitly from the endpoint detail page.
type WebhookDeliveryFailed struct {
	BaseEvent
	EndpointID uuid.UUID `json:"endpointId"`
	DeliveryID uuid.UUID `json:"deliveryId"`
	TenantID   uuid.UUID `json:"tenantId"`
	EventType  string    `json:"eventType"`
	StatusCode int       `json:"statusCode"`
}

func (e WebhookDeliveryFailed) EventName() string { return "integrations.webhook.delivery_failed" }

// =============================================================================
// Contracts Domain Events
// =============================================================================

// ContractDocumentUploaded is published when a document is attached to
// a contract.
type ContractDocumentUploaded struct {
	BaseEvent
	ContractID uuid.UUID `json:"contractId"`
	TenantID   uuid.UUID `json:"tenantId"`
	FileName   string    `json:"fileName"`
	FileKey    string    `json:"fileKey"`
	SizeBytes  int64     `json:"sizeBytes"`
}

func (e ContractDocumentUploaded) EventName() string { return "contracts.document.uploaded" }
