// Package transport defines request and response DTOs for the billing module.
package transport

import "github.com/google/uuid"

// InvoiceItemRequest is one line on the invoice form.
type InvoiceItemRequest struct {
	Description    string  `json:"description" validate:"required,min=1,max=500"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	UnitPriceCents int64   `json:"unitPriceCents" validate:"min=0"`
	TaxRateBps     int     `json:"taxRateBps" validate:"min=0,max=10000"`
}

// RecurrenceRequest is the optional recurrence sub-form. When present
// the invoice reissues on the chosen interval.
type RecurrenceRequest struct {
	Interval string `json:"interval" validate:"required,oneof=monthly quarterly yearly"`
	Count    int    `json:"count" validate:"required,min=1,max=60"`
}

// CreateInvoiceRequest creates a new invoice. Totals are always
// recomputed server-side from the items; client-sent totals are ignored.
type CreateInvoiceRequest struct {
	ContactID     uuid.UUID            `json:"contactId" validate:"required"`
	CustomerName  string               `json:"customerName" validate:"required,min=1,max=200"`
	CustomerEmail string               `json:"customerEmail" validate:"required,email"`
	Currency      string               `json:"currency" validate:"omitempty,len=3"`
	DueDate       string               `json:"dueDate" validate:"required"`
	Notes         string               `json:"notes" validate:"omitempty,max=2000"`
	Items         []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Recurrence    *RecurrenceRequest   `json:"recurrence" validate:"omitempty"`
}

// ListInvoicesRequest carries the invoice list filters.
type ListInvoicesRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=draft issued paid overdue"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CalculatedLine is one computed invoice line.
type CalculatedLine struct {
	Description    string  `json:"description"`
	Quantity       float64 `json:"quantity"`
	UnitPriceCents int64   `json:"unitPriceCents"`
	TaxRateBps     int     `json:"taxRateBps"`
	SubtotalCents  int64   `json:"subtotalCents"`
	TaxCents       int64   `json:"taxCents"`
	TotalCents     int64   `json:"totalCents"`
}

// CalculationResponse is the computed totals for a set of lines. The
// invoice form calls this as the user edits so the preview matches what
// submit will store.
type CalculationResponse struct {
	Lines         []CalculatedLine `json:"lines"`
	SubtotalCents int64            `json:"subtotalCents"`
	TaxCents      int64            `json:"taxCents"`
	TotalCents    int64            `json:"totalCents"`
}
