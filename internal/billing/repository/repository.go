// Package repository provides PostgreSQL persistence for invoices.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	StatusDraft   = "draft"
	StatusIssued  = "issued"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// Invoice is the persistence model for an invoice.
type Invoice struct {
	ID                 uuid.UUID     `json:"id"`
	TenantID           uuid.UUID     `json:"tenantId"`
	ContactID          uuid.UUID     `json:"contactId"`
	InvoiceNumber      string        `json:"invoiceNumber"`
	CustomerName       string        `json:"customerName"`
	CustomerEmail      string        `json:"customerEmail"`
	Status             string        `json:"status"`
	Currency           string        `json:"currency"`
	SubtotalCents      int64         `json:"subtotalCents"`
	TaxCents           int64         `json:"taxCents"`
	TotalCents         int64         `json:"totalCents"`
	DueDate            string        `json:"dueDate"`
	PaidAt             *string       `json:"paidAt,omitempty"`
	RecurrenceInterval *string       `json:"recurrenceInterval,omitempty"`
	RecurrenceCount    *int          `json:"recurrenceCount,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	Items              []InvoiceItem `json:"items,omitempty"`
	CreatedAt          string        `json:"createdAt"`
	UpdatedAt          string        `json:"updatedAt"`
}

// InvoiceItem is one stored invoice line.
type InvoiceItem struct {
	ID             uuid.UUID `json:"id"`
	InvoiceID      uuid.UUID `json:"invoiceId"`
	Description    string    `json:"description"`
	Quantity       float64   `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TaxRateBps     int       `json:"taxRateBps"`
	SubtotalCents  int64     `json:"subtotalCents"`
	TaxCents       int64     `json:"taxCents"`
	TotalCents     int64     `json:"totalCents"`
}

// ListFilters narrows the invoice list query.
type ListFilters struct {
	Status   string
	Page     int
	PageSize int
}

// Repository defines persistence operations for invoices.
type Repository interface {
	Create(ctx context.Context, invoice Invoice) (Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Invoice, int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Invoice, error)
	MarkPaid(ctx context.Context, tenantID, id uuid.UUID) (Invoice, error)
	NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
