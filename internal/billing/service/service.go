// Package service implements the billing business logic.
package service

import (
	"context"
	"time"

	"crm_portal_backend/internal/billing/repository"
	"crm_portal_backend/internal/billing/transport"
	"crm_portal_backend/internal/events"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// InvoiceListResponse is the paginated invoice list payload.
type InvoiceListResponse struct {
	Invoices []repository.Invoice `json:"invoices"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// Service implements billing use cases.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new billing service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Calculate computes totals for the invoice form preview.
func (s *Service) Calculate(req []transport.InvoiceItemRequest) transport.CalculationResponse {
	return CalculateInvoice(req)
}

// Create stores a new invoice. Totals are recomputed from the items and
// the invoice is issued immediately; InvoiceIssued drives the customer
// email notification.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateInvoiceRequest) (repository.Invoice, error) {
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return repository.Invoice{}, apperr.Validation("due date must be YYYY-MM-DD")
	}
	if dueDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return repository.Invoice{}, apperr.Validation("due date must not be in the past")
	}

	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	calc := CalculateInvoice(req.Items)

	number, err := s.repo.NextInvoiceNumber(ctx, tenantID)
	if err != nil {
		return repository.Invoice{}, err
	}

	invoice := repository.Invoice{
		TenantID:      tenantID,
		ContactID:     req.ContactID,
		InvoiceNumber: number,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Status:        repository.StatusIssued,
		Currency:      currency,
		SubtotalCents: calc.SubtotalCents,
		TaxCents:      calc.TaxCents,
		TotalCents:    calc.TotalCents,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}

	if req.Recurrence != nil {
		interval := req.Recurrence.Interval
		count := req.Recurrence.Count
		invoice.RecurrenceInterval = &interval
		invoice.RecurrenceCount = &count
	}

	for _, line := range calc.Lines {
		invoice.Items = append(invoice.Items, repository.InvoiceItem{
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			TaxRateBps:     line.TaxRateBps,
			SubtotalCents:  line.SubtotalCents,
			TaxCents:       line.TaxCents,
			TotalCents:     line.TotalCents,
		})
	}

	stored, err := s.repo.Create(ctx, invoice)
	if err != nil {
		return repository.Invoice{}, err
	}

	s.bus.Publish(ctx, events.InvoiceIssued{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     stored.ID,
		TenantID:      tenantID,
		ContactID:     stored.ContactID,
		InvoiceNumber: stored.InvoiceNumber,
		CustomerEmail: stored.CustomerEmail,
		CustomerName:  stored.CustomerName,
		TotalCents:    stored.TotalCents,
		Currency:      stored.Currency,
		DueDate:       stored.DueDate,
	})

	return stored, nil
}

// List returns a filtered page of invoices.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListInvoicesRequest) (InvoiceListResponse, error) {
	invoices, total, err := s.repo.List(ctx, tenantID, repository.ListFilters{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return InvoiceListResponse{}, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	return InvoiceListResponse{Invoices: invoices, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get retrieves an invoice with its items.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (repository.Invoice, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// MarkPaid transitions an invoice to paid and publishes InvoicePaid.
func (s *Service) MarkPaid(ctx context.Context, tenantID, id uuid.UUID) (repository.Invoice, error) {
	invoice, err := s.repo.MarkPaid(ctx, tenantID, id)
	if err != nil {
		return repository.Invoice{}, err
	}

	s.bus.Publish(ctx, events.InvoicePaid{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     invoice.ID,
		TenantID:      tenantID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerEmail: invoice.CustomerEmail,
		CustomerName:  invoice.CustomerName,
		TotalCents:    invoice.TotalCents,
		Currency:      invoice.Currency,
	})

	return invoice, nil
}
