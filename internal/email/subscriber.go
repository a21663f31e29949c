package email

import (
	"context"
	"fmt"

	"crm_portal_backend/internal/events"
	"crm_portal_backend/platform/logger"
)

// Subscriber sends customer notification emails for billing events
// published on the bus. Sending is best effort: a failed or skipped
// send never fails the originating operation.
type Subscriber struct {
	sender Sender
	log    *logger.Logger
}

// NewSubscriber creates the subscriber.
func NewSubscriber(sender Sender, log *logger.Logger) *Subscriber {
	return &Subscriber{sender: sender, log: log}
}

// Register subscribes to the billing events that trigger emails.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(events.InvoiceIssued{}.EventName(), events.HandlerFunc(s.handleInvoiceIssued))
	bus.Subscribe(events.InvoicePaid{}.EventName(), events.HandlerFunc(s.handleInvoicePaid))
}

func (s *Subscriber) handleInvoiceIssued(ctx context.Context, event events.Event) error {
	e, ok := event.(events.InvoiceIssued)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if e.CustomerEmail == "" {
		s.log.Debug("invoice has no customer email, skipping notification", "invoiceNumber", e.InvoiceNumber)
		return nil
	}

	if err := s.sender.SendInvoiceIssuedEmail(ctx, e.CustomerEmail, e.CustomerName, e.InvoiceNumber, e.DueDate, e.TotalCents, e.Currency); err != nil {
		s.log.Error("send invoice issued email", "invoiceNumber", e.InvoiceNumber, "error", err)
	}
	return nil
}

func (s *Subscriber) handleInvoicePaid(ctx context.Context, event events.Event) error {
	e, ok := event.(events.InvoicePaid)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if e.CustomerEmail == "" {
		s.log.Debug("invoice has no customer email, skipping notification", "invoiceNumber", e.InvoiceNumber)
		return nil
	}

	if err := s.sender.SendInvoicePaidEmail(ctx, e.CustomerEmail, e.CustomerName, e.InvoiceNumber, e.TotalCents, e.Currency); err != nil {
		s.log.Error("send invoice paid email", "invoiceNumber", e.InvoiceNumber, "error", err)
	}
	return nil
}
