package email

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"crm_portal_backend/internal/events"
	"crm_portal_backend/platform/logger"
)

type sentEmail struct {
	to            string
	invoiceNumber string
	totalCents    int64
}

type captureSender struct {
	issued []sentEmail
	paid   []sentEmail
}

func (s *captureSender) SendInvoiceIssuedEmail(_ context.Context, toEmail, _, invoiceNumber, _ string, totalCents int64, _ string) error {
	s.issued = append(s.issued, sentEmail{to: toEmail, invoiceNumber: invoiceNumber, totalCents: totalCents})
	return nil
}

func (s *captureSender) SendInvoicePaidEmail(_ context.Context, toEmail, _, invoiceNumber string, totalCents int64, _ string) error {
	s.paid = append(s.paid, sentEmail{to: toEmail, invoiceNumber: invoiceNumber, totalCents: totalCents})
	return nil
}

func TestSubscriberSendsInvoiceIssuedEmail(t *testing.T) {
	sender := &captureSender{}
	sub := NewSubscriber(sender, logger.New("test"))
	bus := events.NewInMemoryBus(logger.New("test"))
	sub.Register(bus)

	err := bus.PublishSync(context.Background(), events.InvoiceIssued{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     uuid.New(),
		TenantID:      uuid.New(),
		ContactID:     uuid.New(),
		InvoiceNumber: "INV-2026-0042",
		CustomerEmail: "billing@acme.test",
		CustomerName:  "Acme BV",
		TotalCents:    125000,
		Currency:      "EUR",
		DueDate:       "2026-10-01",
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if len(sender.issued) != 1 {
		t.Fatalf("sent %d issued emails, want 1", len(sender.issued))
	}
	if sender.issued[0].to != "billing@acme.test" {
		t.Errorf("to = %q", sender.issued[0].to)
	}
	if sender.issued[0].invoiceNumber != "INV-2026-0042" {
		t.Errorf("invoiceNumber = %q", sender.issued[0].invoiceNumber)
	}
	if len(sender.paid) != 0 {
		t.Errorf("sent %d paid emails, want 0", len(sender.paid))
	}
}

func TestSubscriberSendsInvoicePaidEmail(t *testing.T) {
	sender := &captureSender{}
	sub := NewSubscriber(sender, logger.New("test"))
	bus := events.NewInMemoryBus(logger.New("test"))
	sub.Register(bus)

	err := bus.PublishSync(context.Background(), events.InvoicePaid{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     uuid.New(),
		TenantID:      uuid.New(),
		InvoiceNumber: "INV-2026-0042",
		CustomerEmail: "billing@acme.test",
		CustomerName:  "Acme BV",
		TotalCents:    125000,
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if len(sender.paid) != 1 {
		t.Fatalf("sent %d paid emails, want 1", len(sender.paid))
	}
	if sender.paid[0].totalCents != 125000 {
		t.Errorf("totalCents = %d", sender.paid[0].totalCents)
	}
}

func TestSubscriberSkipsInvoiceWithoutCustomerEmail(t *testing.T) {
	sender := &captureSender{}
	sub := NewSubscriber(sender, logger.New("test"))
	bus := events.NewInMemoryBus(logger.New("test"))
	sub.Register(bus)

	err := bus.PublishSync(context.Background(), events.InvoiceIssued{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     uuid.New(),
		TenantID:      uuid.New(),
		InvoiceNumber: "INV-2026-0043",
		TotalCents:    5000,
		Currency:      "EUR",
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if len(sender.issued) != 0 {
		t.Errorf("sent %d issued emails, want 0", len(sender.issued))
	}
}
