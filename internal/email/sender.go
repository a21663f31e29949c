// Package email sends transactional notifications over SMTP. Delivery
// is best effort: callers subscribe to domain events and a failed send
// never fails the originating operation.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers the CRM's transactional emails.
type Sender interface {
	SendInvoiceIssuedEmail(ctx context.Context, toEmail, customerName, invoiceNumber, dueDate string, totalCents int64, currency string) error
	SendInvoicePaidEmail(ctx context.Context, toEmail, customerName, invoiceNumber string, totalCents int64, currency string) error
}

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendInvoiceIssuedEmail(ctx context.Context, toEmail, customerName, invoiceNumber, dueDate string, totalCents int64, currency string) error {
	subject := fmt.Sprintf(subjectInvoiceIssuedFmt, invoiceNumber)
	content, err := renderEmailTemplate("invoice_issued.html", invoiceIssuedEmailData{
		baseEmailData: baseEmailData{
			Title:   "New invoice",
			Heading: "You have a new invoice",
		},
		CustomerName:   customerName,
		InvoiceNumber:  invoiceNumber,
		DueDate:        dueDate,
		TotalFormatted: formatCurrency(totalCents, currency),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendInvoicePaidEmail(ctx context.Context, toEmail, customerName, invoiceNumber string, totalCents int64, currency string) error {
	subject := fmt.Sprintf(subjectInvoicePaidFmt, invoiceNumber)
	content, err := renderEmailTemplate("invoice_paid.html", invoicePaidEmailData{
		baseEmailData: baseEmailData{
			Title:   "Payment received",
			Heading: "Payment received",
		},
		CustomerName:   customerName,
		InvoiceNumber:  invoiceNumber,
		TotalFormatted: formatCurrency(totalCents, currency),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
