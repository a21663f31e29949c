package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
}

type invoiceIssuedEmailData struct {
	baseEmailData
	CustomerName   string
	InvoiceNumber  string
	DueDate        string
	TotalFormatted string
}

type invoicePaidEmailData struct {
	baseEmailData
	CustomerName   string
	InvoiceNumber  string
	TotalFormatted string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrency(cents int64, currency string) string {
	symbol := currency
	if currency == "EUR" {
		symbol = "€"
	}
	return fmt.Sprintf("%s%.2f", symbol, float64(cents)/100)
}
