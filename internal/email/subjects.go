package email

const (
	subjectInvoiceIssuedFmt = "Invoice %s is ready"
	subjectInvoicePaidFmt   = "Payment received for invoice %s"
)
