package service

import (
	"math"

	"crm_portal_backend/internal/billing/transport"
)

// roundCents rounds a float to the nearest cent (integer)
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// CalculateInvoice computes per-line and aggregate totals. Tax is
// calculated per line on the unrounded subtotal, then rounded, so the
// sum of the lines always equals the invoice totals.
func CalculateInvoice(items []transport.InvoiceItemRequest) transport.CalculationResponse {
	lines := make([]transport.CalculatedLine, 0, len(items))
	var subtotal, taxTotal int64

	for _, item := range items {
		netFloat := item.Quantity * float64(item.UnitPriceCents)
		lineSubtotal := roundCents(netFloat)
		lineTax := roundCents(netFloat * float64(item.TaxRateBps) / 10000.0)

		lines = append(lines, transport.CalculatedLine{
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TaxRateBps:     item.TaxRateBps,
			SubtotalCents:  lineSubtotal,
			TaxCents:       lineTax,
			TotalCents:     lineSubtotal + lineTax,
		})

		subtotal += lineSubtotal
		taxTotal += lineTax
	}

	return transport.CalculationResponse{
		Lines:         lines,
		SubtotalCents: subtotal,
		TaxCents:      taxTotal,
		TotalCents:    subtotal + taxTotal,
	}
}
