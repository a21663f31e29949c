package service

import (
	"testing"

	"crm_portal_backend/internal/billing/transport"
)

func TestCalculateInvoiceSingleLine(t *testing.T) {
	result := CalculateInvoice([]transport.InvoiceItemRequest{
		{Description: "Consulting", Quantity: 10, UnitPriceCents: 15000, TaxRateBps: 2100},
	})

	if result.SubtotalCents != 150000 {
		t.Fatalf("subtotal = %d, want 150000", result.SubtotalCents)
	}
	if result.TaxCents != 31500 {
		t.Fatalf("tax = %d, want 31500", result.TaxCents)
	}
	if result.TotalCents != 181500 {
		t.Fatalf("total = %d, want 181500", result.TotalCents)
	}
}

func TestCalculateInvoiceMultipleLinesSumToTotals(t *testing.T) {
	result := CalculateInvoice([]transport.InvoiceItemRequest{
		{Description: "Licenses", Quantity: 3, UnitPriceCents: 4999, TaxRateBps: 2100},
		{Description: "Support", Quantity: 1, UnitPriceCents: 25000, TaxRateBps: 2100},
		{Description: "Training", Quantity: 2.5, UnitPriceCents: 8000, TaxRateBps: 900},
	})

	var lineSubtotal, lineTax, lineTotal int64
	for _, line := range result.Lines {
		lineSubtotal += line.SubtotalCents
		lineTax += line.TaxCents
		lineTotal += line.TotalCents
	}

	if lineSubtotal != result.SubtotalCents {
		t.Errorf("line subtotals %d != invoice subtotal %d", lineSubtotal, result.SubtotalCents)
	}
	if lineTax != result.TaxCents {
		t.Errorf("line taxes %d != invoice tax %d", lineTax, result.TaxCents)
	}
	if lineTotal != result.TotalCents {
		t.Errorf("line totals %d != invoice total %d", lineTotal, result.TotalCents)
	}
}

func TestCalculateInvoiceFractionalQuantityRounds(t *testing.T) {
	result := CalculateInvoice([]transport.InvoiceItemRequest{
		{Description: "Hours", Quantity: 1.5, UnitPriceCents: 3333, TaxRateBps: 0},
	})

	// 1.5 * 3333 = 4999.5, rounds to 5000.
	if result.SubtotalCents != 5000 {
		t.Fatalf("subtotal = %d, want 5000", result.SubtotalCents)
	}
	if result.TaxCents != 0 {
		t.Fatalf("tax = %d, want 0", result.TaxCents)
	}
}

func TestCalculateInvoiceZeroTaxRate(t *testing.T) {
	result := CalculateInvoice([]transport.InvoiceItemRequest{
		{Description: "Export goods", Quantity: 2, UnitPriceCents: 10000, TaxRateBps: 0},
	})

	if result.TotalCents != result.SubtotalCents {
		t.Fatalf("total %d should equal subtotal %d with zero tax", result.TotalCents, result.SubtotalCents)
	}
}

func TestCalculateInvoiceEmptyItems(t *testing.T) {
	result := CalculateInvoice(nil)

	if result.TotalCents != 0 || len(result.Lines) != 0 {
		t.Fatalf("empty items should produce empty result, got %+v", result)
	}
}
