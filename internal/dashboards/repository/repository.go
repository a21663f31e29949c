// Package repository provides read-only PostgreSQL queries for the
// dashboards module.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BucketMetrics is one receivables aging bucket.
type BucketMetrics struct {
	Bucket      string `json:"bucket"`
	Count       int    `json:"count"`
	AmountCents int64  `json:"amountCents"`
}

// InvoiceSummary is one invoice row in a bucket drill-down.
type InvoiceSummary struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CustomerName  string    `json:"customerName"`
	TotalCents    int64     `json:"totalCents"`
	Currency      string    `json:"currency"`
	DueDate       string    `json:"dueDate"`
	DaysOverdue   int       `json:"daysOverdue"`
}

// Repository defines the dashboard read queries.
type Repository interface {
	CountLeadsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int, error)
	CountConversionsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int, error)
	RevenueCentsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)
	CountOpenDeals(ctx context.Context, tenantID uuid.UUID) (int, error)
	OutstandingCents(ctx context.Context, tenantID uuid.UUID) (int64, error)
	OverdueCents(ctx context.Context, tenantID uuid.UUID) (int64, error)
	AgingBuckets(ctx context.Context, tenantID uuid.UUID) ([]BucketMetrics, error)
	ListBucketInvoices(ctx context.Context, tenantID uuid.UUID, minDays int, maxDays *int, limit int) ([]InvoiceSummary, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dashboards repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// CountLeadsBetween counts leads created inside the window.
func (r *Repo) CountLeadsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM crm_leads WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3`

	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

// CountConversionsBetween counts leads converted inside the window.
func (r *Repo) CountConversionsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM crm_leads
		WHERE tenant_id = $1 AND converted_contact_id IS NOT NULL AND updated_at >= $2 AND updated_at < $3`

	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count conversions: %w", err)
	}
	return count, nil
}

// RevenueCentsBetween sums paid invoices inside the window.
func (r *Repo) RevenueCentsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(total_cents), 0) FROM crm_invoices
		WHERE tenant_id = $1 AND status = 'paid' AND paid_at >= $2 AND paid_at < $3`

	var total int64
	if err := r.pool.QueryRow(ctx, query, tenantID, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

// CountOpenDeals counts deals still open for the tenant.
func (r *Repo) CountOpenDeals(ctx context.Context, tenantID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM crm_deals WHERE tenant_id = $1 AND status = 'open'`

	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count open deals: %w", err)
	}
	return count, nil
}

// OutstandingCents sums every unpaid invoice.
func (r *Repo) OutstandingCents(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(total_cents), 0) FROM crm_invoices
		WHERE tenant_id = $1 AND status IN ('issued', 'overdue')`

	var total int64
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum outstanding: %w", err)
	}
	return total, nil
}

// OverdueCents sums unpaid invoices past their due date.
func (r *Repo) OverdueCents(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(total_cents), 0) FROM crm_invoices
		WHERE tenant_id = $1 AND status IN ('issued', 'overdue') AND due_date < NOW()`

	var total int64
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum overdue: %w", err)
	}
	return total, nil
}

// AgingBuckets groups unpaid invoices by how far past due they are.
// Invoices not yet due land in the 0-30 bucket at zero days.
func (r *Repo) AgingBuckets(ctx context.Context, tenantID uuid.UUID) ([]BucketMetrics, error) {
	query := `
		SELECT bucket, COUNT(*), COALESCE(SUM(total_cents), 0)
		FROM (
			SELECT total_cents,
			       CASE
			           WHEN GREATEST(EXTRACT(DAY FROM NOW() - due_date), 0) <= 30 THEN '0-30'
			           WHEN EXTRACT(DAY FROM NOW() - due_date) <= 60 THEN '31-60'
			           WHEN EXTRACT(DAY FROM NOW() - due_date) <= 90 THEN '61-90'
			           ELSE '90+'
			       END AS bucket
			FROM crm_invoices
			WHERE tenant_id = $1 AND status IN ('issued', 'overdue')
		) aged
		GROUP BY bucket`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("aging buckets: %w", err)
	}
	defer rows.Close()

	found := make(map[string]BucketMetrics)
	for rows.Next() {
		var b BucketMetrics
		if err := rows.Scan(&b.Bucket, &b.Count, &b.AmountCents); err != nil {
			return nil, fmt.Errorf("scan aging bucket: %w", err)
		}
		found[b.Bucket] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aging buckets: %w", err)
	}

	// Every bucket renders even when empty.
	order := []string{"0-30", "31-60", "61-90", "90+"}
	buckets := make([]BucketMetrics, 0, len(order))
	for _, name := range order {
		b, ok := found[name]
		if !ok {
			b = BucketMetrics{Bucket: name}
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

// ListBucketInvoices returns the unpaid invoices overdue within the
// given day range. A nil maxDays means no upper bound.
func (r *Repo) ListBucketInvoices(ctx context.Context, tenantID uuid.UUID, minDays int, maxDays *int, limit int) ([]InvoiceSummary, error) {
	query := `
		SELECT id, invoice_number, customer_name, total_cents, currency, due_date,
		       GREATEST(EXTRACT(DAY FROM NOW() - due_date), 0)::int
		FROM crm_invoices
		WHERE tenant_id = $1 AND status IN ('issued', 'overdue')
		  AND GREATEST(EXTRACT(DAY FROM NOW() - due_date), 0) >= $2
		  AND ($3::int IS NULL OR EXTRACT(DAY FROM NOW() - due_date) <= $3)
		ORDER BY due_date ASC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query, tenantID, minDays, maxDays, limit)
	if err != nil {
		return nil, fmt.Errorf("list bucket invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]InvoiceSummary, 0)
	for rows.Next() {
		var inv InvoiceSummary
		var dueDate time.Time
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.CustomerName, &inv.TotalCents, &inv.Currency, &dueDate, &inv.DaysOverdue); err != nil {
			return nil, fmt.Errorf("scan bucket invoice: %w", err)
		}
		inv.DueDate = dueDate.Format("2006-01-02")
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bucket invoices: %w", err)
	}

	return invoices, nil
}
