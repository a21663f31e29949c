package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm_portal_backend/platform/apperr"
)

const invoiceNotFoundMessage = "invoice not found"

const invoiceColumns = `id, tenant_id, contact_id, invoice_number, customer_name, customer_email, status, currency,
	subtotal_cents, tax_cents, total_cents, due_date, paid_at, recurrence_interval, recurrence_count, notes,
	created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new billing repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create inserts the invoice and its items in one transaction.
func (r *Repo) Create(ctx context.Context, invoice Invoice) (Invoice, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Invoice{}, fmt.Errorf("begin create invoice: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO crm_invoices (id, tenant_id, contact_id, invoice_number, customer_name, customer_email, status,
			currency, subtotal_cents, tax_cents, total_cents, due_date, recurrence_interval, recurrence_count, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + invoiceColumns

	dueDate, err := time.Parse("2006-01-02", invoice.DueDate)
	if err != nil {
		return Invoice{}, apperr.Validation("invalid due date")
	}

	stored, err := scanInvoice(tx.QueryRow(ctx, query,
		uuid.New(), invoice.TenantID, invoice.ContactID, invoice.InvoiceNumber, invoice.CustomerName,
		invoice.CustomerEmail, invoice.Status, invoice.Currency, invoice.SubtotalCents, invoice.TaxCents,
		invoice.TotalCents, dueDate, invoice.RecurrenceInterval, invoice.RecurrenceCount, invoice.Notes,
	))
	if err != nil {
		return Invoice{}, fmt.Errorf("create invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO crm_invoice_items (id, invoice_id, description, quantity, unit_price_cents, tax_rate_bps,
			subtotal_cents, tax_cents, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, item := range invoice.Items {
		item.ID = uuid.New()
		item.InvoiceID = stored.ID
		if _, err := tx.Exec(ctx, itemQuery,
			item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitPriceCents,
			item.TaxRateBps, item.SubtotalCents, item.TaxCents, item.TotalCents,
		); err != nil {
			return Invoice{}, fmt.Errorf("create invoice item: %w", err)
		}
		stored.Items = append(stored.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return Invoice{}, fmt.Errorf("commit create invoice: %w", err)
	}

	return stored, nil
}

// List retrieves invoices for a tenant, newest first. Items are not
// loaded for the list view.
func (r *Repo) List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Invoice, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM crm_invoices WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 100 {
		pageSize = 100
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(
		"SELECT %s FROM crm_invoices WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		invoiceColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate invoices: %w", err)
	}

	return invoices, total, nil
}

// GetByID retrieves an invoice with its items.
func (r *Repo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM crm_invoices WHERE id = $1 AND tenant_id = $2"

	invoice, err := scanInvoice(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, apperr.NotFound(invoiceNotFoundMessage)
		}
		return Invoice{}, fmt.Errorf("get invoice by id: %w", err)
	}

	itemQuery := `
		SELECT id, invoice_id, description, quantity, unit_price_cents, tax_rate_bps, subtotal_cents, tax_cents, total_cents
		FROM crm_invoice_items
		WHERE invoice_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, itemQuery, id)
	if err != nil {
		return Invoice{}, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity,
			&item.UnitPriceCents, &item.TaxRateBps, &item.SubtotalCents, &item.TaxCents, &item.TotalCents); err != nil {
			return Invoice{}, fmt.Errorf("scan invoice item: %w", err)
		}
		invoice.Items = append(invoice.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Invoice{}, fmt.Errorf("iterate invoice items: %w", err)
	}

	return invoice, nil
}

// MarkPaid transitions an unpaid invoice to paid.
func (r *Repo) MarkPaid(ctx context.Context, tenantID, id uuid.UUID) (Invoice, error) {
	query := `
		UPDATE crm_invoices SET status = 'paid', paid_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND status IN ('issued', 'overdue')
		RETURNING ` + invoiceColumns

	invoice, err := scanInvoice(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, apperr.Conflict("invoice is not payable")
		}
		return Invoice{}, fmt.Errorf("mark invoice paid: %w", err)
	}
	return invoice, nil
}

// NextInvoiceNumber builds the next sequential number for the tenant.
func (r *Repo) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM crm_invoices WHERE tenant_id = $1", tenantID).Scan(&count); err != nil {
		return "", fmt.Errorf("next invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%d-%05d", time.Now().Year(), count+1), nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var dueDate time.Time
	var paidAt *time.Time
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.ContactID, &inv.InvoiceNumber, &inv.CustomerName, &inv.CustomerEmail,
		&inv.Status, &inv.Currency, &inv.SubtotalCents, &inv.TaxCents, &inv.TotalCents, &dueDate, &paidAt,
		&inv.RecurrenceInterval, &inv.RecurrenceCount, &inv.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return Invoice{}, err
	}

	inv.DueDate = dueDate.Format("2006-01-02")
	if paidAt != nil {
		formatted := paidAt.Format(time.RFC3339)
		inv.PaidAt = &formatted
	}
	inv.CreatedAt = createdAt.Format(time.RFC3339)
	inv.UpdatedAt = updatedAt.Format(time.RFC3339)
	return inv, nil
}
