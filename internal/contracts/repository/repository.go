// Package repository provides PostgreSQL persistence for contracts and
// contract templates.
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

// Contract statuses.
const (
	StatusDraft   = "draft"
	StatusSent    = "sent"
	StatusSigned  = "signed"
	StatusExpired = "expired"
)

// Contract is the persistence model for a contract.
type Contract struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenantId"`
	ContactID  uuid.UUID  `json:"contactId"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	ValueCents int64      `json:"valueCents"`
	Currency   string     `json:"currency"`
	StartDate  string     `json:"startDate"`
	EndDate    *string    `json:"endDate,omitempty"`
	TemplateID *uuid.UUID `json:"templateId,omitempty"`
	Documents  []Document `json:"documents,omitempty"`
	CreatedAt  string     `json:"createdAt"`
	UpdatedAt  string     `json:"updatedAt"`
}

// Document is a file attached to a contract, stored in object storage.
type Document struct {
	ID          uuid.UUID `json:"id"`
	ContractID  uuid.UUID `json:"contractId"`
	TenantID    uuid.UUID `json:"tenantId"`
	FileName    string    `json:"fileName"`
	FileKey     string    `json:"fileKey"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   string    `json:"createdAt"`
}

// Template is a reusable contract body with placeholders.
type Template struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenantId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Body        string    `json:"body"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// ListFilters narrows the contract list query.
type ListFilters struct {
	Status   string
	Page     int
	PageSize int
}

// Repository defines persistence operations for contracts.
type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Contract, int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Contract, error)
	Create(ctx context.Context, contract Contract) (Contract, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (Contract, error)
	AddDocument(ctx context.Context, doc Document) (Document, error)
	GetDocument(ctx context.Context, tenantID, docID uuid.UUID) (Document, error)
	ListTemplates(ctx context.Context, tenantID uuid.UUID) ([]Template, error)
	GetTemplate(ctx context.Context, tenantID, id uuid.UUID) (Template, error)
}

const contractColumns = `id, tenant_id, contact_id, title, status, value_cents, currency, start_date, end_date, template_id, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new contracts repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// List retrieves contracts for a tenant, newest first.
func (r *Repo) List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Contract, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM crm_contracts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
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
		"SELECT %s FROM crm_contracts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		contractColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	contracts := make([]Contract, 0)
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contracts: %w", err)
	}

	return contracts, total, nil
}

// GetByID retrieves a contract with its documents.
func (r *Repo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Contract, error) {
	query := "SELECT " + contractColumns + " FROM crm_contracts WHERE id = $1 AND tenant_id = $2"

	contract, err := scanContract(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contract{}, apperr.NotFound("contract not found")
		}
		return Contract{}, fmt.Errorf("get contract by id: %w", err)
	}

	docQuery := `
		SELECT id, contract_id, tenant_id, file_name, file_key, content_type, size_bytes, created_at
		FROM crm_contract_documents
		WHERE contract_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, docQuery, id, tenantID)
	if err != nil {
		return Contract{}, fmt.Errorf("list contract documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return Contract{}, fmt.Errorf("scan contract document: %w", err)
		}
		contract.Documents = append(contract.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return Contract{}, fmt.Errorf("iterate contract documents: %w", err)
	}

	return contract, nil
}

// Create inserts a new contract.
func (r *Repo) Create(ctx context.Context, contract Contract) (Contract, error) {
	startDate, err := time.Parse("2006-01-02", contract.StartDate)
	if err != nil {
		return Contract{}, apperr.Validation("invalid start date")
	}
	var endDate *time.Time
	if contract.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *contract.EndDate)
		if err != nil {
			return Contract{}, apperr.Validation("invalid end date")
		}
		endDate = &parsed
	}

	query := `
		INSERT INTO crm_contracts (id, tenant_id, contact_id, title, status, value_cents, currency, start_date, end_date, template_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + contractColumns

	stored, err := scanContract(r.pool.QueryRow(ctx, query,
		uuid.New(), contract.TenantID, contract.ContactID, contract.Title, contract.Status,
		contract.ValueCents, contract.Currency, startDate, endDate, contract.TemplateID,
	))
	if err != nil {
		return Contract{}, fmt.Errorf("create contract: %w", err)
	}
	return stored, nil
}

// UpdateStatus moves the contract to a new status.
func (r *Repo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (Contract, error) {
	query := `
		UPDATE crm_contracts SET status = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + contractColumns

	contract, err := scanContract(r.pool.QueryRow(ctx, query, id, tenantID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contract{}, apperr.NotFound("contract not found")
		}
		return Contract{}, fmt.Errorf("update contract status: %w", err)
	}
	return contract, nil
}

// AddDocument records an uploaded document.
func (r *Repo) AddDocument(ctx context.Context, doc Document) (Document, error) {
	query := `
		INSERT INTO crm_contract_documents (id, contract_id, tenant_id, file_name, file_key, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, contract_id, tenant_id, file_name, file_key, content_type, size_bytes, created_at`

	stored, err := scanDocument(r.pool.QueryRow(ctx, query,
		uuid.New(), doc.ContractID, doc.TenantID, doc.FileName, doc.FileKey, doc.ContentType, doc.SizeBytes,
	))
	if err != nil {
		return Document{}, fmt.Errorf("add contract document: %w", err)
	}
	return stored, nil
}

// GetDocument retrieves one document scoped to the tenant.
func (r *Repo) GetDocument(ctx context.Context, tenantID, docID uuid.UUID) (Document, error) {
	query := `
		SELECT id, contract_id, tenant_id, file_name, file_key, content_type, size_bytes, created_at
		FROM crm_contract_documents
		WHERE id = $1 AND tenant_id = $2`

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, docID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, apperr.NotFound("document not found")
		}
		return Document{}, fmt.Errorf("get contract document: %w", err)
	}
	return doc, nil
}

// ListTemplates returns the tenant's templates, active first.
func (r *Repo) ListTemplates(ctx context.Context, tenantID uuid.UUID) ([]Template, error) {
	query := `
		SELECT id, tenant_id, name, description, body, is_active, created_at, updated_at
		FROM crm_contract_templates
		WHERE tenant_id = $1
		ORDER BY is_active DESC, name ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]Template, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	return templates, nil
}

// GetTemplate retrieves one template scoped to the tenant.
func (r *Repo) GetTemplate(ctx context.Context, tenantID, id uuid.UUID) (Template, error) {
	query := `
		SELECT id, tenant_id, name, description, body, is_active, created_at, updated_at
		FROM crm_contract_templates
		WHERE id = $1 AND tenant_id = $2`

	tpl, err := scanTemplate(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, apperr.NotFound("template not found")
		}
		return Template{}, fmt.Errorf("get template: %w", err)
	}
	return tpl, nil
}

func scanContract(row pgx.Row) (Contract, error) {
	var contract Contract
	var startDate time.Time
	var endDate *time.Time
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&contract.ID, &contract.TenantID, &contract.ContactID, &contract.Title, &contract.Status,
		&contract.ValueCents, &contract.Currency, &startDate, &endDate, &contract.TemplateID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return Contract{}, err
	}

	contract.StartDate = startDate.Format("2006-01-02")
	if endDate != nil {
		formatted := endDate.Format("2006-01-02")
		contract.EndDate = &formatted
	}
	contract.CreatedAt = createdAt.Format(time.RFC3339)
	contract.UpdatedAt = updatedAt.Format(time.RFC3339)
	return contract, nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var doc Document
	var createdAt time.Time

	err := row.Scan(&doc.ID, &doc.ContractID, &doc.TenantID, &doc.FileName, &doc.FileKey,
		&doc.ContentType, &doc.SizeBytes, &createdAt)
	if err != nil {
		return Document{}, err
	}

	doc.CreatedAt = createdAt.Format(time.RFC3339)
	return doc, nil
}

func scanTemplate(row pgx.Row) (Template, error) {
	var tpl Template
	var createdAt, updatedAt time.Time

	err := row.Scan(&tpl.ID, &tpl.TenantID, &tpl.Name, &tpl.Description, &tpl.Body,
		&tpl.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return Template{}, err
	}

	tpl.CreatedAt = createdAt.Format(time.RFC3339)
	tpl.UpdatedAt = updatedAt.Format(time.RFC3339)
	return tpl, nil
}
