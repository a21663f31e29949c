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

const leadNotFoundMessage = "lead not found"

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

const leadColumns = `id, tenant_id, name, email, phone, company, source, stage, lead_score, owner_id, notes, converted_contact_id, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List retrieves leads for a tenant with optional filters and returns
// the page plus the unfiltered-by-page total for pagination.
func (r *Repo) List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Lead, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filters.Stage != "" {
		args = append(args, filters.Stage)
		conditions = append(conditions, "stage = $"+strconv.Itoa(len(args)))
	}
	if filters.Source != "" {
		args = append(args, filters.Source)
		conditions = append(conditions, "source = $"+strconv.Itoa(len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		idx := strconv.Itoa(len(args))
		conditions = append(conditions, "(name ILIKE $"+idx+" OR email ILIKE $"+idx+" OR company ILIKE $"+idx+")")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM crm_leads WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(
		"SELECT %s FROM crm_leads WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		leadColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", err)
	}

	return leads, total, nil
}

// GetByID retrieves a single lead scoped to the tenant.
func (r *Repo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Lead, error) {
	query := "SELECT " + leadColumns + " FROM crm_leads WHERE id = $1 AND tenant_id = $2"

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// Create inserts a new lead and returns the stored row.
func (r *Repo) Create(ctx context.Context, lead Lead) (Lead, error) {
	query := `
		INSERT INTO crm_leads (id, tenant_id, name, email, phone, company, source, stage, lead_score, owner_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + leadColumns

	stored, err := scanLead(r.pool.QueryRow(ctx, query,
		uuid.New(), lead.TenantID, lead.Name, lead.Email, lead.Phone, lead.Company,
		lead.Source, lead.Stage, lead.LeadScore, lead.OwnerID, lead.Notes,
	))
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return stored, nil
}

// Update applies the non-nil fields and returns the updated row.
// Only whitelisted columns are touched; stage and conversion state have
// their own operations.
func (r *Repo) Update(ctx context.Context, tenantID, id uuid.UUID, fields UpdateFields) (Lead, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id, tenantID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if fields.Name != nil {
		addSet("name", *fields.Name)
	}
	if fields.Email != nil {
		addSet("email", *fields.Email)
	}
	if fields.Phone != nil {
		addSet("phone", *fields.Phone)
	}
	if fields.Company != nil {
		addSet("company", *fields.Company)
	}
	if fields.Source != nil {
		addSet("source", *fields.Source)
	}
	if fields.Notes != nil {
		addSet("notes", *fields.Notes)
	}
	if fields.LeadScore != nil {
		addSet("lead_score", *fields.LeadScore)
	}
	if fields.OwnerID != nil {
		addSet("owner_id", *fields.OwnerID)
	}

	query := fmt.Sprintf(
		"UPDATE crm_leads SET %s WHERE id = $1 AND tenant_id = $2 RETURNING %s",
		strings.Join(sets, ", "), leadColumns,
	)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// UpdateStage moves the lead to a new lifecycle stage.
func (r *Repo) UpdateStage(ctx context.Context, tenantID, id uuid.UUID, stage string) (Lead, error) {
	query := `
		UPDATE crm_leads SET stage = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, tenantID, stage))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead stage: %w", err)
	}
	return lead, nil
}

// MarkConverted links the lead to the contact it was converted into.
func (r *Repo) MarkConverted(ctx context.Context, tenantID, id, contactID uuid.UUID) error {
	query := `
		UPDATE crm_leads SET converted_contact_id = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, tenantID, contactID)
	if err != nil {
		return fmt.Errorf("mark lead converted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

// ListActivities returns the lead's timeline, newest first.
func (r *Repo) ListActivities(ctx context.Context, tenantID, leadID uuid.UUID) ([]Activity, error) {
	query := `
		SELECT id, lead_id, tenant_id, kind, summary, actor_id, created_at
		FROM crm_lead_activities
		WHERE lead_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, leadID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list lead activities: %w", err)
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		var createdAt time.Time
		if err := rows.Scan(&a.ID, &a.LeadID, &a.TenantID, &a.Kind, &a.Summary, &a.ActorID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan lead activity: %w", err)
		}
		a.CreatedAt = createdAt.Format(time.RFC3339)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead activities: %w", err)
	}

	return activities, nil
}

// CreateActivity appends a timeline entry to a lead.
func (r *Repo) CreateActivity(ctx context.Context, activity Activity) (Activity, error) {
	query := `
		INSERT INTO crm_lead_activities (id, lead_id, tenant_id, kind, summary, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, tenant_id, kind, summary, actor_id, created_at`

	var a Activity
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, query,
		uuid.New(), activity.LeadID, activity.TenantID, activity.Kind, activity.Summary, activity.ActorID,
	).Scan(&a.ID, &a.LeadID, &a.TenantID, &a.Kind, &a.Summary, &a.ActorID, &createdAt)
	if err != nil {
		return Activity{}, fmt.Errorf("create lead activity: %w", err)
	}
	a.CreatedAt = createdAt.Format(time.RFC3339)
	return a, nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company,
		&lead.Source, &lead.Stage, &lead.LeadScore, &lead.OwnerID, &lead.Notes,
		&lead.ConvertedContactID, &createdAt, &updatedAt,
	)
	if err != nil {
		return Lead{}, err
	}

	lead.CreatedAt = createdAt.Format(time.RFC3339)
	lead.UpdatedAt = updatedAt.Format(time.RFC3339)
	return lead, nil
}
