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

const contactNotFoundMessage = "contact not found"

const contactColumns = `id, tenant_id, name, email, phone, company, title, stage, owner_id, notes, source_lead_id, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new contacts repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List retrieves contacts for a tenant with optional filters.
func (r *Repo) List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Contact, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filters.Stage != "" {
		args = append(args, filters.Stage)
		conditions = append(conditions, "stage = $"+strconv.Itoa(len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		idx := strconv.Itoa(len(args))
		conditions = append(conditions, "(name ILIKE $"+idx+" OR email ILIKE $"+idx+" OR company ILIKE $"+idx+")")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM crm_contacts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
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
		"SELECT %s FROM crm_contacts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		contactColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contacts: %w", err)
	}

	return contacts, total, nil
}

// GetByID retrieves a single contact scoped to the tenant.
func (r *Repo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Contact, error) {
	query := "SELECT " + contactColumns + " FROM crm_contacts WHERE id = $1 AND tenant_id = $2"

	contact, err := scanContact(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, apperr.NotFound(contactNotFoundMessage)
		}
		return Contact{}, fmt.Errorf("get contact by id: %w", err)
	}
	return contact, nil
}

// Create inserts a new contact and returns the stored row.
func (r *Repo) Create(ctx context.Context, contact Contact) (Contact, error) {
	query := `
		INSERT INTO crm_contacts (id, tenant_id, name, email, phone, company, title, stage, owner_id, notes, source_lead_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + contactColumns

	stored, err := scanContact(r.pool.QueryRow(ctx, query,
		uuid.New(), contact.TenantID, contact.Name, contact.Email, contact.Phone, contact.Company,
		contact.Title, contact.Stage, contact.OwnerID, contact.Notes, contact.SourceLeadID,
	))
	if err != nil {
		return Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return stored, nil
}

// Update applies the non-nil fields and returns the updated row.
func (r *Repo) Update(ctx context.Context, tenantID, id uuid.UUID, fields UpdateFields) (Contact, error) {
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
	if fields.Title != nil {
		addSet("title", *fields.Title)
	}
	if fields.Notes != nil {
		addSet("notes", *fields.Notes)
	}
	if fields.OwnerID != nil {
		addSet("owner_id", *fields.OwnerID)
	}

	query := fmt.Sprintf(
		"UPDATE crm_contacts SET %s WHERE id = $1 AND tenant_id = $2 RETURNING %s",
		strings.Join(sets, ", "), contactColumns,
	)

	contact, err := scanContact(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, apperr.NotFound(contactNotFoundMessage)
		}
		return Contact{}, fmt.Errorf("update contact: %w", err)
	}
	return contact, nil
}

// UpdateStage moves the contact to a new lifecycle stage.
func (r *Repo) UpdateStage(ctx context.Context, tenantID, id uuid.UUID, stage string) (Contact, error) {
	query := `
		UPDATE crm_contacts SET stage = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + contactColumns

	contact, err := scanContact(r.pool.QueryRow(ctx, query, id, tenantID, stage))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, apperr.NotFound(contactNotFoundMessage)
		}
		return Contact{}, fmt.Errorf("update contact stage: %w", err)
	}
	return contact, nil
}

// ListDeals returns the contact's deals, newest first.
func (r *Repo) ListDeals(ctx context.Context, tenantID, contactID uuid.UUID) ([]Deal, error) {
	query := `
		SELECT id, contact_id, tenant_id, name, status, amount_cents, currency, close_date, created_at
		FROM crm_deals
		WHERE contact_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, contactID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	deals := make([]Deal, 0)
	for rows.Next() {
		var d Deal
		var closeDate *time.Time
		var createdAt time.Time
		if err := rows.Scan(&d.ID, &d.ContactID, &d.TenantID, &d.Name, &d.Status, &d.AmountCents, &d.Currency, &closeDate, &createdAt); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		if closeDate != nil {
			formatted := closeDate.Format("2006-01-02")
			d.CloseDate = &formatted
		}
		d.CreatedAt = createdAt.Format(time.RFC3339)
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deals: %w", err)
	}

	return deals, nil
}

// ListActivities returns the contact's timeline, newest first.
func (r *Repo) ListActivities(ctx context.Context, tenantID, contactID uuid.UUID) ([]Activity, error) {
	query := `
		SELECT id, contact_id, tenant_id, kind, summary, actor_id, created_at
		FROM crm_contact_activities
		WHERE contact_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, contactID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list contact activities: %w", err)
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		var createdAt time.Time
		if err := rows.Scan(&a.ID, &a.ContactID, &a.TenantID, &a.Kind, &a.Summary, &a.ActorID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contact activity: %w", err)
		}
		a.CreatedAt = createdAt.Format(time.RFC3339)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact activities: %w", err)
	}

	return activities, nil
}

// CreateActivity appends a timeline entry to a contact.
func (r *Repo) CreateActivity(ctx context.Context, activity Activity) (Activity, error) {
	query := `
		INSERT INTO crm_contact_activities (id, contact_id, tenant_id, kind, summary, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, contact_id, tenant_id, kind, summary, actor_id, created_at`

	var a Activity
	var createdAt time.Time
	err := r.pool.QueryRow(ctx, query,
		uuid.New(), activity.ContactID, activity.TenantID, activity.Kind, activity.Summary, activity.ActorID,
	).Scan(&a.ID, &a.ContactID, &a.TenantID, &a.Kind, &a.Summary, &a.ActorID, &createdAt)
	if err != nil {
		return Activity{}, fmt.Errorf("create contact activity: %w", err)
	}
	a.CreatedAt = createdAt.Format(time.RFC3339)
	return a, nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var contact Contact
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&contact.ID, &contact.TenantID, &contact.Name, &contact.Email, &contact.Phone, &contact.Company,
		&contact.Title, &contact.Stage, &contact.OwnerID, &contact.Notes, &contact.SourceLeadID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return Contact{}, err
	}

	contact.CreatedAt = createdAt.Format(time.RFC3339)
	contact.UpdatedAt = updatedAt.Format(time.RFC3339)
	return contact, nil
}
