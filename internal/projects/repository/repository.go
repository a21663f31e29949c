// Package repository provides PostgreSQL persistence for delivery jobs.
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

// Job statuses.
const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Job is a delivery project tied to a contact, optionally to a contract.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenantId"`
	ContactID   uuid.UUID  `json:"contactId"`
	ContractID  *uuid.UUID `json:"contractId,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	StartDate   *string    `json:"startDate,omitempty"`
	DueDate     *string    `json:"dueDate,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

// ListFilters narrows the job list query.
type ListFilters struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// Repository defines persistence operations for jobs.
type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Job, int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Job, error)
	Create(ctx context.Context, job Job) (Job, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (Job, error)
}

const jobColumns = `id, tenant_id, contact_id, contract_id, name, description, status, start_date, due_date, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new jobs repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// List retrieves jobs for a tenant, newest first.
func (r *Repo) List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Job, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		conditions = append(conditions, "name ILIKE $"+strconv.Itoa(len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM crm_jobs WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
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
		"SELECT %s FROM crm_jobs WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		jobColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate jobs: %w", err)
	}

	return jobs, total, nil
}

// GetByID retrieves one job scoped to the tenant.
func (r *Repo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Job, error) {
	query := "SELECT " + jobColumns + " FROM crm_jobs WHERE id = $1 AND tenant_id = $2"

	job, err := scanJob(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, apperr.NotFound("job not found")
		}
		return Job{}, fmt.Errorf("get job by id: %w", err)
	}
	return job, nil
}

// Create inserts a new job.
func (r *Repo) Create(ctx context.Context, job Job) (Job, error) {
	startDate, err := parseDate(job.StartDate)
	if err != nil {
		return Job{}, apperr.Validation("invalid start date")
	}
	dueDate, err := parseDate(job.DueDate)
	if err != nil {
		return Job{}, apperr.Validation("invalid due date")
	}

	query := `
		INSERT INTO crm_jobs (id, tenant_id, contact_id, contract_id, name, description, status, start_date, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + jobColumns

	stored, err := scanJob(r.pool.QueryRow(ctx, query,
		uuid.New(), job.TenantID, job.ContactID, job.ContractID, job.Name,
		job.Description, job.Status, startDate, dueDate,
	))
	if err != nil {
		return Job{}, fmt.Errorf("create job: %w", err)
	}
	return stored, nil
}

// UpdateStatus moves the job to a new status.
func (r *Repo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (Job, error) {
	query := `
		UPDATE crm_jobs SET status = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + jobColumns

	job, err := scanJob(r.pool.QueryRow(ctx, query, id, tenantID, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, apperr.NotFound("job not found")
		}
		return Job{}, fmt.Errorf("update job status: %w", err)
	}
	return job, nil
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func scanJob(row pgx.Row) (Job, error) {
	var job Job
	var startDate, dueDate *time.Time
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&job.ID, &job.TenantID, &job.ContactID, &job.ContractID, &job.Name,
		&job.Description, &job.Status, &startDate, &dueDate, &createdAt, &updatedAt,
	)
	if err != nil {
		return Job{}, err
	}

	if startDate != nil {
		formatted := startDate.Format("2006-01-02")
		job.StartDate = &formatted
	}
	if dueDate != nil {
		formatted := dueDate.Format("2006-01-02")
		job.DueDate = &formatted
	}
	job.CreatedAt = createdAt.Format(time.RFC3339)
	job.UpdatedAt = updatedAt.Format(time.RFC3339)
	return job, nil
}
