// Package repository provides read-only PostgreSQL queries for the
// reports module. Reporting reads across the lead and contact tables
// but never writes to them.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StageMetrics is one lifecycle stage's aggregate numbers.
type StageMetrics struct {
	Stage             string
	Count             int
	AvgDays           float64
	ConversionAvgDays float64
}

// BreakdownRow is one label/count pair in a stage breakdown.
type BreakdownRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StageBreakdowns groups one stage's top-N rows by dimension. Contact
// stages carry no source dimension, only owners.
type StageBreakdowns struct {
	Sources []BreakdownRow
	Owners  []BreakdownRow
}

// Record is one row in a stage drill-down. Lead stages produce lead
// records, contact stages produce contact records; the shape is shared.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Company   string    `json:"company,omitempty"`
	Stage     string    `json:"stage"`
	CreatedAt string    `json:"createdAt"`
}

// Repository defines the reporting read queries.
type Repository interface {
	LeadStageMetrics(ctx context.Context, tenantID uuid.UUID) (map[string]StageMetrics, error)
	ContactStageMetrics(ctx context.Context, tenantID uuid.UUID) (map[string]StageMetrics, error)
	LeadStageBreakdowns(ctx context.Context, tenantID uuid.UUID, topN int) (map[string]StageBreakdowns, error)
	ContactStageBreakdowns(ctx context.Context, tenantID uuid.UUID, topN int) (map[string]StageBreakdowns, error)
	ListLeadRecords(ctx context.Context, tenantID uuid.UUID, stage string, limit int) ([]Record, error)
	ListContactRecords(ctx context.Context, tenantID uuid.UUID, stage string, limit int) ([]Record, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new reports repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// LeadStageMetrics aggregates lead counts and dwell times per stage.
func (r *Repo) LeadStageMetrics(ctx context.Context, tenantID uuid.UUID) (map[string]StageMetrics, error) {
	query := `
		SELECT stage,
		       COUNT(*),
		       COALESCE(AVG(EXTRACT(EPOCH FROM (NOW() - created_at)) / 86400), 0),
		       COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 86400), 0)
		FROM crm_leads
		WHERE tenant_id = $1 AND converted_contact_id IS NULL
		GROUP BY stage`

	return r.stageMetrics(ctx, query, tenantID)
}

// ContactStageMetrics aggregates contact counts and dwell times per stage.
func (r *Repo) ContactStageMetrics(ctx context.Context, tenantID uuid.UUID) (map[string]StageMetrics, error) {
	query := `
		SELECT stage,
		       COUNT(*),
		       COALESCE(AVG(EXTRACT(EPOCH FROM (NOW() - created_at)) / 86400), 0),
		       COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 86400), 0)
		FROM crm_contacts
		WHERE tenant_id = $1
		GROUP BY stage`

	return r.stageMetrics(ctx, query, tenantID)
}

func (r *Repo) stageMetrics(ctx context.Context, query string, tenantID uuid.UUID) (map[string]StageMetrics, error) {
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("stage metrics: %w", err)
	}
	defer rows.Close()

	metrics := make(map[string]StageMetrics)
	for rows.Next() {
		var m StageMetrics
		if err := rows.Scan(&m.Stage, &m.Count, &m.AvgDays, &m.ConversionAvgDays); err != nil {
			return nil, fmt.Errorf("scan stage metrics: %w", err)
		}
		metrics[m.Stage] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage metrics: %w", err)
	}

	return metrics, nil
}

// LeadStageBreakdowns returns the top-N source and owner rows for every
// lead-backed stage.
func (r *Repo) LeadStageBreakdowns(ctx context.Context, tenantID uuid.UUID, topN int) (map[string]StageBreakdowns, error) {
	sourceQuery := `
		SELECT stage, label, cnt FROM (
			SELECT stage,
			       COALESCE(NULLIF(source, ''), 'unknown') AS label,
			       COUNT(*) AS cnt,
			       ROW_NUMBER() OVER (PARTITION BY stage ORDER BY COUNT(*) DESC, COALESCE(NULLIF(source, ''), 'unknown') ASC) AS rn
			FROM crm_leads
			WHERE tenant_id = $1 AND converted_contact_id IS NULL
			GROUP BY stage, source
		) ranked
		WHERE rn <= $2`

	ownerQuery := `
		SELECT stage, label, cnt FROM (
			SELECT stage,
			       COALESCE(owner_id::text, 'unassigned') AS label,
			       COUNT(*) AS cnt,
			       ROW_NUMBER() OVER (PARTITION BY stage ORDER BY COUNT(*) DESC, COALESCE(owner_id::text, 'unassigned') ASC) AS rn
			FROM crm_leads
			WHERE tenant_id = $1 AND converted_contact_id IS NULL
			GROUP BY stage, owner_id
		) ranked
		WHERE rn <= $2`

	sources, err := r.breakdownRows(ctx, sourceQuery, tenantID, topN)
	if err != nil {
		return nil, err
	}
	owners, err := r.breakdownRows(ctx, ownerQuery, tenantID, topN)
	if err != nil {
		return nil, err
	}

	return mergeBreakdowns(sources, owners), nil
}

// ContactStageBreakdowns returns the top-N owner rows for every
// contact-backed stage. Contacts carry no source field.
func (r *Repo) ContactStageBreakdowns(ctx context.Context, tenantID uuid.UUID, topN int) (map[string]StageBreakdowns, error) {
	ownerQuery := `
		SELECT stage, label, cnt FROM (
			SELECT stage,
			       COALESCE(owner_id::text, 'unassigned') AS label,
			       COUNT(*) AS cnt,
			       ROW_NUMBER() OVER (PARTITION BY stage ORDER BY COUNT(*) DESC, COALESCE(owner_id::text, 'unassigned') ASC) AS rn
			FROM crm_contacts
			WHERE tenant_id = $1
			GROUP BY stage, owner_id
		) ranked
		WHERE rn <= $2`

	owners, err := r.breakdownRows(ctx, ownerQuery, tenantID, topN)
	if err != nil {
		return nil, err
	}

	return mergeBreakdowns(nil, owners), nil
}

func (r *Repo) breakdownRows(ctx context.Context, query string, tenantID uuid.UUID, topN int) (map[string][]BreakdownRow, error) {
	rows, err := r.pool.Query(ctx, query, tenantID, topN)
	if err != nil {
		return nil, fmt.Errorf("stage breakdowns: %w", err)
	}
	defer rows.Close()

	byStage := make(map[string][]BreakdownRow)
	for rows.Next() {
		var stage string
		var row BreakdownRow
		if err := rows.Scan(&stage, &row.Label, &row.Count); err != nil {
			return nil, fmt.Errorf("scan stage breakdown: %w", err)
		}
		byStage[stage] = append(byStage[stage], row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage breakdowns: %w", err)
	}

	return byStage, nil
}

func mergeBreakdowns(sources, owners map[string][]BreakdownRow) map[string]StageBreakdowns {
	merged := make(map[string]StageBreakdowns)
	for stage, rows := range sources {
		b := merged[stage]
		b.Sources = rows
		merged[stage] = b
	}
	for stage, rows := range owners {
		b := merged[stage]
		b.Owners = rows
		merged[stage] = b
	}
	return merged
}

// ListLeadRecords returns up to limit leads in the given stage.
func (r *Repo) ListLeadRecords(ctx context.Context, tenantID uuid.UUID, stage string, limit int) ([]Record, error) {
	query := `
		SELECT id, name, email, company, stage, created_at
		FROM crm_leads
		WHERE tenant_id = $1 AND stage = $2 AND converted_contact_id IS NULL
		ORDER BY created_at DESC
		LIMIT $3`

	return r.listRecords(ctx, query, tenantID, stage, limit)
}

// ListContactRecords returns up to limit contacts in the given stage.
func (r *Repo) ListContactRecords(ctx context.Context, tenantID uuid.UUID, stage string, limit int) ([]Record, error) {
	query := `
		SELECT id, name, email, company, stage, created_at
		FROM crm_contacts
		WHERE tenant_id = $1 AND stage = $2
		ORDER BY created_at DESC
		LIMIT $3`

	return r.listRecords(ctx, query, tenantID, stage, limit)
}

func (r *Repo) listRecords(ctx context.Context, query string, tenantID uuid.UUID, stage string, limit int) ([]Record, error) {
	rows, err := r.pool.Query(ctx, query, tenantID, stage, limit)
	if err != nil {
		return nil, fmt.Errorf("list stage records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var createdAt time.Time
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Company, &rec.Stage, &createdAt); err != nil {
			return nil, fmt.Errorf("scan stage record: %w", err)
		}
		rec.CreatedAt = createdAt.Format(time.RFC3339)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage records: %w", err)
	}

	return records, nil
}
