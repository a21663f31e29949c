// Package repository provides PostgreSQL persistence for the compliance
// context: audit events, SSO connections and the role permission matrix.
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

// AuditEvent is an append-only record of a significant action.
type AuditEvent struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenantId"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
	ActorLabel string     `json:"actorLabel"`
	Action     string     `json:"action"`
	EntityType string     `json:"entityType"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	Metadata   string     `json:"metadata,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

// SSOConnection holds identity provider configuration metadata. The
// module stores and serves these records; it never performs logins.
type SSOConnection struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenantId"`
	Provider        string    `json:"provider"`
	DisplayName     string    `json:"displayName"`
	IssuerURL       string    `json:"issuerUrl"`
	ClientID        string    `json:"clientId"`
	CertFingerprint string    `json:"certFingerprint,omitempty"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       string    `json:"createdAt"`
	UpdatedAt       string    `json:"updatedAt"`
}

// Role is one row of the permission matrix.
type Role struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenantId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
}

// AuditFilters narrows the audit event list query.
type AuditFilters struct {
	ActorID  *uuid.UUID
	Action   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// SSOUpdateFields is the whitelist of patchable SSO connection fields.
type SSOUpdateFields struct {
	DisplayName     *string
	IssuerURL       *string
	ClientID        *string
	CertFingerprint *string
	IsActive        *bool
}

// Repository defines persistence operations for the compliance context.
type Repository interface {
	AppendAudit(ctx context.Context, event AuditEvent) error
	ListAudit(ctx context.Context, tenantID uuid.UUID, filters AuditFilters) ([]AuditEvent, int, error)

	ListSSOConnections(ctx context.Context, tenantID uuid.UUID) ([]SSOConnection, error)
	GetSSOConnection(ctx context.Context, tenantID, id uuid.UUID) (SSOConnection, error)
	CreateSSOConnection(ctx context.Context, conn SSOConnection) (SSOConnection, error)
	UpdateSSOConnection(ctx context.Context, tenantID, id uuid.UUID, fields SSOUpdateFields) (SSOConnection, error)
	DeleteSSOConnection(ctx context.Context, tenantID, id uuid.UUID) error

	ListRoles(ctx context.Context, tenantID uuid.UUID) ([]Role, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new compliance repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// AppendAudit inserts an audit event. Audit rows are never updated or
// deleted.
func (r *Repo) AppendAudit(ctx context.Context, event AuditEvent) error {
	query := `
		INSERT INTO crm_audit_events (id, tenant_id, actor_id, actor_label, action, entity_type, entity_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		uuid.New(), event.TenantID, event.ActorID, event.ActorLabel,
		event.Action, event.EntityType, event.EntityID, event.Metadata,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAudit returns a page of audit events, newest first.
func (r *Repo) ListAudit(ctx context.Context, tenantID uuid.UUID, filters AuditFilters) ([]AuditEvent, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}

	if filters.ActorID != nil {
		args = append(args, *filters.ActorID)
		conditions = append(conditions, "actor_id = $"+strconv.Itoa(len(args)))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		conditions = append(conditions, "action = $"+strconv.Itoa(len(args)))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		conditions = append(conditions, "created_at < $"+strconv.Itoa(len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM crm_audit_events WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
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
	query := fmt.Sprintf(`
		SELECT id, tenant_id, actor_id, actor_label, action, entity_type, entity_id, metadata, created_at
		FROM crm_audit_events
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	eventsList := make([]AuditEvent, 0)
	for rows.Next() {
		var event AuditEvent
		var createdAt time.Time
		err := rows.Scan(&event.ID, &event.TenantID, &event.ActorID, &event.ActorLabel,
			&event.Action, &event.EntityType, &event.EntityID, &event.Metadata, &createdAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit event: %w", err)
		}
		event.CreatedAt = createdAt.Format(time.RFC3339)
		eventsList = append(eventsList, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit events: %w", err)
	}

	return eventsList, total, nil
}

// ListSSOConnections returns the tenant's SSO connections.
func (r *Repo) ListSSOConnections(ctx context.Context, tenantID uuid.UUID) ([]SSOConnection, error) {
	query := `
		SELECT id, tenant_id, provider, display_name, issuer_url, client_id, cert_fingerprint, is_active, created_at, updated_at
		FROM crm_sso_connections
		WHERE tenant_id = $1
		ORDER BY display_name ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list sso connections: %w", err)
	}
	defer rows.Close()

	conns := make([]SSOConnection, 0)
	for rows.Next() {
		conn, err := scanSSOConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sso connection: %w", err)
		}
		conns = append(conns, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sso connections: %w", err)
	}

	return conns, nil
}

// GetSSOConnection retrieves one SSO connection scoped to the tenant.
func (r *Repo) GetSSOConnection(ctx context.Context, tenantID, id uuid.UUID) (SSOConnection, error) {
	query := `
		SELECT id, tenant_id, provider, display_name, issuer_url, client_id, cert_fingerprint, is_active, created_at, updated_at
		FROM crm_sso_connections
		WHERE id = $1 AND tenant_id = $2`

	conn, err := scanSSOConnection(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SSOConnection{}, apperr.NotFound("sso connection not found")
		}
		return SSOConnection{}, fmt.Errorf("get sso connection: %w", err)
	}
	return conn, nil
}

// CreateSSOConnection inserts a new SSO connection.
func (r *Repo) CreateSSOConnection(ctx context.Context, conn SSOConnection) (SSOConnection, error) {
	query := `
		INSERT INTO crm_sso_connections (id, tenant_id, provider, display_name, issuer_url, client_id, cert_fingerprint, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, tenant_id, provider, display_name, issuer_url, client_id, cert_fingerprint, is_active, created_at, updated_at`

	stored, err := scanSSOConnection(r.pool.QueryRow(ctx, query,
		uuid.New(), conn.TenantID, conn.Provider, conn.DisplayName,
		conn.IssuerURL, conn.ClientID, conn.CertFingerprint, conn.IsActive,
	))
	if err != nil {
		return SSOConnection{}, fmt.Errorf("create sso connection: %w", err)
	}
	return stored, nil
}

// UpdateSSOConnection patches the whitelisted fields.
func (r *Repo) UpdateSSOConnection(ctx context.Context, tenantID, id uuid.UUID, fields SSOUpdateFields) (SSOConnection, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id, tenantID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if fields.DisplayName != nil {
		addSet("display_name", *fields.DisplayName)
	}
	if fields.IssuerURL != nil {
		addSet("issuer_url", *fields.IssuerURL)
	}
	if fields.ClientID != nil {
		addSet("client_id", *fields.ClientID)
	}
	if fields.CertFingerprint != nil {
		addSet("cert_fingerprint", *fields.CertFingerprint)
	}
	if fields.IsActive != nil {
		addSet("is_active", *fields.IsActive)
	}

	query := fmt.Sprintf(`
		UPDATE crm_sso_connections SET %s
		WHERE id = $1 AND tenant_id = $2
		RETURNING id, tenant_id, provider, display_name, issuer_url, client_id, cert_fingerprint, is_active, created_at, updated_at`,
		strings.Join(sets, ", "))

	conn, err := scanSSOConnection(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SSOConnection{}, apperr.NotFound("sso connection not found")
		}
		return SSOConnection{}, fmt.Errorf("update sso connection: %w", err)
	}
	return conn, nil
}

// DeleteSSOConnection removes an SSO connection.
func (r *Repo) DeleteSSOConnection(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM crm_sso_connections WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		return fmt.Errorf("delete sso connection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("sso connection not found")
	}
	return nil
}

// ListRoles returns the permission matrix rows for the tenant.
func (r *Repo) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]Role, error) {
	query := `
		SELECT r.id, r.tenant_id, r.name, r.description, COALESCE(ARRAY_AGG(p.permission ORDER BY p.permission) FILTER (WHERE p.permission IS NOT NULL), '{}')
		FROM crm_roles r
		LEFT JOIN crm_role_permissions p ON p.role_id = r.id
		WHERE r.tenant_id = $1
		GROUP BY r.id, r.tenant_id, r.name, r.description
		ORDER BY r.name ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]Role, 0)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.Permissions); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}

func scanSSOConnection(row pgx.Row) (SSOConnection, error) {
	var conn SSOConnection
	var createdAt, updatedAt time.Time

	err := row.Scan(&conn.ID, &conn.TenantID, &conn.Provider, &conn.DisplayName,
		&conn.IssuerURL, &conn.ClientID, &conn.CertFingerprint, &conn.IsActive,
		&createdAt, &updatedAt)
	if err != nil {
		return SSOConnection{}, err
	}

	conn.CreatedAt = createdAt.Format(time.RFC3339)
	conn.UpdatedAt = updatedAt.Format(time.RFC3339)
	return conn, nil
}
