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

const endpointColumns = `id, tenant_id, url, description, secret, event_types, is_active, created_at, updated_at`
const deliveryColumns = `id, endpoint_id, tenant_id, event_type, body, status, status_code, error, retry_of, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new integrations repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// ListIntegrations returns the tenant's integrations ordered by name.
func (r *Repo) ListIntegrations(ctx context.Context, tenantID uuid.UUID) ([]Integration, error) {
	query := `
		SELECT id, tenant_id, provider, name, category, is_enabled, created_at, updated_at
		FROM crm_integrations
		WHERE tenant_id = $1
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	integrations := make([]Integration, 0)
	for rows.Next() {
		integration, err := scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		integrations = append(integrations, integration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate integrations: %w", err)
	}

	return integrations, nil
}

// SetIntegrationEnabled flips the enable toggle.
func (r *Repo) SetIntegrationEnabled(ctx context.Context, tenantID, id uuid.UUID, enabled bool) (Integration, error) {
	query := `
		UPDATE crm_integrations SET is_enabled = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING id, tenant_id, provider, name, category, is_enabled, created_at, updated_at`

	integration, err := scanIntegration(r.pool.QueryRow(ctx, query, id, tenantID, enabled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Integration{}, apperr.NotFound("integration not found")
		}
		return Integration{}, fmt.Errorf("set integration enabled: %w", err)
	}
	return integration, nil
}

// ListEndpoints returns the tenant's webhook endpoints, newest first.
func (r *Repo) ListEndpoints(ctx context.Context, tenantID uuid.UUID) ([]Endpoint, error) {
	query := "SELECT " + endpointColumns + " FROM crm_webhook_endpoints WHERE tenant_id = $1 ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list webhook endpoints: %w", err)
	}
	defer rows.Close()

	endpoints := make([]Endpoint, 0)
	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan webhook endpoint: %w", err)
		}
		endpoints = append(endpoints, endpoint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook endpoints: %w", err)
	}

	return endpoints, nil
}

// GetEndpoint retrieves one endpoint scoped to the tenant.
func (r *Repo) GetEndpoint(ctx context.Context, tenantID, id uuid.UUID) (Endpoint, error) {
	query := "SELECT " + endpointColumns + " FROM crm_webhook_endpoints WHERE id = $1 AND tenant_id = $2"

	endpoint, err := scanEndpoint(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Endpoint{}, apperr.NotFound("webhook endpoint not found")
		}
		return Endpoint{}, fmt.Errorf("get webhook endpoint: %w", err)
	}
	return endpoint, nil
}

// CreateEndpoint inserts a new webhook endpoint.
func (r *Repo) CreateEndpoint(ctx context.Context, endpoint Endpoint) (Endpoint, error) {
	query := `
		INSERT INTO crm_webhook_endpoints (id, tenant_id, url, description, secret, event_types, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + endpointColumns

	stored, err := scanEndpoint(r.pool.QueryRow(ctx, query,
		uuid.New(), endpoint.TenantID, endpoint.URL, endpoint.Description,
		endpoint.Secret, endpoint.EventTypes, endpoint.IsActive,
	))
	if err != nil {
		return Endpoint{}, fmt.Errorf("create webhook endpoint: %w", err)
	}
	return stored, nil
}

// SetEndpointActive flips the endpoint's active flag.
func (r *Repo) SetEndpointActive(ctx context.Context, tenantID, id uuid.UUID, active bool) (Endpoint, error) {
	query := `
		UPDATE crm_webhook_endpoints SET is_active = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + endpointColumns

	endpoint, err := scanEndpoint(r.pool.QueryRow(ctx, query, id, tenantID, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Endpoint{}, apperr.NotFound("webhook endpoint not found")
		}
		return Endpoint{}, fmt.Errorf("set webhook endpoint active: %w", err)
	}
	return endpoint, nil
}

// ListDeliveries returns a page of delivery history for an endpoint,
// newest first.
func (r *Repo) ListDeliveries(ctx context.Context, tenantID, endpointID uuid.UUID, filters DeliveryFilters) ([]Delivery, int, error) {
	conditions := []string{"tenant_id = $1", "endpoint_id = $2"}
	args := []interface{}{tenantID, endpointID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM crm_webhook_deliveries WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count webhook deliveries: %w", err)
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
		"SELECT %s FROM crm_webhook_deliveries WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		deliveryColumns, where, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list webhook deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]Delivery, 0)
	for rows.Next() {
		delivery, err := scanDelivery(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan webhook delivery: %w", err)
		}
		deliveries = append(deliveries, delivery)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate webhook deliveries: %w", err)
	}

	return deliveries, total, nil
}

// GetDelivery retrieves one delivery scoped to the tenant.
func (r *Repo) GetDelivery(ctx context.Context, tenantID, id uuid.UUID) (Delivery, error) {
	query := "SELECT " + deliveryColumns + " FROM crm_webhook_deliveries WHERE id = $1 AND tenant_id = $2"

	delivery, err := scanDelivery(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Delivery{}, apperr.NotFound("webhook delivery not found")
		}
		return Delivery{}, fmt.Errorf("get webhook delivery: %w", err)
	}
	return delivery, nil
}

// CreateDelivery inserts a new delivery row, usually in pending status.
func (r *Repo) CreateDelivery(ctx context.Context, delivery Delivery) (Delivery, error) {
	query := `
		INSERT INTO crm_webhook_deliveries (id, endpoint_id, tenant_id, event_type, body, status, status_code, error, retry_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + deliveryColumns

	stored, err := scanDelivery(r.pool.QueryRow(ctx, query,
		uuid.New(), delivery.EndpointID, delivery.TenantID, delivery.EventType,
		delivery.Body, delivery.Status, delivery.StatusCode, delivery.Error, delivery.RetryOf,
	))
	if err != nil {
		return Delivery{}, fmt.Errorf("create webhook delivery: %w", err)
	}
	return stored, nil
}

// FinishDelivery records the outcome of a delivery attempt.
func (r *Repo) FinishDelivery(ctx context.Context, id uuid.UUID, status string, statusCode int, deliveryErr string) error {
	query := `
		UPDATE crm_webhook_deliveries SET status = $2, status_code = $3, error = $4, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, status, statusCode, deliveryErr); err != nil {
		return fmt.Errorf("finish webhook delivery: %w", err)
	}
	return nil
}

// ListGateways returns the tenant's payment gateways.
func (r *Repo) ListGateways(ctx context.Context, tenantID uuid.UUID) ([]Gateway, error) {
	query := `
		SELECT id, tenant_id, provider, display_name, callback_secret_hash, is_active, created_at, updated_at
		FROM crm_payment_gateways
		WHERE tenant_id = $1
		ORDER BY display_name ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list payment gateways: %w", err)
	}
	defer rows.Close()

	gateways := make([]Gateway, 0)
	for rows.Next() {
		gateway, err := scanGateway(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment gateway: %w", err)
		}
		gateways = append(gateways, gateway)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment gateways: %w", err)
	}

	return gateways, nil
}

// GetGateway retrieves one gateway scoped to the tenant.
func (r *Repo) GetGateway(ctx context.Context, tenantID, id uuid.UUID) (Gateway, error) {
	query := `
		SELECT id, tenant_id, provider, display_name, callback_secret_hash, is_active, created_at, updated_at
		FROM crm_payment_gateways
		WHERE id = $1 AND tenant_id = $2`

	gateway, err := scanGateway(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Gateway{}, apperr.NotFound("payment gateway not found")
		}
		return Gateway{}, fmt.Errorf("get payment gateway: %w", err)
	}
	return gateway, nil
}

// GetGatewayByID retrieves one gateway without tenant scoping, for the
// inbound callback route.
func (r *Repo) GetGatewayByID(ctx context.Context, id uuid.UUID) (Gateway, error) {
	query := `
		SELECT id, tenant_id, provider, display_name, callback_secret_hash, is_active, created_at, updated_at
		FROM crm_payment_gateways
		WHERE id = $1`

	gateway, err := scanGateway(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Gateway{}, apperr.NotFound("payment gateway not found")
		}
		return Gateway{}, fmt.Errorf("get payment gateway by id: %w", err)
	}
	return gateway, nil
}

// CreateGateway inserts a new payment gateway.
func (r *Repo) CreateGateway(ctx context.Context, gateway Gateway) (Gateway, error) {
	query := `
		INSERT INTO crm_payment_gateways (id, tenant_id, provider, display_name, callback_secret_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, tenant_id, provider, display_name, callback_secret_hash, is_active, created_at, updated_at`

	stored, err := scanGateway(r.pool.QueryRow(ctx, query,
		uuid.New(), gateway.TenantID, gateway.Provider, gateway.DisplayName,
		gateway.SecretHash, gateway.IsActive,
	))
	if err != nil {
		return Gateway{}, fmt.Errorf("create payment gateway: %w", err)
	}
	return stored, nil
}

func scanIntegration(row pgx.Row) (Integration, error) {
	var integration Integration
	var createdAt, updatedAt time.Time

	err := row.Scan(&integration.ID, &integration.TenantID, &integration.Provider,
		&integration.Name, &integration.Category, &integration.IsEnabled, &createdAt, &updatedAt)
	if err != nil {
		return Integration{}, err
	}

	integration.CreatedAt = createdAt.Format(time.RFC3339)
	integration.UpdatedAt = updatedAt.Format(time.RFC3339)
	return integration, nil
}

func scanEndpoint(row pgx.Row) (Endpoint, error) {
	var endpoint Endpoint
	var createdAt, updatedAt time.Time

	err := row.Scan(&endpoint.ID, &endpoint.TenantID, &endpoint.URL, &endpoint.Description,
		&endpoint.Secret, &endpoint.EventTypes, &endpoint.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return Endpoint{}, err
	}

	endpoint.CreatedAt = createdAt.Format(time.RFC3339)
	endpoint.UpdatedAt = updatedAt.Format(time.RFC3339)
	return endpoint, nil
}

func scanDelivery(row pgx.Row) (Delivery, error) {
	var delivery Delivery
	var createdAt, updatedAt time.Time

	err := row.Scan(&delivery.ID, &delivery.EndpointID, &delivery.TenantID, &delivery.EventType,
		&delivery.Body, &delivery.Status, &delivery.StatusCode, &delivery.Error,
		&delivery.RetryOf, &createdAt, &updatedAt)
	if err != nil {
		return Delivery{}, err
	}

	delivery.CreatedAt = createdAt.Format(time.RFC3339)
	delivery.UpdatedAt = updatedAt.Format(time.RFC3339)
	return delivery, nil
}

func scanGateway(row pgx.Row) (Gateway, error) {
	var gateway Gateway
	var createdAt, updatedAt time.Time

	err := row.Scan(&gateway.ID, &gateway.TenantID, &gateway.Provider, &gateway.DisplayName,
		&gateway.SecretHash, &gateway.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return Gateway{}, err
	}

	gateway.CreatedAt = createdAt.Format(time.RFC3339)
	gateway.UpdatedAt = updatedAt.Format(time.RFC3339)
	return gateway, nil
}
