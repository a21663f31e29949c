package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"crm_portal_backend/internal/compliance/repository"
	"crm_portal_backend/internal/events"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"
)

func TestAuditSubscriberAppendsRowForLeadConverted(t *testing.T) {
	repo := &captureRepo{}
	sub := NewAuditSubscriber(repo, logger.New("test"))
	bus := events.NewInMemoryBus(logger.New("test"))
	sub.Register(bus)

	tenantID := uuid.New()
	leadID := uuid.New()
	contactID := uuid.New()
	userID := uuid.New()

	err := bus.PublishSync(context.Background(), events.LeadConverted{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      leadID,
		ContactID:   contactID,
		TenantID:    tenantID,
		ConvertedBy: userID,
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if len(repo.appended) != 1 {
		t.Fatalf("appended %d audit rows, want 1", len(repo.appended))
	}

	row := repo.appended[0]
	if row.Action != "leads.lead.converted" {
		t.Errorf("action = %q", row.Action)
	}
	if row.TenantID != tenantID {
		t.Errorf("tenantId = %s, want %s", row.TenantID, tenantID)
	}
	if row.ActorID == nil || *row.ActorID != userID {
		t.Errorf("actorId = %v, want %s", row.ActorID, userID)
	}
	if row.EntityType != "lead" || row.EntityID == nil || *row.EntityID != leadID {
		t.Errorf("entity = %s/%v, want lead/%s", row.EntityType, row.EntityID, leadID)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(row.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta["contactId"] != contactID.String() {
		t.Errorf("metadata contactId = %q", meta["contactId"])
	}
}

func TestAuditSubscriberCoversInvoiceAndWebhookEvents(t *testing.T) {
	repo := &captureRepo{}
	sub := NewAuditSubscriber(repo, logger.New("test"))
	bus := events.NewInMemoryBus(logger.New("test"))
	sub.Register(bus)

	tenantID := uuid.New()

	_ = bus.PublishSync(context.Background(), events.InvoiceIssued{
		BaseEvent:     events.NewBaseEvent(),
		InvoiceID:     uuid.New(),
		TenantID:      tenantID,
		InvoiceNumber: "INV-2026-00042",
		TotalCents:    181500,
	})
	_ = bus.PublishSync(context.Background(), events.WebhookDeliveryFailed{
		BaseEvent:  events.NewBaseEvent(),
		EndpointID: uuid.New(),
		DeliveryID: uuid.New(),
		TenantID:   tenantID,
		EventType:  "billing.invoice.issued",
		StatusCode: 503,
	})

	if len(repo.appended) != 2 {
		t.Fatalf("appended %d audit rows, want 2", len(repo.appended))
	}
	if repo.appended[0].EntityType != "invoice" {
		t.Errorf("first entity = %q, want invoice", repo.appended[0].EntityType)
	}
	if repo.appended[1].EntityType != "webhook_endpoint" {
		t.Errorf("second entity = %q, want webhook_endpoint", repo.appended[1].EntityType)
	}
}

// captureRepo records appended audit events and stubs the rest.
type captureRepo struct {
	appended []repository.AuditEvent
}

func (c *captureRepo) AppendAudit(_ context.Context, event repository.AuditEvent) error {
	c.appended = append(c.appended, event)
	return nil
}

func (c *captureRepo) ListAudit(_ context.Context, _ uuid.UUID, _ repository.AuditFilters) ([]repository.AuditEvent, int, error) {
	return c.appended, len(c.appended), nil
}

func (c *captureRepo) ListSSOConnections(_ context.Context, _ uuid.UUID) ([]repository.SSOConnection, error) {
	return nil, nil
}

func (c *captureRepo) GetSSOConnection(_ context.Context, _, _ uuid.UUID) (repository.SSOConnection, error) {
	return repository.SSOConnection{}, apperr.NotFound("sso connection not found")
}

func (c *captureRepo) CreateSSOConnection(_ context.Context, conn repository.SSOConnection) (repository.SSOConnection, error) {
	conn.ID = uuid.New()
	return conn, nil
}

func (c *captureRepo) UpdateSSOConnection(_ context.Context, _, _ uuid.UUID, _ repository.SSOUpdateFields) (repository.SSOConnection, error) {
	return repository.SSOConnection{}, apperr.NotFound("sso connection not found")
}

func (c *captureRepo) DeleteSSOConnection(_ context.Context, _, _ uuid.UUID) error {
	return apperr.NotFound("sso connection not found")
}

func (c *captureRepo) ListRoles(_ context.Context, _ uuid.UUID) ([]repository.Role, error) {
	return nil, nil
}

var _ repository.Repository = (*captureRepo)(nil)
