package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"crm_portal_backend/internal/integrations/repository"
	"crm_portal_backend/internal/integrations/transport"
	"crm_portal_backend/internal/scheduler"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"
)

func TestRetryDeliveryCreatesPendingRowAndEnqueuesOnce(t *testing.T) {
	repo := newFakeRepo()
	enq := &fakeEnqueuer{}
	tenantID := uuid.New()

	endpoint := repo.seedEndpoint(repository.Endpoint{TenantID: tenantID, URL: "https://example.com/hook", IsActive: true})
	failed := repo.seedDelivery(repository.Delivery{
		EndpointID: endpoint.ID,
		TenantID:   tenantID,
		EventType:  "billing.invoice.issued",
		Body:       `{"invoiceId":"x"}`,
		Status:     repository.DeliveryFailed,
		StatusCode: 503,
	})

	svc := New(repo, enq, logger.New("test"))

	resp, err := svc.RetryDelivery(context.Background(), tenantID, endpoint.ID, failed.ID)
	if err != nil {
		t.Fatalf("RetryDelivery: %v", err)
	}

	if resp.Delivery.Status != repository.DeliveryPending {
		t.Errorf("status = %q, want pending", resp.Delivery.Status)
	}
	if resp.Delivery.RetryOf == nil || *resp.Delivery.RetryOf != failed.ID {
		t.Errorf("retryOf = %v, want %s", resp.Delivery.RetryOf, failed.ID)
	}
	if resp.Delivery.Body != failed.Body || resp.Delivery.EventType != failed.EventType {
		t.Errorf("retry row does not carry the original payload")
	}
	if len(enq.enqueued) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(enq.enqueued))
	}
	if enq.enqueued[0].DeliveryID != resp.Delivery.ID.String() {
		t.Errorf("enqueued deliveryId = %s, want %s", enq.enqueued[0].DeliveryID, resp.Delivery.ID)
	}

	// The failed row itself is untouched.
	original := repo.deliveries[failed.ID]
	if original.Status != repository.DeliveryFailed {
		t.Errorf("original status = %q, want failed", original.Status)
	}
}

func TestRetryDeliveryRejectsNonFailedDelivery(t *testing.T) {
	repo := newFakeRepo()
	enq := &fakeEnqueuer{}
	tenantID := uuid.New()

	endpoint := repo.seedEndpoint(repository.Endpoint{TenantID: tenantID, URL: "https://example.com/hook", IsActive: true})
	delivered := repo.seedDelivery(repository.Delivery{
		EndpointID: endpoint.ID,
		TenantID:   tenantID,
		Status:     repository.DeliveryDelivered,
		StatusCode: 200,
	})

	svc := New(repo, enq, logger.New("test"))

	_, err := svc.RetryDelivery(context.Background(), tenantID, endpoint.ID, delivered.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(enq.enqueued) != 0 {
		t.Errorf("enqueued %d tasks, want 0", len(enq.enqueued))
	}
}

func TestRetryDeliveryRejectsDisabledEndpoint(t *testing.T) {
	repo := newFakeRepo()
	enq := &fakeEnqueuer{}
	tenantID := uuid.New()

	endpoint := repo.seedEndpoint(repository.Endpoint{TenantID: tenantID, URL: "https://example.com/hook", IsActive: false})
	failed := repo.seedDelivery(repository.Delivery{
		EndpointID: endpoint.ID,
		TenantID:   tenantID,
		Status:     repository.DeliveryFailed,
	})

	svc := New(repo, enq, logger.New("test"))

	_, err := svc.RetryDelivery(context.Background(), tenantID, endpoint.ID, failed.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGatewayCallbackVerification(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	svc := New(repo, &fakeEnqueuer{}, logger.New("test"))

	created, err := svc.CreateGateway(context.Background(), tenantID, transport.CreateGatewayRequest{
		Provider:    "mollie",
		DisplayName: "Mollie Production",
		Secret:      "super-secret-signing-key",
	})
	if err != nil {
		t.Fatalf("CreateGateway: %v", err)
	}
	if created.SecretHash == "super-secret-signing-key" {
		t.Fatal("gateway secret stored in plain text")
	}

	if _, err := svc.VerifyCallback(context.Background(), created.ID, "super-secret-signing-key"); err != nil {
		t.Errorf("correct secret rejected: %v", err)
	}

	_, err = svc.VerifyCallback(context.Background(), created.ID, "wrong-secret")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("expected unauthorized for wrong secret, got %v", err)
	}

	_, err = svc.VerifyCallback(context.Background(), uuid.New(), "super-secret-signing-key")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("expected unauthorized for unknown gateway, got %v", err)
	}
}

// fakeEnqueuer records enqueued payloads.
type fakeEnqueuer struct {
	enqueued []scheduler.WebhookDeliverPayload
}

func (f *fakeEnqueuer) EnqueueWebhookDelivery(_ context.Context, payload scheduler.WebhookDeliverPayload) error {
	f.enqueued = append(f.enqueued, payload)
	return nil
}

// fakeRepo is a map-backed repository for service tests.
type fakeRepo struct {
	endpoints  map[uuid.UUID]repository.Endpoint
	deliveries map[uuid.UUID]repository.Delivery
	gateways   map[uuid.UUID]repository.Gateway
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		endpoints:  make(map[uuid.UUID]repository.Endpoint),
		deliveries: make(map[uuid.UUID]repository.Delivery),
		gateways:   make(map[uuid.UUID]repository.Gateway),
	}
}

func (f *fakeRepo) seedEndpoint(e repository.Endpoint) repository.Endpoint {
	e.ID = uuid.New()
	f.endpoints[e.ID] = e
	return e
}

func (f *fakeRepo) seedDelivery(d repository.Delivery) repository.Delivery {
	d.ID = uuid.New()
	f.deliveries[d.ID] = d
	return d
}

func (f *fakeRepo) ListIntegrations(_ context.Context, _ uuid.UUID) ([]repository.Integration, error) {
	return nil, nil
}

func (f *fakeRepo) SetIntegrationEnabled(_ context.Context, _, _ uuid.UUID, _ bool) (repository.Integration, error) {
	return repository.Integration{}, apperr.NotFound("integration not found")
}

func (f *fakeRepo) ListEndpoints(_ context.Context, tenantID uuid.UUID) ([]repository.Endpoint, error) {
	out := make([]repository.Endpoint, 0)
	for _, e := range f.endpoints {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetEndpoint(_ context.Context, tenantID, id uuid.UUID) (repository.Endpoint, error) {
	e, ok := f.endpoints[id]
	if !ok || e.TenantID != tenantID {
		return repository.Endpoint{}, apperr.NotFound("webhook endpoint not found")
	}
	return e, nil
}

func (f *fakeRepo) CreateEndpoint(_ context.Context, e repository.Endpoint) (repository.Endpoint, error) {
	return f.seedEndpoint(e), nil
}

func (f *fakeRepo) SetEndpointActive(_ context.Context, tenantID, id uuid.UUID, active bool) (repository.Endpoint, error) {
	e, err := f.GetEndpoint(context.Background(), tenantID, id)
	if err != nil {
		return repository.Endpoint{}, err
	}
	e.IsActive = active
	f.endpoints[id] = e
	return e, nil
}

func (f *fakeRepo) ListDeliveries(_ context.Context, tenantID, endpointID uuid.UUID, _ repository.DeliveryFilters) ([]repository.Delivery, int, error) {
	out := make([]repository.Delivery, 0)
	for _, d := range f.deliveries {
		if d.TenantID == tenantID && d.EndpointID == endpointID {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetDelivery(_ context.Context, tenantID, id uuid.UUID) (repository.Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok || d.TenantID != tenantID {
		return repository.Delivery{}, apperr.NotFound("webhook delivery not found")
	}
	return d, nil
}

func (f *fakeRepo) CreateDelivery(_ context.Context, d repository.Delivery) (repository.Delivery, error) {
	return f.seedDelivery(d), nil
}

func (f *fakeRepo) FinishDelivery(_ context.Context, id uuid.UUID, status string, statusCode int, deliveryErr string) error {
	d, ok := f.deliveries[id]
	if !ok {
		return apperr.NotFound("webhook delivery not found")
	}
	d.Status = status
	d.StatusCode = statusCode
	d.Error = deliveryErr
	f.deliveries[id] = d
	return nil
}

func (f *fakeRepo) ListGateways(_ context.Context, tenantID uuid.UUID) ([]repository.Gateway, error) {
	out := make([]repository.Gateway, 0)
	for _, g := range f.gateways {
		if g.TenantID == tenantID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetGateway(_ context.Context, tenantID, id uuid.UUID) (repository.Gateway, error) {
	g, ok := f.gateways[id]
	if !ok || g.TenantID != tenantID {
		return repository.Gateway{}, apperr.NotFound("payment gateway not found")
	}
	return g, nil
}

func (f *fakeRepo) GetGatewayByID(_ context.Context, id uuid.UUID) (repository.Gateway, error) {
	g, ok := f.gateways[id]
	if !ok {
		return repository.Gateway{}, apperr.NotFound("payment gateway not found")
	}
	return g, nil
}

func (f *fakeRepo) CreateGateway(_ context.Context, g repository.Gateway) (repository.Gateway, error) {
	g.ID = uuid.New()
	g.IsActive = true
	f.gateways[g.ID] = g
	return g, nil
}

var _ repository.Repository = (*fakeRepo)(nil)
