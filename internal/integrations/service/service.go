// Package service implements integrations business logic: the enable
// toggle, webhook endpoint management with manual redelivery and payment
// gateway callback verification.
package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"crm_portal_backend/internal/integrations/repository"
	"crm_portal_backend/internal/integrations/transport"
	"crm_portal_backend/internal/scheduler"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"
)

// Service coordinates integrations operations.
type Service struct {
	repo     repository.Repository
	enqueuer scheduler.DeliveryEnqueuer
	log      *logger.Logger
}

// New creates an integrations service. The enqueuer may be nil when the
// task queue is not configured; the retry action then returns an error.
func New(repo repository.Repository, enqueuer scheduler.DeliveryEnqueuer, log *logger.Logger) *Service {
	return &Service{repo: repo, enqueuer: enqueuer, log: log}
}

// ListIntegrations returns the tenant's integrations.
func (s *Service) ListIntegrations(ctx context.Context, tenantID uuid.UUID) ([]repository.Integration, error) {
	return s.repo.ListIntegrations(ctx, tenantID)
}

// ToggleIntegration flips the enable switch.
func (s *Service) ToggleIntegration(ctx context.Context, tenantID, id uuid.UUID, enabled bool) (repository.Integration, error) {
	return s.repo.SetIntegrationEnabled(ctx, tenantID, id, enabled)
}

// ListEndpoints returns the tenant's webhook endpoints.
func (s *Service) ListEndpoints(ctx context.Context, tenantID uuid.UUID) ([]repository.Endpoint, error) {
	return s.repo.ListEndpoints(ctx, tenantID)
}

// CreateEndpoint registers a new webhook endpoint.
func (s *Service) CreateEndpoint(ctx context.Context, tenantID uuid.UUID, req transport.CreateEndpointRequest) (repository.Endpoint, error) {
	endpoint := repository.Endpoint{
		TenantID:    tenantID,
		URL:         req.URL,
		Description: req.Description,
		Secret:      req.Secret,
		EventTypes:  req.EventTypes,
		IsActive:    true,
	}
	return s.repo.CreateEndpoint(ctx, endpoint)
}

// ToggleEndpoint flips the endpoint's active switch.
func (s *Service) ToggleEndpoint(ctx context.Context, tenantID, id uuid.UUID, active bool) (repository.Endpoint, error) {
	return s.repo.SetEndpointActive(ctx, tenantID, id, active)
}

// ListDeliveries returns a page of delivery history for an endpoint.
func (s *Service) ListDeliveries(ctx context.Context, tenantID, endpointID uuid.UUID, req transport.ListDeliveriesRequest) (transport.DeliveryListResponse, error) {
	if _, err := s.repo.GetEndpoint(ctx, tenantID, endpointID); err != nil {
		return transport.DeliveryListResponse{}, err
	}

	filters := repository.DeliveryFilters{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 25
	}

	deliveries, total, err := s.repo.ListDeliveries(ctx, tenantID, endpointID, filters)
	if err != nil {
		return transport.DeliveryListResponse{}, err
	}

	return transport.DeliveryListResponse{
		Deliveries: deliveries,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
	}, nil
}

// RetryDelivery enqueues a single redelivery of a failed delivery. The
// original row is left untouched; a new pending row references it. There
// is no automatic retry anywhere in the pipeline.
func (s *Service) RetryDelivery(ctx context.Context, tenantID, endpointID, deliveryID uuid.UUID) (transport.RetryResponse, error) {
	if s.enqueuer == nil {
		return transport.RetryResponse{}, apperr.Internal("task queue is not configured")
	}

	endpoint, err := s.repo.GetEndpoint(ctx, tenantID, endpointID)
	if err != nil {
		return transport.RetryResponse{}, err
	}
	if !endpoint.IsActive {
		return transport.RetryResponse{}, apperr.Conflict("webhook endpoint is disabled")
	}

	failed, err := s.repo.GetDelivery(ctx, tenantID, deliveryID)
	if err != nil {
		return transport.RetryResponse{}, err
	}
	if failed.EndpointID != endpointID {
		return transport.RetryResponse{}, apperr.NotFound("webhook delivery not found")
	}
	if failed.Status != repository.DeliveryFailed {
		return transport.RetryResponse{}, apperr.Conflict("only failed deliveries can be retried")
	}

	retry, err := s.repo.CreateDelivery(ctx, repository.Delivery{
		EndpointID: endpointID,
		TenantID:   tenantID,
		EventType:  failed.EventType,
		Body:       failed.Body,
		Status:     repository.DeliveryPending,
		RetryOf:    &failed.ID,
	})
	if err != nil {
		return transport.RetryResponse{}, err
	}

	err = s.enqueuer.EnqueueWebhookDelivery(ctx, scheduler.WebhookDeliverPayload{
		DeliveryID: retry.ID.String(),
		TenantID:   tenantID.String(),
	})
	if err != nil {
		s.log.Error("enqueue webhook redelivery", "deliveryId", retry.ID, "error", err)
		return transport.RetryResponse{}, apperr.Internal("could not enqueue redelivery")
	}

	return transport.RetryResponse{Delivery: retry}, nil
}

// ListGateways returns the tenant's payment gateways.
func (s *Service) ListGateways(ctx context.Context, tenantID uuid.UUID) ([]repository.Gateway, error) {
	return s.repo.ListGateways(ctx, tenantID)
}

// CreateGateway registers a payment gateway with a bcrypt-hashed
// signing secret.
func (s *Service) CreateGateway(ctx context.Context, tenantID uuid.UUID, req transport.CreateGatewayRequest) (repository.Gateway, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
	if err != nil {
		return repository.Gateway{}, apperr.Internal("could not hash gateway secret")
	}

	gateway := repository.Gateway{
		TenantID:    tenantID,
		Provider:    req.Provider,
		DisplayName: req.DisplayName,
		SecretHash:  string(hash),
		IsActive:    true,
	}
	return s.repo.CreateGateway(ctx, gateway)
}

// VerifyCallback checks an inbound gateway callback secret against the
// stored bcrypt hash. The route is unauthenticated so a failed match is
// indistinguishable from an unknown gateway.
func (s *Service) VerifyCallback(ctx context.Context, gatewayID uuid.UUID, presentedSecret string) (repository.Gateway, error) {
	gateway, err := s.repo.GetGatewayByID(ctx, gatewayID)
	if err != nil {
		return repository.Gateway{}, apperr.Unauthorized("invalid gateway callback")
	}
	if !gateway.IsActive {
		return repository.Gateway{}, apperr.Unauthorized("invalid gateway callback")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(gateway.SecretHash), []byte(presentedSecret)); err != nil {
		return repository.Gateway{}, apperr.Unauthorized("invalid gateway callback")
	}
	return gateway, nil
}
