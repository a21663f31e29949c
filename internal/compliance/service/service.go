// Package service implements compliance business logic: the audit trail,
// SSO connection configuration and the permission matrix.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"crm_portal_backend/internal/compliance/repository"
	"crm_portal_backend/internal/compliance/transport"
	"crm_portal_backend/platform/logger"
)

// Service coordinates compliance operations.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a compliance service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListAudit returns a page of audit events.
func (s *Service) ListAudit(ctx context.Context, tenantID uuid.UUID, req transport.ListAuditRequest) (transport.AuditListResponse, error) {
	filters := repository.AuditFilters{
		Action:   req.Action,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 25
	}

	if req.ActorID != "" {
		actorID, err := uuid.Parse(req.ActorID)
		if err == nil {
			filters.ActorID = &actorID
		}
	}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err == nil {
			filters.From = &from
		}
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err == nil {
			// Make the upper bound exclusive of the following day.
			end := to.AddDate(0, 0, 1)
			filters.To = &end
		}
	}

	events, total, err := s.repo.ListAudit(ctx, tenantID, filters)
	if err != nil {
		return transport.AuditListResponse{}, err
	}

	return transport.AuditListResponse{
		Events:   events,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}, nil
}

// ListSSOConnections returns the tenant's SSO connections.
func (s *Service) ListSSOConnections(ctx context.Context, tenantID uuid.UUID) ([]repository.SSOConnection, error) {
	return s.repo.ListSSOConnections(ctx, tenantID)
}

// GetSSOConnection returns one SSO connection.
func (s *Service) GetSSOConnection(ctx context.Context, tenantID, id uuid.UUID) (repository.SSOConnection, error) {
	return s.repo.GetSSOConnection(ctx, tenantID, id)
}

// CreateSSOConnection registers a new identity provider connection,
// inactive until explicitly enabled.
func (s *Service) CreateSSOConnection(ctx context.Context, tenantID uuid.UUID, req transport.CreateSSORequest) (repository.SSOConnection, error) {
	conn := repository.SSOConnection{
		TenantID:        tenantID,
		Provider:        req.Provider,
		DisplayName:     req.DisplayName,
		IssuerURL:       req.IssuerURL,
		ClientID:        req.ClientID,
		CertFingerprint: req.CertFingerprint,
		IsActive:        false,
	}
	return s.repo.CreateSSOConnection(ctx, conn)
}

// UpdateSSOConnection patches an SSO connection.
func (s *Service) UpdateSSOConnection(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateSSORequest) (repository.SSOConnection, error) {
	fields := repository.SSOUpdateFields{
		DisplayName:     req.DisplayName,
		IssuerURL:       req.IssuerURL,
		ClientID:        req.ClientID,
		CertFingerprint: req.CertFingerprint,
		IsActive:        req.IsActive,
	}
	return s.repo.UpdateSSOConnection(ctx, tenantID, id, fields)
}

// DeleteSSOConnection removes an SSO connection.
func (s *Service) DeleteSSOConnection(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.DeleteSSOConnection(ctx, tenantID, id)
}

// ListRoles returns the permission matrix rows.
func (s *Service) ListRoles(ctx context.Context, tenantID uuid.UUID) ([]repository.Role, error) {
	return s.repo.ListRoles(ctx, tenantID)
}
