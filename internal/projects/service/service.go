// Package service implements job management business logic.
package service

import (
	"context"

	"github.com/google/uuid"

	"crm_portal_backend/internal/projects/repository"
	"crm_portal_backend/internal/projects/transport"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"
)

// Service coordinates job operations.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a jobs service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns a page of jobs for the tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListJobsRequest) (transport.JobListResponse, error) {
	filters := repository.ListFilters{
		Status:   req.Status,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 25
	}

	jobs, total, err := s.repo.List(ctx, tenantID, filters)
	if err != nil {
		return transport.JobListResponse{}, err
	}

	return transport.JobListResponse{
		Jobs:     jobs,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}, nil
}

// Get returns one job.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (repository.Job, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// Create records a new job in planned status.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateJobRequest) (repository.Job, error) {
	job := repository.Job{
		TenantID:    tenantID,
		ContactID:   req.ContactID,
		ContractID:  req.ContractID,
		Name:        req.Name,
		Description: req.Description,
		Status:      repository.StatusPlanned,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}
	return s.repo.Create(ctx, job)
}

// ChangeStatus moves a job through its lifecycle. Terminal states cannot
// be left.
func (s *Service) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (repository.Job, error) {
	current, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return repository.Job{}, err
	}

	if current.Status == repository.StatusCompleted || current.Status == repository.StatusCancelled {
		return repository.Job{}, apperr.Conflict("job is already closed")
	}
	if current.Status == status {
		return current, nil
	}

	return s.repo.UpdateStatus(ctx, tenantID, id, status)
}
