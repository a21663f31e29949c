// Package service implements the contacts business logic.
package service

import (
	"context"

	"crm_portal_backend/internal/contacts/repository"
	"crm_portal_backend/internal/contacts/transport"
	leadsvc "crm_portal_backend/internal/leads/service"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// Service implements contacts use cases.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new contacts service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Compile-time check that Service satisfies the lead conversion port.
var _ leadsvc.ContactCreator = (*Service)(nil)

// List returns a filtered page of contacts.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListContactsRequest) (transport.ContactListResponse, error) {
	contacts, total, err := s.repo.List(ctx, tenantID, repository.ListFilters{
		Stage:    req.Stage,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return transport.ContactListResponse{}, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	return transport.ContactListResponse{Contacts: contacts, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetDetail loads the contact with its deals and activity timeline.
func (s *Service) GetDetail(ctx context.Context, tenantID, id uuid.UUID) (transport.ContactDetailResponse, error) {
	contact, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.ContactDetailResponse{}, err
	}

	deals, err := s.repo.ListDeals(ctx, tenantID, id)
	if err != nil {
		return transport.ContactDetailResponse{}, err
	}

	activities, err := s.repo.ListActivities(ctx, tenantID, id)
	if err != nil {
		return transport.ContactDetailResponse{}, err
	}

	return transport.ContactDetailResponse{Contact: contact, Deals: deals, Activities: activities}, nil
}

// Create stores a new contact.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateContactRequest) (repository.Contact, error) {
	stage := req.Stage
	if stage == "" {
		stage = repository.StageSQL
	}

	return s.repo.Create(ctx, repository.Contact{
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    phone.NormalizeE164(req.Phone),
		Company:  req.Company,
		Title:    req.Title,
		Stage:    stage,
	})
}

// CreateFromLead creates a contact from a converted lead. This is the
// conversion port wired into the leads module by the composition root.
func (s *Service) CreateFromLead(ctx context.Context, tenantID uuid.UUID, params leadsvc.ContactParams) (uuid.UUID, error) {
	sourceLeadID := params.SourceLeadID
	contact, err := s.repo.Create(ctx, repository.Contact{
		TenantID:     tenantID,
		Name:         params.Name,
		Email:        params.Email,
		Phone:        params.Phone,
		Company:      params.Company,
		Stage:        params.Stage,
		SourceLeadID: &sourceLeadID,
	})
	if err != nil {
		return uuid.UUID{}, err
	}

	if _, err := s.repo.CreateActivity(ctx, repository.Activity{
		ContactID: contact.ID,
		TenantID:  tenantID,
		Kind:      "converted",
		Summary:   "Converted from lead",
	}); err != nil {
		s.log.Error("record conversion activity", "contactId", contact.ID, "error", err)
	}

	return contact.ID, nil
}

// Update applies a partial update to the contact.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateContactRequest) (repository.Contact, error) {
	normalizedPhone := req.Phone
	if req.Phone != nil {
		value := phone.NormalizeE164(*req.Phone)
		normalizedPhone = &value
	}

	return s.repo.Update(ctx, tenantID, id, repository.UpdateFields{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   normalizedPhone,
		Company: req.Company,
		Title:   req.Title,
		Notes:   req.Notes,
		OwnerID: req.OwnerID,
	})
}

// ChangeStage moves the contact to a new lifecycle stage.
func (s *Service) ChangeStage(ctx context.Context, tenantID, id, actorID uuid.UUID, stage string) (repository.Contact, error) {
	current, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return repository.Contact{}, err
	}
	if current.Stage == stage {
		return current, nil
	}

	contact, err := s.repo.UpdateStage(ctx, tenantID, id, stage)
	if err != nil {
		return repository.Contact{}, err
	}

	if _, err := s.repo.CreateActivity(ctx, repository.Activity{
		ContactID: id,
		TenantID:  tenantID,
		Kind:      "stage_change",
		Summary:   "Stage changed from " + current.Stage + " to " + stage,
		ActorID:   &actorID,
	}); err != nil {
		s.log.Error("record stage change activity", "contactId", id, "error", err)
	}

	return contact, nil
}

// AddActivity appends a manual timeline entry to the contact.
func (s *Service) AddActivity(ctx context.Context, tenantID, contactID, actorID uuid.UUID, req transport.AddActivityRequest) (repository.Activity, error) {
	if _, err := s.repo.GetByID(ctx, tenantID, contactID); err != nil {
		return repository.Activity{}, err
	}

	return s.repo.CreateActivity(ctx, repository.Activity{
		ContactID: contactID,
		TenantID:  tenantID,
		Kind:      req.Kind,
		Summary:   req.Summary,
		ActorID:   &actorID,
	})
}
