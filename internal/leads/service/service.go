// Package service implements the leads business logic.
package service

import (
	"context"

	"crm_portal_backend/internal/events"
	"crm_portal_backend/internal/leads/repository"
	"crm_portal_backend/internal/leads/scoring"
	"crm_portal_backend/internal/leads/transport"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"
	"crm_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// ContactCreator is the slice of the contacts module needed to convert
// a lead. Wired in by the composition root to avoid a package cycle.
type ContactCreator interface {
	CreateFromLead(ctx context.Context, tenantID uuid.UUID, params ContactParams) (uuid.UUID, error)
}

// ContactParams carries the lead attributes copied onto the new contact.
type ContactParams struct {
	Name         string
	Email        string
	Phone        string
	Company      string
	Stage        string
	SourceLeadID uuid.UUID
}

// Service implements leads use cases.
type Service struct {
	repo     repository.Repository
	contacts ContactCreator
	bus      events.Bus
	log      *logger.Logger
}

// New creates a new leads service.
func New(repo repository.Repository, contacts ContactCreator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, contacts: contacts, bus: bus, log: log}
}

// List returns a filtered page of leads.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	filters := repository.ListFilters{
		Stage:    req.Stage,
		Source:   req.Source,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	leads, total, err := s.repo.List(ctx, tenantID, filters)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	return transport.LeadListResponse{Leads: leads, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetDetail loads the lead, computes its score breakdown and attaches
// the activity timeline.
func (s *Service) GetDetail(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	activities, err := s.repo.ListActivities(ctx, tenantID, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	return transport.LeadDetailResponse{
		Lead:       lead,
		Score:      s.scoreLead(lead),
		Activities: activities,
	}, nil
}

// GetScore computes the score breakdown for the scoring widget.
func (s *Service) GetScore(ctx context.Context, tenantID, id uuid.UUID) (scoring.Result, error) {
	lead, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return scoring.Result{}, err
	}
	return s.scoreLead(lead), nil
}

// Create stores a new lead and publishes LeadCreated.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateLeadRequest) (repository.Lead, error) {
	stage := req.Stage
	if stage == "" {
		stage = repository.StageLead
	}

	lead, err := s.repo.Create(ctx, repository.Lead{
		TenantID:  tenantID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     phone.NormalizeE164(req.Phone),
		Company:   req.Company,
		Source:    req.Source,
		Stage:     stage,
		LeadScore: req.LeadScore,
	})
	if err != nil {
		return repository.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  tenantID,
		Name:      lead.Name,
		Email:     lead.Email,
		Company:   lead.Company,
		Source:    lead.Source,
	})

	return lead, nil
}

// Update applies a partial update to the lead.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateLeadRequest) (repository.Lead, error) {
	normalizedPhone := req.Phone
	if req.Phone != nil {
		value := phone.NormalizeE164(*req.Phone)
		normalizedPhone = &value
	}

	return s.repo.Update(ctx, tenantID, id, repository.UpdateFields{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     normalizedPhone,
		Company:   req.Company,
		Source:    req.Source,
		Notes:     req.Notes,
		LeadScore: req.LeadScore,
		OwnerID:   req.OwnerID,
	})
}

// ChangeStage moves the lead to a new lifecycle stage, records a
// timeline entry and publishes LeadStageChanged.
func (s *Service) ChangeStage(ctx context.Context, tenantID, id, actorID uuid.UUID, stage string) (repository.Lead, error) {
	current, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return repository.Lead{}, err
	}
	if current.ConvertedContactID != nil {
		return repository.Lead{}, apperr.Conflict("lead is already converted")
	}
	if current.Stage == stage {
		return current, nil
	}

	lead, err := s.repo.UpdateStage(ctx, tenantID, id, stage)
	if err != nil {
		return repository.Lead{}, err
	}

	if _, err := s.repo.CreateActivity(ctx, repository.Activity{
		LeadID:   id,
		TenantID: tenantID,
		Kind:     "stage_change",
		Summary:  "Stage changed from " + current.Stage + " to " + stage,
		ActorID:  &actorID,
	}); err != nil {
		s.log.Error("record stage change activity", "leadId", id, "error", err)
	}

	s.bus.Publish(ctx, events.LeadStageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		TenantID:  tenantID,
		OldStage:  current.Stage,
		NewStage:  stage,
		ChangedBy: actorID,
	})

	return lead, nil
}

// Convert creates a contact from the lead, links the two records and
// publishes LeadConverted. Converting twice is a conflict.
func (s *Service) Convert(ctx context.Context, tenantID, id, actorID uuid.UUID, req transport.ConvertLeadRequest) (transport.ConvertLeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}
	if lead.ConvertedContactID != nil {
		return transport.ConvertLeadResponse{}, apperr.Conflict("lead is already converted")
	}

	stage := req.ContactStage
	if stage == "" {
		stage = "sql"
	}

	contactID, err := s.contacts.CreateFromLead(ctx, tenantID, ContactParams{
		Name:         lead.Name,
		Email:        lead.Email,
		Phone:        lead.Phone,
		Company:      lead.Company,
		Stage:        stage,
		SourceLeadID: lead.ID,
	})
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	if err := s.repo.MarkConverted(ctx, tenantID, id, contactID); err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      id,
		ContactID:   contactID,
		TenantID:    tenantID,
		ConvertedBy: actorID,
	})

	return transport.ConvertLeadResponse{LeadID: id, ContactID: contactID}, nil
}

// AddActivity appends a manual timeline entry to the lead.
func (s *Service) AddActivity(ctx context.Context, tenantID, leadID, actorID uuid.UUID, req transport.AddActivityRequest) (repository.Activity, error) {
	if _, err := s.repo.GetByID(ctx, tenantID, leadID); err != nil {
		return repository.Activity{}, err
	}

	return s.repo.CreateActivity(ctx, repository.Activity{
		LeadID:   leadID,
		TenantID: tenantID,
		Kind:     req.Kind,
		Summary:  req.Summary,
		ActorID:  &actorID,
	})
}

func (s *Service) scoreLead(lead repository.Lead) scoring.Result {
	return scoring.Score(scoring.Input{
		LeadScore: lead.LeadScore,
		Email:     lead.Email,
		Company:   lead.Company,
		Source:    lead.Source,
		CreatedAt: lead.CreatedAt,
	})
}
