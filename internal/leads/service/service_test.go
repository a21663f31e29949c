package service

import (
	"context"
	"testing"
	"time"

	"crm_portal_backend/internal/events"
	"crm_portal_backend/internal/leads/repository"
	"crm_portal_backend/internal/leads/transport"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	leads      map[uuid.UUID]repository.Lead
	activities []repository.Activity
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeRepo) List(_ context.Context, tenantID uuid.UUID, _ repository.ListFilters) ([]repository.Lead, int, error) {
	out := make([]repository.Lead, 0)
	for _, l := range f.leads {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeRepo) Create(_ context.Context, lead repository.Lead) (repository.Lead, error) {
	lead.ID = uuid.New()
	lead.CreatedAt = time.Now().Format(time.RFC3339)
	lead.UpdatedAt = lead.CreatedAt
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) Update(_ context.Context, tenantID, id uuid.UUID, fields repository.UpdateFields) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if fields.Name != nil {
		lead.Name = *fields.Name
	}
	if fields.Email != nil {
		lead.Email = *fields.Email
	}
	if fields.Notes != nil {
		lead.Notes = *fields.Notes
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) UpdateStage(_ context.Context, tenantID, id uuid.UUID, stage string) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	lead.Stage = stage
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) MarkConverted(_ context.Context, tenantID, id, contactID uuid.UUID) error {
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return apperr.NotFound("lead not found")
	}
	lead.ConvertedContactID = &contactID
	f.leads[id] = lead
	return nil
}

func (f *fakeRepo) ListActivities(_ context.Context, _, leadID uuid.UUID) ([]repository.Activity, error) {
	out := make([]repository.Activity, 0)
	for _, a := range f.activities {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateActivity(_ context.Context, activity repository.Activity) (repository.Activity, error) {
	activity.ID = uuid.New()
	activity.CreatedAt = time.Now().Format(time.RFC3339)
	f.activities = append(f.activities, activity)
	return activity, nil
}

type fakeContacts struct {
	created []ContactParams
}

func (f *fakeContacts) CreateFromLead(_ context.Context, _ uuid.UUID, params ContactParams) (uuid.UUID, error) {
	f.created = append(f.created, params)
	return uuid.New(), nil
}

func newTestService(repo repository.Repository, contacts ContactCreator) *Service {
	log := logger.New("test")
	return New(repo, contacts, events.NewInMemoryBus(log), log)
}

func TestConvertMarksLeadAndCreatesContact(t *testing.T) {
	repo := newFakeRepo()
	contacts := &fakeContacts{}
	svc := newTestService(repo, contacts)

	tenantID := uuid.New()
	lead, err := repo.Create(context.Background(), repository.Lead{
		TenantID: tenantID,
		Name:     "Jordan Baker",
		Email:    "jordan@acme.test",
		Company:  "Acme BV",
		Stage:    repository.StageMQL,
	})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	result, err := svc.Convert(context.Background(), tenantID, lead.ID, uuid.New(), transport.ConvertLeadRequest{})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	if len(contacts.created) != 1 {
		t.Fatalf("expected 1 contact created, got %d", len(contacts.created))
	}
	if contacts.created[0].Stage != "sql" {
		t.Errorf("default contact stage = %q, want sql", contacts.created[0].Stage)
	}
	if contacts.created[0].Name != "Jordan Baker" {
		t.Errorf("contact name = %q", contacts.created[0].Name)
	}

	stored := repo.leads[lead.ID]
	if stored.ConvertedContactID == nil || *stored.ConvertedContactID != result.ContactID {
		t.Fatalf("lead not linked to contact %s", result.ContactID)
	}
}

func TestConvertTwiceIsConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeContacts{})

	tenantID := uuid.New()
	lead, _ := repo.Create(context.Background(), repository.Lead{TenantID: tenantID, Name: "X", Stage: repository.StageLead})

	if _, err := svc.Convert(context.Background(), tenantID, lead.ID, uuid.New(), transport.ConvertLeadRequest{}); err != nil {
		t.Fatalf("first convert: %v", err)
	}
	_, err := svc.Convert(context.Background(), tenantID, lead.ID, uuid.New(), transport.ConvertLeadRequest{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second convert error = %v, want conflict", err)
	}
}

func TestChangeStageRecordsActivity(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeContacts{})

	tenantID := uuid.New()
	lead, _ := repo.Create(context.Background(), repository.Lead{TenantID: tenantID, Name: "X", Stage: repository.StageSubscriber})

	updated, err := svc.ChangeStage(context.Background(), tenantID, lead.ID, uuid.New(), repository.StageMQL)
	if err != nil {
		t.Fatalf("ChangeStage returned error: %v", err)
	}
	if updated.Stage != repository.StageMQL {
		t.Fatalf("stage = %q, want mql", updated.Stage)
	}

	if len(repo.activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(repo.activities))
	}
	if repo.activities[0].Kind != "stage_change" {
		t.Errorf("activity kind = %q", repo.activities[0].Kind)
	}
}

func TestChangeStageNoopWhenUnchanged(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeContacts{})

	tenantID := uuid.New()
	lead, _ := repo.Create(context.Background(), repository.Lead{TenantID: tenantID, Name: "X", Stage: repository.StageLead})

	if _, err := svc.ChangeStage(context.Background(), tenantID, lead.ID, uuid.New(), repository.StageLead); err != nil {
		t.Fatalf("ChangeStage returned error: %v", err)
	}
	if len(repo.activities) != 0 {
		t.Fatalf("expected no activity for unchanged stage, got %d", len(repo.activities))
	}
}

func TestChangeStageOnConvertedLeadIsConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeContacts{})

	tenantID := uuid.New()
	lead, _ := repo.Create(context.Background(), repository.Lead{TenantID: tenantID, Name: "X", Stage: repository.StageMQL})
	contactID := uuid.New()
	if err := repo.MarkConverted(context.Background(), tenantID, lead.ID, contactID); err != nil {
		t.Fatalf("seed conversion: %v", err)
	}

	_, err := svc.ChangeStage(context.Background(), tenantID, lead.ID, uuid.New(), repository.StageLead)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("error = %v, want conflict", err)
	}
}
