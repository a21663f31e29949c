package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"crm_portal_backend/internal/contracts/repository"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/events"
	"crm_portal_backend/platform/logger"
)

func TestRenderTemplateSubstitutesVariables(t *testing.T) {
	body := "Agreement between {{company}} and {{ contact_name }} effective {{start_date}}."
	vars := map[string]string{
		"company":      "Acme BV",
		"contact_name": "Jane Smith",
		"start_date":   "2026-09-01",
	}

	rendered, missing := RenderTemplate(body, vars)

	want := "Agreement between Acme BV and Jane Smith effective 2026-09-01."
	if rendered != want {
		t.Fatalf("rendered = %q, want %q", rendered, want)
	}
	if missing != nil {
		t.Errorf("missing = %v, want nil", missing)
	}
}

func TestRenderTemplateReportsMissingSortedAndDeduplicated(t *testing.T) {
	body := "{{zeta}} {{alpha}} {{zeta}} {{known}}"

	rendered, missing := RenderTemplate(body, map[string]string{"known": "yes"})

	if rendered != "{{zeta}} {{alpha}} {{zeta}} yes" {
		t.Fatalf("rendered = %q", rendered)
	}
	if !reflect.DeepEqual(missing, []string{"alpha", "zeta"}) {
		t.Errorf("missing = %v, want [alpha zeta]", missing)
	}
}

func TestRenderTemplateLeavesPlainBodyUntouched(t *testing.T) {
	body := "No placeholders here, just braces { and }."

	rendered, missing := RenderTemplate(body, nil)

	if rendered != body {
		t.Errorf("rendered = %q, want unchanged body", rendered)
	}
	if missing != nil {
		t.Errorf("missing = %v, want nil", missing)
	}
}

func TestChangeStatusRejectsReopeningSignedContract(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	contract := repo.seed(repository.Contract{TenantID: tenantID, Title: "MSA", Status: repository.StatusSigned})

	svc := New(repo, nil, "contract-documents", events.NewInMemoryBus(logger.New("test")), logger.New("test"))

	_, err := svc.ChangeStatus(context.Background(), tenantID, contract.ID, repository.StatusDraft)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Expiring a signed contract is still allowed.
	updated, err := svc.ChangeStatus(context.Background(), tenantID, contract.ID, repository.StatusExpired)
	if err != nil {
		t.Fatalf("expire signed contract: %v", err)
	}
	if updated.Status != repository.StatusExpired {
		t.Errorf("status = %q, want expired", updated.Status)
	}
}

func TestChangeStatusSameStatusIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	contract := repo.seed(repository.Contract{TenantID: tenantID, Title: "NDA", Status: repository.StatusSent})

	svc := New(repo, nil, "contract-documents", events.NewInMemoryBus(logger.New("test")), logger.New("test"))

	updated, err := svc.ChangeStatus(context.Background(), tenantID, contract.ID, repository.StatusSent)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if updated.Status != repository.StatusSent {
		t.Errorf("status = %q, want sent", updated.Status)
	}
	if repo.statusUpdates != 0 {
		t.Errorf("statusUpdates = %d, want 0", repo.statusUpdates)
	}
}

// fakeRepo is a map-backed repository for service tests.
type fakeRepo struct {
	contracts     map[uuid.UUID]repository.Contract
	statusUpdates int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{contracts: make(map[uuid.UUID]repository.Contract)}
}

func (f *fakeRepo) seed(c repository.Contract) repository.Contract {
	c.ID = uuid.New()
	f.contracts[c.ID] = c
	return c
}

func (f *fakeRepo) List(_ context.Context, tenantID uuid.UUID, _ repository.ListFilters) ([]repository.Contract, int, error) {
	out := make([]repository.Contract, 0)
	for _, c := range f.contracts {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (repository.Contract, error) {
	c, ok := f.contracts[id]
	if !ok || c.TenantID != tenantID {
		return repository.Contract{}, apperr.NotFound("contract not found")
	}
	return c, nil
}

func (f *fakeRepo) Create(_ context.Context, c repository.Contract) (repository.Contract, error) {
	return f.seed(c), nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, tenantID, id uuid.UUID, status string) (repository.Contract, error) {
	c, ok := f.contracts[id]
	if !ok || c.TenantID != tenantID {
		return repository.Contract{}, apperr.NotFound("contract not found")
	}
	c.Status = status
	f.contracts[id] = c
	f.statusUpdates++
	return c, nil
}

func (f *fakeRepo) AddDocument(_ context.Context, doc repository.Document) (repository.Document, error) {
	doc.ID = uuid.New()
	return doc, nil
}

func (f *fakeRepo) GetDocument(_ context.Context, _, _ uuid.UUID) (repository.Document, error) {
	return repository.Document{}, apperr.NotFound("document not found")
}

func (f *fakeRepo) ListTemplates(_ context.Context, _ uuid.UUID) ([]repository.Template, error) {
	return nil, nil
}

func (f *fakeRepo) GetTemplate(_ context.Context, _, _ uuid.UUID) (repository.Template, error) {
	return repository.Template{}, apperr.NotFound("template not found")
}

var _ repository.Repository = (*fakeRepo)(nil)
