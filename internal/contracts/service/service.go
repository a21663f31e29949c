// Package service implements contract management business logic.
package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"crm_portal_backend/internal/adapters/storage"
	"crm_portal_backend/internal/contracts/repository"
	"crm_portal_backend/internal/contracts/transport"
	"crm_portal_backend/internal/events"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"
)

// placeholderPattern matches {{variable}} tokens in template bodies.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Service coordinates contract operations.
type Service struct {
	repo    repository.Repository
	storage storage.Service
	bucket  string
	bus     events.Bus
	log     *logger.Logger
}

// New creates a contracts service. The storage service may be nil when
// object storage is disabled; document endpoints then return an error.
func New(repo repository.Repository, store storage.Service, bucket string, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: store, bucket: bucket, bus: bus, log: log}
}

// List returns a page of contracts for the tenant.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListContractsRequest) (transport.ContractListResponse, error) {
	filters := repository.ListFilters{
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

	contracts, total, err := s.repo.List(ctx, tenantID, filters)
	if err != nil {
		return transport.ContractListResponse{}, err
	}

	return transport.ContractListResponse{
		Contracts: contracts,
		Total:     total,
		Page:      filters.Page,
		PageSize:  filters.PageSize,
	}, nil
}

// Get returns one contract with its documents.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (repository.Contract, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// Create records a new contract in draft status.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateContractRequest) (repository.Contract, error) {
	if req.TemplateID != nil {
		if _, err := s.repo.GetTemplate(ctx, tenantID, *req.TemplateID); err != nil {
			return repository.Contract{}, err
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	contract := repository.Contract{
		TenantID:   tenantID,
		ContactID:  req.ContactID,
		Title:      req.Title,
		Status:     repository.StatusDraft,
		ValueCents: req.ValueCents,
		Currency:   currency,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		TemplateID: req.TemplateID,
	}

	return s.repo.Create(ctx, contract)
}

// ChangeStatus moves a contract through its lifecycle. Signed contracts
// cannot be reopened.
func (s *Service) ChangeStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (repository.Contract, error) {
	current, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return repository.Contract{}, err
	}

	if current.Status == repository.StatusSigned && status != repository.StatusExpired {
		return repository.Contract{}, apperr.Conflict("signed contract can only expire")
	}
	if current.Status == status {
		return current, nil
	}

	return s.repo.UpdateStatus(ctx, tenantID, id, status)
}

// RequestDocumentUpload generates a presigned upload URL for a contract
// document.
func (s *Service) RequestDocumentUpload(ctx context.Context, tenantID, contractID uuid.UUID, req transport.UploadDocumentRequest) (transport.UploadDocumentResponse, error) {
	if s.storage == nil {
		return transport.UploadDocumentResponse{}, apperr.Internal("document storage is not configured")
	}

	if _, err := s.repo.GetByID(ctx, tenantID, contractID); err != nil {
		return transport.UploadDocumentResponse{}, err
	}

	folder := fmt.Sprintf("%s/%s", tenantID, contractID)
	url, err := s.storage.GenerateUploadURL(ctx, s.bucket, folder, req.FileName, req.ContentType, req.FileSize)
	if err != nil {
		return transport.UploadDocumentResponse{}, err
	}

	return transport.UploadDocumentResponse{Upload: *url}, nil
}

// ConfirmDocument records a completed upload and announces it on the bus.
func (s *Service) ConfirmDocument(ctx context.Context, tenantID, contractID uuid.UUID, req transport.ConfirmDocumentRequest) (repository.Document, error) {
	if _, err := s.repo.GetByID(ctx, tenantID, contractID); err != nil {
		return repository.Document{}, err
	}

	doc, err := s.repo.AddDocument(ctx, repository.Document{
		ContractID:  contractID,
		TenantID:    tenantID,
		FileName:    req.FileName,
		FileKey:     req.FileKey,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		return repository.Document{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.ContractDocumentUploaded{
			BaseEvent:  events.NewBaseEvent(),
			ContractID: contractID,
			TenantID:   tenantID,
			FileName:   doc.FileName,
			FileKey:    doc.FileKey,
			SizeBytes:  doc.SizeBytes,
		})
	}

	return doc, nil
}

// DocumentDownloadURL returns a presigned download URL for a stored document.
func (s *Service) DocumentDownloadURL(ctx context.Context, tenantID, docID uuid.UUID) (transport.DownloadDocumentResponse, error) {
	if s.storage == nil {
		return transport.DownloadDocumentResponse{}, apperr.Internal("document storage is not configured")
	}

	doc, err := s.repo.GetDocument(ctx, tenantID, docID)
	if err != nil {
		return transport.DownloadDocumentResponse{}, err
	}

	url, err := s.storage.GenerateDownloadURL(ctx, s.bucket, doc.FileKey)
	if err != nil {
		return transport.DownloadDocumentResponse{}, err
	}

	return transport.DownloadDocumentResponse{
		URL:       url.URL,
		ExpiresAt: url.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// ListTemplates returns the tenant's contract templates.
func (s *Service) ListTemplates(ctx context.Context, tenantID uuid.UUID) ([]repository.Template, error) {
	return s.repo.ListTemplates(ctx, tenantID)
}

// PreviewTemplate renders a template body with the supplied variables.
// Placeholders without a value are left as-is and reported in Missing.
func (s *Service) PreviewTemplate(ctx context.Context, tenantID, templateID uuid.UUID, variables map[string]string) (transport.TemplatePreviewResponse, error) {
	tpl, err := s.repo.GetTemplate(ctx, tenantID, templateID)
	if err != nil {
		return transport.TemplatePreviewResponse{}, err
	}

	rendered, missing := RenderTemplate(tpl.Body, variables)

	return transport.TemplatePreviewResponse{
		TemplateID: tpl.ID,
		Name:       tpl.Name,
		Rendered:   rendered,
		Missing:    missing,
	}, nil
}

// RenderTemplate substitutes {{name}} placeholders in body with values from
// variables. Unresolved placeholders are returned sorted and deduplicated.
func RenderTemplate(body string, variables map[string]string) (string, []string) {
	missingSet := make(map[string]struct{})

	rendered := placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := variables[name]; ok {
			return value
		}
		missingSet[name] = struct{}{}
		return match
	})

	if len(missingSet) == 0 {
		return rendered, nil
	}

	missing := make([]string, 0, len(missingSet))
	for name := range missingSet {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return rendered, missing
}
