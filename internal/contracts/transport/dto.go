// Package transport defines request and response shapes for the contracts
// HTTP API.
package transport

import (
	"github.com/google/uuid"

	"crm_portal_backend/internal/adapters/storage"
	"crm_portal_backend/internal/contracts/repository"
)

// ListContractsRequest captures query parameters for the contract list page.
type ListContractsRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft sent signed expired"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// CreateContractRequest is the payload for creating a contract.
type CreateContractRequest struct {
	ContactID  uuid.UUID  `json:"contactId" binding:"required"`
	Title      string     `json:"title" binding:"required,min=2,max=200"`
	ValueCents int64      `json:"valueCents" binding:"omitempty,min=0"`
	Currency   string     `json:"currency" binding:"omitempty,len=3"`
	StartDate  string     `json:"startDate" binding:"required"`
	EndDate    *string    `json:"endDate" binding:"omitempty"`
	TemplateID *uuid.UUID `json:"templateId" binding:"omitempty"`
}

// ChangeStatusRequest moves a contract to a new status.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent signed expired"`
}

// UploadDocumentRequest asks for a presigned upload URL for a contract document.
type UploadDocumentRequest struct {
	FileName    string `json:"fileName" binding:"required,min=1,max=255"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1"`
}

// ConfirmDocumentRequest records a completed upload against the contract.
type ConfirmDocumentRequest struct {
	FileName    string `json:"fileName" binding:"required,min=1,max=255"`
	FileKey     string `json:"fileKey" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	SizeBytes   int64  `json:"sizeBytes" binding:"required,min=1"`
}

// PreviewTemplateRequest supplies placeholder values for template rendering.
type PreviewTemplateRequest struct {
	Variables map[string]string `json:"variables"`
}

// ContractListResponse is the paginated contract list payload.
type ContractListResponse struct {
	Contracts []repository.Contract `json:"contracts"`
	Total     int                   `json:"total"`
	Page      int                   `json:"page"`
	PageSize  int                   `json:"pageSize"`
}

// UploadDocumentResponse carries the presigned upload target.
type UploadDocumentResponse struct {
	Upload storage.PresignedURL `json:"upload"`
}

// DownloadDocumentResponse carries a presigned download URL.
type DownloadDocumentResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// TemplatePreviewResponse is the rendered template body.
type TemplatePreviewResponse struct {
	TemplateID uuid.UUID `json:"templateId"`
	Name       string    `json:"name"`
	Rendered   string    `json:"rendered"`
	Missing    []string  `json:"missing,omitempty"`
}
