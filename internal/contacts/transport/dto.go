// Package transport defines request and response DTOs for the contacts module.
package transport

import (
	"crm_portal_backend/internal/contacts/repository"

	"github.com/google/uuid"
)

// ListContactsRequest carries the list page filters.
type ListContactsRequest struct {
	Stage    string `form:"stage" validate:"omitempty,oneof=sql opportunity customer"`
	Search   string `form:"search"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CreateContactRequest creates a new contact directly.
type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Company string `json:"company" validate:"omitempty,max=200"`
	Title   string `json:"title" validate:"omitempty,max=120"`
	Stage   string `json:"stage" validate:"omitempty,oneof=sql opportunity customer"`
}

// UpdateContactRequest carries a partial update. Only the fields present
// in the request are applied.
type UpdateContactRequest struct {
	Name    *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Email   *string    `json:"email" validate:"omitempty,email"`
	Phone   *string    `json:"phone" validate:"omitempty,max=32"`
	Company *string    `json:"company" validate:"omitempty,max=200"`
	Title   *string    `json:"title" validate:"omitempty,max=120"`
	Notes   *string    `json:"notes" validate:"omitempty,max=5000"`
	OwnerID *uuid.UUID `json:"ownerId"`
}

// ChangeStageRequest moves a contact to a new lifecycle stage.
type ChangeStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=sql opportunity customer"`
}

// AddActivityRequest appends a manual timeline entry.
type AddActivityRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=note call email meeting"`
	Summary string `json:"summary" validate:"required,min=1,max=2000"`
}

// ContactListResponse is the paginated list payload.
type ContactListResponse struct {
	Contacts []repository.Contact `json:"contacts"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

// ContactDetailResponse is the detail page payload.
type ContactDetailResponse struct {
	Contact    repository.Contact    `json:"contact"`
	Deals      []repository.Deal     `json:"deals"`
	Activities []repository.Activity `json:"activities"`
}
