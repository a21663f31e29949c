// Package transport defines request and response DTOs for the leads module.
package transport

import (
	"crm_portal_backend/internal/leads/repository"
	"crm_portal_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

// ListLeadsRequest carries the list page filters.
type ListLeadsRequest struct {
	Stage    string `form:"stage" validate:"omitempty,oneof=subscriber lead mql"`
	Source   string `form:"source"`
	Search   string `form:"search"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CreateLeadRequest creates a new lead.
type CreateLeadRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Company   string `json:"company" validate:"omitempty,max=200"`
	Source    string `json:"source" validate:"omitempty,max=64"`
	Stage     string `json:"stage" validate:"omitempty,oneof=subscriber lead mql"`
	LeadScore *int   `json:"leadScore" validate:"omitempty,min=0,max=100"`
}

// UpdateLeadRequest carries a partial update. Only the fields present
// in the request are applied.
type UpdateLeadRequest struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone" validate:"omitempty,max=32"`
	Company   *string    `json:"company" validate:"omitempty,max=200"`
	Source    *string    `json:"source" validate:"omitempty,max=64"`
	Notes     *string    `json:"notes" validate:"omitempty,max=5000"`
	LeadScore *int       `json:"leadScore" validate:"omitempty,min=0,max=100"`
	OwnerID   *uuid.UUID `json:"ownerId"`
}

// ChangeStageRequest moves a lead to a new lifecycle stage.
type ChangeStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=subscriber lead mql"`
}

// ConvertLeadRequest converts a lead into a contact.
type ConvertLeadRequest struct {
	// ContactStage is the lifecycle stage the new contact starts in.
	ContactStage string `json:"contactStage" validate:"omitempty,oneof=sql opportunity customer"`
}

// AddActivityRequest appends a manual timeline entry.
type AddActivityRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=note call email meeting"`
	Summary string `json:"summary" validate:"required,min=1,max=2000"`
}

// LeadListResponse is the paginated list payload.
type LeadListResponse struct {
	Leads    []repository.Lead `json:"leads"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// LeadDetailResponse is the detail page payload: the lead record, its
// score breakdown and the activity timeline.
type LeadDetailResponse struct {
	Lead       repository.Lead       `json:"lead"`
	Score      scoring.Result        `json:"score"`
	Activities []repository.Activity `json:"activities"`
}

// ConvertLeadResponse reports the contact created by conversion.
type ConvertLeadResponse struct {
	LeadID    uuid.UUID `json:"leadId"`
	ContactID uuid.UUID `json:"contactId"`
}
