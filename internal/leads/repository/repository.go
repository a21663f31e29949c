// Package repository provides PostgreSQL persistence for leads.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// Lifecycle stages a lead can be in before conversion.
const (
	StageSubscriber = "subscriber"
	StageLead       = "lead"
	StageMQL        = "mql"
)

// Lead is the persistence model for a lead record.
type Lead struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenantId"`
	Name               string     `json:"name"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Company            string     `json:"company,omitempty"`
	Source             string     `json:"source,omitempty"`
	Stage              string     `json:"stage"`
	LeadScore          *int       `json:"leadScore,omitempty"`
	OwnerID            *uuid.UUID `json:"ownerId,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	ConvertedContactID *uuid.UUID `json:"convertedContactId,omitempty"`
	CreatedAt          string     `json:"createdAt"`
	UpdatedAt          string     `json:"updatedAt"`
}

// Activity is a timeline entry on a lead (note, call, email, stage change).
type Activity struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Kind      string    `json:"kind"`
	Summary   string    `json:"summary"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// ListFilters narrows the lead list query.
type ListFilters struct {
	Stage    string
	Source   string
	Search   string
	Page     int
	PageSize int
}

// UpdateFields carries the whitelisted editable attributes. Nil fields
// are left untouched.
type UpdateFields struct {
	Name      *string
	Email     *string
	Phone     *string
	Company   *string
	Source    *string
	Notes     *string
	LeadScore *int
	OwnerID   *uuid.UUID
}

// Repository defines persistence operations for leads.
type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Lead, int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Lead, error)
	Create(ctx context.Context, lead Lead) (Lead, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, fields UpdateFields) (Lead, error)
	UpdateStage(ctx context.Context, tenantID, id uuid.UUID, stage string) (Lead, error)
	MarkConverted(ctx context.Context, tenantID, id, contactID uuid.UUID) error
	ListActivities(ctx context.Context, tenantID, leadID uuid.UUID) ([]Activity, error)
	CreateActivity(ctx context.Context, activity Activity) (Activity, error)
}
