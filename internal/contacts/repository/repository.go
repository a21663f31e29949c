// Package repository provides PostgreSQL persistence for contacts.
package repository

import (
	"context"

	"github.com/google/uuid"
)

// Lifecycle stages a contact can be in.
const (
	StageSQL         = "sql"
	StageOpportunity = "opportunity"
	StageCustomer    = "customer"
)

// Contact is the persistence model for a contact record.
type Contact struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenantId"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Company      string     `json:"company,omitempty"`
	Title        string     `json:"title,omitempty"`
	Stage        string     `json:"stage"`
	OwnerID      *uuid.UUID `json:"ownerId,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	SourceLeadID *uuid.UUID `json:"sourceLeadId,omitempty"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
}

// Deal is an opportunity attached to a contact.
type Deal struct {
	ID          uuid.UUID `json:"id"`
	ContactID   uuid.UUID `json:"contactId"`
	TenantID    uuid.UUID `json:"tenantId"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	CloseDate   *string   `json:"closeDate,omitempty"`
	CreatedAt   string    `json:"createdAt"`
}

// Activity is a timeline entry on a contact.
type Activity struct {
	ID        uuid.UUID  `json:"id"`
	ContactID uuid.UUID  `json:"contactId"`
	TenantID  uuid.UUID  `json:"tenantId"`
	Kind      string     `json:"kind"`
	Summary   string     `json:"summary"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
	CreatedAt string     `json:"createdAt"`
}

// ListFilters narrows the contact list query.
type ListFilters struct {
	Stage    string
	Search   string
	Page     int
	PageSize int
}

// UpdateFields carries the whitelisted editable attributes.
type UpdateFields struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Title   *string
	Notes   *string
	OwnerID *uuid.UUID
}

// Repository defines persistence operations for contacts.
type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID, filters ListFilters) ([]Contact, int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (Contact, error)
	Create(ctx context.Context, contact Contact) (Contact, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, fields UpdateFields) (Contact, error)
	UpdateStage(ctx context.Context, tenantID, id uuid.UUID, stage string) (Contact, error)
	ListDeals(ctx context.Context, tenantID, contactID uuid.UUID) ([]Deal, error)
	ListActivities(ctx context.Context, tenantID, contactID uuid.UUID) ([]Activity, error)
	CreateActivity(ctx context.Context, activity Activity) (Activity, error)
}
