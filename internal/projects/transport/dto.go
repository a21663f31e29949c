// Package transport defines request and response shapes for the jobs
// HTTP API.
package transport

import (
	"github.com/google/uuid"

	"crm_portal_backend/internal/projects/repository"
)

// ListJobsRequest captures query parameters for the jobs list page.
type ListJobsRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=planned active on_hold completed cancelled"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// CreateJobRequest is the payload for creating a job.
type CreateJobRequest struct {
	ContactID   uuid.UUID  `json:"contactId" binding:"required"`
	ContractID  *uuid.UUID `json:"contractId" binding:"omitempty"`
	Name        string     `json:"name" binding:"required,min=2,max=200"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	StartDate   *string    `json:"startDate" binding:"omitempty"`
	DueDate     *string    `json:"dueDate" binding:"omitempty"`
}

// ChangeStatusRequest moves a job to a new status.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=planned active on_hold completed cancelled"`
}

// JobListResponse is the paginated jobs list payload.
type JobListResponse struct {
	Jobs     []repository.Job `json:"jobs"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}
