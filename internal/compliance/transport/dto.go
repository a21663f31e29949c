// Package transport defines request and response shapes for the
// compliance HTTP API.
package transport

import (
	"crm_portal_backend/internal/compliance/repository"
)

// ListAuditRequest captures query parameters for the audit event list.
// Dates are inclusive-from, exclusive-to, in YYYY-MM-DD.
type ListAuditRequest struct {
	ActorID  string `form:"actorId" binding:"omitempty,uuid"`
	Action   string `form:"action" binding:"omitempty,max=100"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// CreateSSORequest registers an identity provider connection.
type CreateSSORequest struct {
	Provider        string `json:"provider" binding:"required,oneof=oidc saml"`
	DisplayName     string `json:"displayName" binding:"required,min=2,max=100"`
	IssuerURL       string `json:"issuerUrl" binding:"required,url"`
	ClientID        string `json:"clientId" binding:"required,min=1,max=255"`
	CertFingerprint string `json:"certFingerprint" binding:"omitempty,max=255"`
}

// UpdateSSORequest patches an SSO connection. Absent fields are left
// unchanged.
type UpdateSSORequest struct {
	DisplayName     *string `json:"displayName" binding:"omitempty,min=2,max=100"`
	IssuerURL       *string `json:"issuerUrl" binding:"omitempty,url"`
	ClientID        *string `json:"clientId" binding:"omitempty,min=1,max=255"`
	CertFingerprint *string `json:"certFingerprint" binding:"omitempty,max=255"`
	IsActive        *bool   `json:"isActive" binding:"omitempty"`
}

// AuditListResponse is the paginated audit event payload.
type AuditListResponse struct {
	Events   []repository.AuditEvent `json:"events"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
}
