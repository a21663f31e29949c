package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"crm_portal_backend/internal/compliance/repository"
	"crm_portal_backend/internal/events"
	"crm_portal_backend/platform/logger"
)

// AuditSubscriber appends audit trail rows for domain events published
// on the bus. Rows are written from event handlers, off the request
// path; a failed append is logged and dropped rather than failing the
// originating operation.
type AuditSubscriber struct {
	repo repository.Repository
	log  *logger.Logger
}

// NewAuditSubscriber creates the subscriber.
func NewAuditSubscriber(repo repository.Repository, log *logger.Logger) *AuditSubscriber {
	return &AuditSubscriber{repo: repo, log: log}
}

// Register subscribes to every audited event type.
func (s *AuditSubscriber) Register(bus events.Bus) {
	names := []string{
		events.LeadCreated{}.EventName(),
		events.LeadStageChanged{}.EventName(),
		events.LeadConverted{}.EventName(),
		events.InvoiceIssued{}.EventName(),
		events.InvoicePaid{}.EventName(),
		events.ContractDocumentUploaded{}.EventName(),
		events.WebhookDeliveryFailed{}.EventName(),
	}
	for _, name := range names {
		bus.Subscribe(name, events.HandlerFunc(s.handle))
	}
}

func (s *AuditSubscriber) handle(ctx context.Context, event events.Event) error {
	record, ok := s.toAuditEvent(event)
	if !ok {
		return nil
	}

	if err := s.repo.AppendAudit(ctx, record); err != nil {
		s.log.Error("append audit event", "action", record.Action, "error", err)
		return err
	}
	return nil
}

func (s *AuditSubscriber) toAuditEvent(event events.Event) (repository.AuditEvent, bool) {
	switch e := event.(type) {
	case events.LeadCreated:
		return auditEvent(e.TenantID, nil, "system", e.EventName(), "lead", &e.LeadID, map[string]string{
			"name": e.Name, "source": e.Source,
		}), true
	case events.LeadStageChanged:
		return auditEvent(e.TenantID, &e.ChangedBy, "user", e.EventName(), "lead", &e.LeadID, map[string]string{
			"oldStage": e.OldStage, "newStage": e.NewStage,
		}), true
	case events.LeadConverted:
		return auditEvent(e.TenantID, &e.ConvertedBy, "user", e.EventName(), "lead", &e.LeadID, map[string]string{
			"contactId": e.ContactID.String(),
		}), true
	case events.InvoiceIssued:
		return auditEvent(e.TenantID, nil, "system", e.EventName(), "invoice", &e.InvoiceID, map[string]string{
			"invoiceNumber": e.InvoiceNumber, "totalCents": fmt.Sprintf("%d", e.TotalCents),
		}), true
	case events.InvoicePaid:
		return auditEvent(e.TenantID, nil, "system", e.EventName(), "invoice", &e.InvoiceID, map[string]string{
			"invoiceNumber": e.InvoiceNumber,
		}), true
	case events.ContractDocumentUploaded:
		return auditEvent(e.TenantID, nil, "system", e.EventName(), "contract", &e.ContractID, map[string]string{
			"fileName": e.FileName,
		}), true
	case events.WebhookDeliveryFailed:
		return auditEvent(e.TenantID, nil, "system", e.EventName(), "webhook_endpoint", &e.EndpointID, map[string]string{
			"deliveryId": e.DeliveryID.String(), "statusCode": fmt.Sprintf("%d", e.StatusCode),
		}), true
	default:
		return repository.AuditEvent{}, false
	}
}

func auditEvent(tenantID uuid.UUID, actorID *uuid.UUID, actorLabel, action, entityType string, entityID *uuid.UUID, metadata map[string]string) repository.AuditEvent {
	encoded, err := json.Marshal(metadata)
	if err != nil {
		encoded = []byte("{}")
	}
	return repository.AuditEvent{
		TenantID:   tenantID,
		ActorID:    actorID,
		ActorLabel: actorLabel,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   string(encoded),
	}
}
