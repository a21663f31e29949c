package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskWebhookDeliver = "webhooks.deliver"

// WebhookDeliverPayload points at a pending delivery row. The worker
// loads the row, performs the HTTP request and records the outcome.
type WebhookDeliverPayload struct {
	DeliveryID string `json:"deliveryId"`
	TenantID   string `json:"tenantId"`
}

func NewWebhookDeliverTask(payload WebhookDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWebhookDeliver, data), nil
}

func ParseWebhookDeliverPayload(task *asynq.Task) (WebhookDeliverPayload, error) {
	var payload WebhookDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WebhookDeliverPayload{}, err
	}
	return payload, nil
}
