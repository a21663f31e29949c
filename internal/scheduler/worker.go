package scheduler

import (
	"context"
	"fmt"

	"crm_portal_backend/internal/events"
	"crm_portal_backend/internal/integrations/dispatch"
	"crm_portal_backend/internal/integrations/repository"
	"crm_portal_backend/platform/config"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	repo       repository.Repository
	dispatcher *dispatch.Dispatcher
	bus        events.Bus
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, webhookCfg config.WebhookConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		repo:       repository.New(pool),
		dispatcher: dispatch.New(webhookCfg),
		bus:        bus,
		log:        log,
	}

	mux.HandleFunc(TaskWebhookDeliver, w.handleWebhookDeliver)

	return w, nil
}

// handleWebhookDeliver performs one delivery attempt and records the
// outcome. The task never errors back to asynq for endpoint failures:
// the row is marked failed and redelivery stays a manual operator
// action.
func (w *Worker) handleWebhookDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWebhookDeliverPayload(task)
	if err != nil {
		return err
	}

	deliveryID, err := uuid.Parse(payload.DeliveryID)
	if err != nil {
		return err
	}
	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	delivery, err := w.repo.GetDelivery(ctx, tenantID, deliveryID)
	if err != nil {
		return err
	}
	if delivery.Status != repository.DeliveryPending {
		return nil
	}

	endpoint, err := w.repo.GetEndpoint(ctx, tenantID, delivery.EndpointID)
	if err != nil {
		return err
	}
	if !endpoint.IsActive {
		return w.repo.FinishDelivery(ctx, deliveryID, repository.DeliveryFailed, 0, "endpoint disabled")
	}

	statusCode, dispatchErr := w.dispatcher.Dispatch(ctx, endpoint, delivery)
	if dispatchErr == nil {
		w.log.WebhookDelivery(endpoint.ID.String(), delivery.EventType, statusCode, true)
		return w.repo.FinishDelivery(ctx, deliveryID, repository.DeliveryDelivered, statusCode, "")
	}

	if err := w.repo.FinishDelivery(ctx, deliveryID, repository.DeliveryFailed, statusCode, dispatchErr.Error()); err != nil {
		return err
	}

	if w.bus != nil {
		w.bus.Publish(ctx, events.WebhookDeliveryFailed{
			BaseEvent:  events.NewBaseEvent(),
			EndpointID: endpoint.ID,
			DeliveryID: deliveryID,
			TenantID:   tenantID,
			EventType:  delivery.EventType,
			StatusCode: statusCode,
		})
	}

	w.log.WebhookDelivery(endpoint.ID.String(), delivery.EventType, statusCode, false)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
