package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"slotswap-api/core/cache"
	"slotswap-api/core/constants"
	"slotswap-api/core/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeDeliver is the asynq task type for pushing a notification to the
// recipient's live channel.
const TypeDeliver = "notification:deliver"

// DeliverPayload is what the realtime gateway receives on user:<id>.
type DeliverPayload struct {
	UserID  uuid.UUID              `json:"user_id"`
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

func NewDeliverTask(payload *DeliverPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeliver, body), nil
}

// DeliveryWorker publishes queued notifications to per-user Redis channels.
type DeliveryWorker struct {
	cache cache.Cache
}

func NewDeliveryWorker(c cache.Cache) *DeliveryWorker {
	return &DeliveryWorker{cache: c}
}

func (w *DeliveryWorker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeDeliver, w.HandleDeliver)
}

func (w *DeliveryWorker) HandleDeliver(ctx context.Context, task *asynq.Task) error {
	var payload DeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// Malformed payload will never succeed; drop it.
		logger.Error("DeliveryWorker:HandleDeliver:Unmarshal:Error:", err)
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	channel := constants.RedisKeyUserChannel + payload.UserID.String()
	if err := w.cache.Publish(ctx, channel, task.Payload()); err != nil {
		logger.Error("DeliveryWorker:HandleDeliver:Publish:Error:", "channel", channel, "error", err)
		return err
	}

	logger.Debug("DeliveryWorker:HandleDeliver:Published", "channel", channel, "type", payload.Type)
	return nil
}
