package queue

import (
	"github.com/hibiken/asynq"

	"slotswap-api/core/config"
	"slotswap-api/core/logger"
)

// Enqueuer is the narrow producer-side interface services depend on.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) error
}

type Queue struct {
	client *asynq.Client
}

func New(cfg config.RedisConfig) *Queue {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Queue{client: client}
}

func (q *Queue) Enqueue(task *asynq.Task, opts ...asynq.Option) error {
	info, err := q.client.Enqueue(task, opts...)
	if err != nil {
		logger.Error("Queue:Enqueue:Error:", "type", task.Type(), "error", err)
		return err
	}
	logger.Debug("Queue:Enqueue:Success", "type", task.Type(), "task_id", info.ID, "queue", info.Queue)
	return nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

// NewServer builds the worker-side asynq server sharing the Redis connection
// settings with the producer.
func NewServer(redisCfg config.RedisConfig, queueCfg config.QueueConfig) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: queueCfg.Concurrency,
		},
	)
}
