package service

import (
	"context"
	"time"

	coreEntity "slotswap-api/core/entity"
	"slotswap-api/core/logger"
	"slotswap-api/core/params"
	"slotswap-api/core/queue"
	"slotswap-api/modules/notification/dto"
	"slotswap-api/modules/notification/entity"
	"slotswap-api/modules/notification/repository"
	"slotswap-api/modules/notification/worker"

	"github.com/google/uuid"
)

type NotificationService struct {
	repo  repository.NotificationRepositoryInterface
	queue queue.Enqueuer
}

func NewNotificationService(repo repository.NotificationRepositoryInterface, q queue.Enqueuer) *NotificationService {
	return &NotificationService{repo: repo, queue: q}
}

// Create persists the notification and queues realtime delivery. Delivery is
// best-effort; a queue failure is logged and the notification still lands in
// the recipient's inbox.
func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	notif := &entity.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    entity.JSONB(req.Data),
		IsRead:  false,
		BaseEntity: coreEntity.BaseEntity{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return err
	}

	if s.queue != nil {
		task, err := worker.NewDeliverTask(&worker.DeliverPayload{
			UserID:  req.UserID,
			Type:    req.Type,
			Title:   req.Title,
			Message: req.Message,
			Data:    req.Data,
		})
		if err != nil {
			logger.Error("NotificationService:Create:NewDeliverTask:Error:", err)
			return nil
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Error("NotificationService:Create:Enqueue:Error:", err)
		}
	}

	return nil
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.GetByUserID(ctx, userID, queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error {
	return s.repo.MarkAsRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
