package dto

import (
	"time"

	"slotswap-api/modules/slot/entity"

	"github.com/google/uuid"
)

type CreateSlotRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status,omitempty"` // BUSY or SWAPPABLE, defaults to BUSY
}

type UpdateSlotRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type ToggleStatusRequest struct {
	Status string `json:"status"`
}

type SlotResponse struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Status    entity.SlotStatus `json:"status"`
	OwnerID   uuid.UUID         `json:"owner_id"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
	Count int            `json:"count"`
}

func ToSlotResponse(s *entity.Slot) *SlotResponse {
	return &SlotResponse{
		ID:        s.ID,
		Title:     s.Title,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Status:    s.Status,
		OwnerID:   s.OwnerID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func ToSlotListResponse(slots []entity.Slot) *SlotListResponse {
	items := make([]SlotResponse, 0, len(slots))
	for i := range slots {
		items = append(items, *ToSlotResponse(&slots[i]))
	}
	return &SlotListResponse{Slots: items, Count: len(items)}
}
