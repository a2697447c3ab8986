package service

import (
	"context"
	"strings"

	"slotswap-api/core/constants"
	"slotswap-api/core/errors"
	"slotswap-api/core/logger"
	"slotswap-api/modules/slot/dto"
	"slotswap-api/modules/slot/entity"
	"slotswap-api/modules/slot/repository"

	"github.com/google/uuid"
)

// SlotService owns the direct slot lifecycle: create, list, edit, toggle,
// delete. Swap-driven transitions live in the swap module's engine.
type SlotService struct {
	repo repository.SlotRepositoryInterface
}

type SlotServiceInterface interface {
	CreateSlot(ctx context.Context, ownerID uuid.UUID, req *dto.CreateSlotRequest) (*dto.SlotResponse, *errors.AppError)
	GetMySlots(ctx context.Context, ownerID uuid.UUID) (*dto.SlotListResponse, *errors.AppError)
	UpdateSlot(ctx context.Context, slotID uuid.UUID, ownerID uuid.UUID, req *dto.UpdateSlotRequest) (*dto.SlotResponse, *errors.AppError)
	ToggleAvailability(ctx context.Context, slotID uuid.UUID, ownerID uuid.UUID, newStatus string) (*dto.SlotResponse, *errors.AppError)
	DeleteSlot(ctx context.Context, slotID uuid.UUID, ownerID uuid.UUID) *errors.AppError
}

func NewSlotService(repo repository.SlotRepositoryInterface) SlotServiceInterface {
	return &SlotService{repo: repo}
}

func validateSlotTimes(req *dto.CreateSlotRequest) *errors.AppError {
	if strings.TrimSpace(req.Title) == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "title is required", nil)
	}
	if len(req.Title) > constants.SlotTitleMaxLength {
		return errors.NewAppError(errors.ErrInvalidInput, "title cannot be more than 100 characters", nil)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return errors.NewAppError(errors.ErrInvalidInput, "start and end time are required", nil)
	}
	if !req.EndTime.After(req.StartTime) {
		return errors.NewAppError(errors.ErrInvalidInput, "end time must be after start time", nil)
	}
	return nil
}

func (s *SlotService) CreateSlot(ctx context.Context, ownerID uuid.UUID, req *dto.CreateSlotRequest) (*dto.SlotResponse, *errors.AppError) {
	if appErr := validateSlotTimes(req); appErr != nil {
		return nil, appErr
	}

	status := entity.SlotStatusBusy
	if req.Status != "" {
		parsed, err := entity.ParseSlotStatus(req.Status)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid slot status", err)
		}
		if !parsed.Togglable() {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "a slot cannot be created in SWAP_PENDING state", nil)
		}
		status = parsed
	}

	slot := &entity.Slot{
		Title:     strings.TrimSpace(req.Title),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    status,
		OwnerID:   ownerID,
	}

	created, err := s.repo.Create(ctx, slot)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create slot", err)
	}

	return dto.ToSlotResponse(created), nil
}

func (s *SlotService) GetMySlots(ctx context.Context, ownerID uuid.UUID) (*dto.SlotListResponse, *errors.AppError) {
	slots, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list slots", err)
	}
	return dto.ToSlotListResponse(slots), nil
}

// UpdateSlot rewrites title and times. Refused while a swap is pending: the
// pending request references the slot's current shape.
func (s *SlotService) UpdateSlot(ctx context.Context, slotID uuid.UUID, ownerID uuid.UUID, req *dto.UpdateSlotRequest) (*dto.SlotResponse, *errors.AppError) {
	createShape := &dto.CreateSlotRequest{Title: req.Title, StartTime: req.StartTime, EndTime: req.EndTime}
	if appErr := validateSlotTimes(createShape); appErr != nil {
		return nil, appErr
	}

	slot, appErr := s.getOwnedSlot(ctx, slotID, ownerID)
	if appErr != nil {
		return nil, appErr
	}
	if slot.Status == entity.SlotStatusSwapPending {
		return nil, errors.NewAppError(errors.ErrConflict, "slot cannot be edited while a swap is pending", nil)
	}

	slot.Title = strings.TrimSpace(req.Title)
	slot.StartTime = req.StartTime
	slot.EndTime = req.EndTime

	ok, err := s.repo.UpdateDetailsGuarded(ctx, slot, slot.Status)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update slot", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrConflict, "slot was modified concurrently", nil)
	}

	updated, err := s.repo.GetByID(ctx, slotID)
	if err != nil || updated == nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to reload slot", err)
	}
	return dto.ToSlotResponse(updated), nil
}

// ToggleAvailability flips BUSY<->SWAPPABLE. Never valid while SWAP_PENDING:
// flipping availability mid-negotiation would orphan the pending request.
func (s *SlotService) ToggleAvailability(ctx context.Context, slotID uuid.UUID, ownerID uuid.UUID, newStatus string) (*dto.SlotResponse, *errors.AppError) {
	target, err := entity.ParseSlotStatus(newStatus)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid slot status", err)
	}
	if !target.Togglable() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "status can only be set to BUSY or SWAPPABLE", nil)
	}

	slot, appErr := s.getOwnedSlot(ctx, slotID, ownerID)
	if appErr != nil {
		return nil, appErr
	}
	if slot.Status == entity.SlotStatusSwapPending {
		return nil, errors.NewAppError(errors.ErrConflict, "slot is locked by a pending swap request", nil)
	}
	if slot.Status == target {
		return dto.ToSlotResponse(slot), nil
	}

	ok, err := s.repo.UpdateStatusGuarded(ctx, slotID, slot.Status, target)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to update slot status", err)
	}
	if !ok {
		// The row no longer holds the status we read; someone else moved it.
		return nil, errors.NewAppError(errors.ErrConflict, "slot status changed concurrently", nil)
	}

	slot.Status = target
	return dto.ToSlotResponse(slot), nil
}

func (s *SlotService) DeleteSlot(ctx context.Context, slotID uuid.UUID, ownerID uuid.UUID) *errors.AppError {
	slot, appErr := s.getOwnedSlot(ctx, slotID, ownerID)
	if appErr != nil {
		return appErr
	}
	if slot.Status == entity.SlotStatusSwapPending {
		return errors.NewAppError(errors.ErrConflict, "slot cannot be deleted while a swap is pending", nil)
	}

	ok, err := s.repo.DeleteGuarded(ctx, slotID, slot.Status)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to delete slot", err)
	}
	if !ok {
		return errors.NewAppError(errors.ErrConflict, "slot was modified concurrently", nil)
	}

	logger.Info("SlotService:DeleteSlot:Success", "slot_id", slotID, "owner_id", ownerID)
	return nil
}

func (s *SlotService) getOwnedSlot(ctx context.Context, slotID uuid.UUID, ownerID uuid.UUID) (*entity.Slot, *errors.AppError) {
	slot, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get slot", err)
	}
	if slot == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "slot not found", nil)
	}
	if slot.OwnerID != ownerID {
		return nil, errors.NewAppError(errors.ErrForbidden, "you do not own this slot", nil)
	}
	return slot, nil
}
