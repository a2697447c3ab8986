package service

import (
	"context"
	"fmt"

	"slotswap-api/core/constants"
	"slotswap-api/core/errors"
	"slotswap-api/core/logger"
	"slotswap-api/core/utils"
	authentity "slotswap-api/modules/auth/entity"
	notifdto "slotswap-api/modules/notification/dto"
	slotdto "slotswap-api/modules/slot/dto"
	slotentity "slotswap-api/modules/slot/entity"
	slotrepo "slotswap-api/modules/slot/repository"
	"slotswap-api/modules/swap/dto"
	"slotswap-api/modules/swap/entity"
	"slotswap-api/modules/swap/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserDirectory resolves user references for response expansion. The auth
// repository satisfies it.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*authentity.User, error)
}

// Notifier delivers a notification to a user. Failures never fail the
// negotiation; the engine only logs them.
type Notifier interface {
	Create(ctx context.Context, req *notifdto.CreateNotificationRequest) error
}

// NegotiationService is the swap engine. Every mutation runs the full
// read-validate-write sequence inside one transaction with the slot rows and
// the request row locked, so the pending-swap invariant (a SWAP_PENDING slot
// is referenced by exactly one PENDING request) holds at every commit point.
type NegotiationService struct {
	swaps    repository.SwapRepositoryInterface
	slots    slotrepo.SlotRepositoryInterface
	users    UserDirectory
	notifier Notifier
}

type NegotiationServiceInterface interface {
	ProposeSwap(ctx context.Context, requesterID uuid.UUID, req *dto.ProposeSwapRequest) (*dto.SwapRequestResponse, *errors.AppError)
	RespondToSwap(ctx context.Context, requestID uuid.UUID, responderID uuid.UUID, accept bool) (*dto.SwapRequestResponse, *errors.AppError)
	CancelSwap(ctx context.Context, requestID uuid.UUID, requesterID uuid.UUID) *errors.AppError
	GetSwappableSlots(ctx context.Context, userID uuid.UUID) (*dto.SwappableSlotsResponse, *errors.AppError)
	GetMyRequests(ctx context.Context, userID uuid.UUID, direction string) (*dto.SwapRequestListResponse, *errors.AppError)
}

func NewNegotiationService(swaps repository.SwapRepositoryInterface, slots slotrepo.SlotRepositoryInterface, users UserDirectory, notifier Notifier) NegotiationServiceInterface {
	return &NegotiationService{
		swaps:    swaps,
		slots:    slots,
		users:    users,
		notifier: notifier,
	}
}

// lockSlotPair locks both slot rows in a deterministic order so two
// overlapping negotiations touching the same pair cannot deadlock. Either
// result may be nil when the row is gone.
func (s *NegotiationService) lockSlotPair(ctx context.Context, tx *sqlx.Tx, firstID, secondID uuid.UUID) (*slotentity.Slot, *slotentity.Slot, error) {
	a, b := firstID, secondID
	swapped := false
	if b.String() < a.String() {
		a, b = b, a
		swapped = true
	}

	slotA, err := s.slots.GetByIDForUpdateTx(ctx, tx, a)
	if err != nil {
		return nil, nil, err
	}
	slotB, err := s.slots.GetByIDForUpdateTx(ctx, tx, b)
	if err != nil {
		return nil, nil, err
	}

	if swapped {
		return slotB, slotA, nil
	}
	return slotA, slotB, nil
}

// ProposeSwap validates both slots, marks them SWAP_PENDING and creates the
// PENDING request, all in one transaction. Any unmet precondition aborts with
// no observable mutation.
func (s *NegotiationService) ProposeSwap(ctx context.Context, requesterID uuid.UUID, req *dto.ProposeSwapRequest) (*dto.SwapRequestResponse, *errors.AppError) {
	if req.OfferedSlotID == uuid.Nil || req.TargetSlotID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "both slot IDs are required", nil)
	}
	if req.OfferedSlotID == req.TargetSlotID {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "cannot swap a slot with itself", nil)
	}

	var (
		created *entity.SwapRequest
		offered *slotentity.Slot
		target  *slotentity.Slot
		appErr  *errors.AppError
	)

	err := s.swaps.Transact(ctx, func(tx *sqlx.Tx) error {
		var txErr error
		offered, target, txErr = s.lockSlotPair(ctx, tx, req.OfferedSlotID, req.TargetSlotID)
		if txErr != nil {
			return txErr
		}

		switch {
		case offered == nil:
			appErr = errors.NewAppError(errors.ErrInvalidInput, "offered slot not found", nil)
		case offered.OwnerID != requesterID:
			appErr = errors.NewAppError(errors.ErrInvalidInput, "you do not own the offered slot", nil)
		case offered.Status != slotentity.SlotStatusSwappable:
			appErr = errors.NewAppError(errors.ErrInvalidInput, "your slot must be swappable", nil)
		case target == nil:
			appErr = errors.NewAppError(errors.ErrInvalidInput, "selected slot is not available", nil)
		case target.OwnerID == requesterID:
			appErr = errors.NewAppError(errors.ErrInvalidInput, "cannot swap with your own slot", nil)
		case target.Status != slotentity.SlotStatusSwappable:
			appErr = errors.NewAppError(errors.ErrInvalidInput, "selected slot is not available", nil)
		}
		if appErr != nil {
			return appErr
		}

		existing, txErr := s.swaps.FindPendingBySlotPairTx(ctx, tx, offered.ID, target.ID)
		if txErr != nil {
			return txErr
		}
		if existing != nil {
			appErr = errors.NewAppError(errors.ErrInvalidInput, "a swap request already exists for these slots", nil)
			return appErr
		}

		if txErr = s.slots.UpdateStatusTx(ctx, tx, offered.ID, slotentity.SlotStatusSwapPending); txErr != nil {
			return txErr
		}
		if txErr = s.slots.UpdateStatusTx(ctx, tx, target.ID, slotentity.SlotStatusSwapPending); txErr != nil {
			return txErr
		}

		reference, txErr := utils.GenerateReferenceCode()
		if txErr != nil {
			return txErr
		}

		created, txErr = s.swaps.CreateTx(ctx, tx, &entity.SwapRequest{
			Reference:       reference,
			RequesterID:     requesterID,
			RequesterSlotID: offered.ID,
			RecipientID:     target.OwnerID,
			RecipientSlotID: target.ID,
			Status:          entity.SwapStatusPending,
		})
		return txErr
	})
	if err != nil {
		if appErr != nil {
			return nil, appErr
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create swap request", err)
	}

	offered.Status = slotentity.SlotStatusSwapPending
	target.Status = slotentity.SlotStatusSwapPending

	s.notify(ctx, created.RecipientID, constants.NotificationTypeSwapRequest,
		"New swap request",
		fmt.Sprintf("Someone wants to swap for your slot %q", target.Title),
		created)

	logger.Info("NegotiationService:ProposeSwap:Success",
		"request_id", created.ID, "requester_id", requesterID, "recipient_id", created.RecipientID)

	return s.expand(ctx, created, offered, target), nil
}

// RespondToSwap resolves a pending request. Accept exchanges the owners and
// parks both slots as BUSY; reject returns both to SWAPPABLE. Ownership and
// status always change in the same transaction as the request status.
func (s *NegotiationService) RespondToSwap(ctx context.Context, requestID uuid.UUID, responderID uuid.UUID, accept bool) (*dto.SwapRequestResponse, *errors.AppError) {
	var (
		request *entity.SwapRequest
		reqSlot *slotentity.Slot
		recSlot *slotentity.Slot
		appErr  *errors.AppError
	)

	err := s.swaps.Transact(ctx, func(tx *sqlx.Tx) error {
		var txErr error
		request, txErr = s.swaps.GetByIDForUpdateTx(ctx, tx, requestID)
		if txErr != nil {
			return txErr
		}
		if request == nil {
			appErr = errors.NewAppError(errors.ErrNotFound, "swap request not found", nil)
			return appErr
		}
		if request.RecipientID != responderID {
			appErr = errors.NewAppError(errors.ErrForbidden, "not authorized to respond to this swap request", nil)
			return appErr
		}
		if request.Status != entity.SwapStatusPending {
			appErr = errors.NewAppError(errors.ErrConflict, "this swap request has already been processed", nil)
			return appErr
		}

		reqSlot, recSlot, txErr = s.lockSlotPair(ctx, tx, request.RequesterSlotID, request.RecipientSlotID)
		if txErr != nil {
			return txErr
		}
		if reqSlot == nil || recSlot == nil {
			appErr = errors.NewAppError(errors.ErrNotFound, "one or both slots no longer exist", nil)
			return appErr
		}

		if accept {
			requesterOwner := reqSlot.OwnerID
			if txErr = s.slots.SetOwnerStatusTx(ctx, tx, reqSlot.ID, recSlot.OwnerID, slotentity.SlotStatusBusy); txErr != nil {
				return txErr
			}
			if txErr = s.slots.SetOwnerStatusTx(ctx, tx, recSlot.ID, requesterOwner, slotentity.SlotStatusBusy); txErr != nil {
				return txErr
			}
			reqSlot.OwnerID, recSlot.OwnerID = recSlot.OwnerID, requesterOwner
			reqSlot.Status, recSlot.Status = slotentity.SlotStatusBusy, slotentity.SlotStatusBusy
			request.Status = entity.SwapStatusAccepted
		} else {
			if txErr = s.slots.UpdateStatusTx(ctx, tx, reqSlot.ID, slotentity.SlotStatusSwappable); txErr != nil {
				return txErr
			}
			if txErr = s.slots.UpdateStatusTx(ctx, tx, recSlot.ID, slotentity.SlotStatusSwappable); txErr != nil {
				return txErr
			}
			reqSlot.Status, recSlot.Status = slotentity.SlotStatusSwappable, slotentity.SlotStatusSwappable
			request.Status = entity.SwapStatusRejected
		}

		return s.swaps.UpdateStatusTx(ctx, tx, request.ID, request.Status)
	})
	if err != nil {
		if appErr != nil {
			return nil, appErr
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to respond to swap request", err)
	}

	outcome := "rejected"
	if accept {
		outcome = "accepted"
	}
	s.notify(ctx, request.RequesterID, constants.NotificationTypeSwapResponse,
		"Swap request "+outcome,
		fmt.Sprintf("Your swap request %s was %s", request.Reference, outcome),
		request)

	logger.Info("NegotiationService:RespondToSwap:Success",
		"request_id", request.ID, "responder_id", responderID, "outcome", request.Status)

	return s.expand(ctx, request, reqSlot, recSlot), nil
}

// CancelSwap withdraws a pending request: both slots go back to SWAPPABLE and
// the request row is deleted. Only the original proposer may cancel; the
// recipient declines via RespondToSwap instead.
func (s *NegotiationService) CancelSwap(ctx context.Context, requestID uuid.UUID, requesterID uuid.UUID) *errors.AppError {
	var appErr *errors.AppError

	err := s.swaps.Transact(ctx, func(tx *sqlx.Tx) error {
		request, txErr := s.swaps.GetByIDForUpdateTx(ctx, tx, requestID)
		if txErr != nil {
			return txErr
		}
		if request == nil {
			appErr = errors.NewAppError(errors.ErrNotFound, "swap request not found", nil)
			return appErr
		}
		if request.RequesterID != requesterID {
			appErr = errors.NewAppError(errors.ErrForbidden, "you can only cancel your own swap requests", nil)
			return appErr
		}
		if request.Status != entity.SwapStatusPending {
			appErr = errors.NewAppError(errors.ErrConflict, "only pending requests can be cancelled", nil)
			return appErr
		}

		reqSlot, recSlot, txErr := s.lockSlotPair(ctx, tx, request.RequesterSlotID, request.RecipientSlotID)
		if txErr != nil {
			return txErr
		}
		if reqSlot != nil {
			if txErr = s.slots.UpdateStatusTx(ctx, tx, reqSlot.ID, slotentity.SlotStatusSwappable); txErr != nil {
				return txErr
			}
		}
		if recSlot != nil {
			if txErr = s.slots.UpdateStatusTx(ctx, tx, recSlot.ID, slotentity.SlotStatusSwappable); txErr != nil {
				return txErr
			}
		}

		return s.swaps.DeleteTx(ctx, tx, request.ID)
	})
	if err != nil {
		if appErr != nil {
			return appErr
		}
		return errors.NewAppError(errors.ErrInternalServer, "failed to cancel swap request", err)
	}

	logger.Info("NegotiationService:CancelSwap:Success", "request_id", requestID, "requester_id", requesterID)
	return nil
}

// GetSwappableSlots is the marketplace feed: every SWAPPABLE slot owned by
// someone else, expanded with owner details.
func (s *NegotiationService) GetSwappableSlots(ctx context.Context, userID uuid.UUID) (*dto.SwappableSlotsResponse, *errors.AppError) {
	slots, err := s.slots.GetSwappableExcluding(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list swappable slots", err)
	}

	owners := map[uuid.UUID]dto.SwapUser{}
	items := make([]dto.SwappableSlot, 0, len(slots))
	for i := range slots {
		owner, ok := owners[slots[i].OwnerID]
		if !ok {
			owner = s.lookupUser(ctx, slots[i].OwnerID)
			owners[slots[i].OwnerID] = owner
		}
		items = append(items, dto.ToSwappableSlot(&slots[i], owner))
	}

	return &dto.SwappableSlotsResponse{Slots: items, Count: len(items)}, nil
}

func (s *NegotiationService) GetMyRequests(ctx context.Context, userID uuid.UUID, direction string) (*dto.SwapRequestListResponse, *errors.AppError) {
	dir := repository.DirectionAll
	switch direction {
	case string(repository.DirectionIncoming):
		dir = repository.DirectionIncoming
	case string(repository.DirectionOutgoing):
		dir = repository.DirectionOutgoing
	case "", string(repository.DirectionAll):
	default:
		return nil, errors.NewAppError(errors.ErrInvalidInput, "type must be incoming or outgoing", nil)
	}

	requests, err := s.swaps.GetByParticipant(ctx, userID, dir)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list swap requests", err)
	}

	items := make([]dto.SwapRequestResponse, 0, len(requests))
	for i := range requests {
		req := &requests[i]
		reqSlot, _ := s.slots.GetByID(ctx, req.RequesterSlotID)
		recSlot, _ := s.slots.GetByID(ctx, req.RecipientSlotID)
		items = append(items, *s.expand(ctx, req, reqSlot, recSlot))
	}

	return &dto.SwapRequestListResponse{Requests: items, Count: len(items)}, nil
}

// notify is fire-and-forget: a delivery failure is logged, never surfaced.
func (s *NegotiationService) notify(ctx context.Context, userID uuid.UUID, notifType, title, message string, request *entity.SwapRequest) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Create(ctx, &notifdto.CreateNotificationRequest{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
		Data: map[string]interface{}{
			"request_id": request.ID.String(),
			"reference":  request.Reference,
			"status":     string(request.Status),
		},
	})
	if err != nil {
		logger.Error("NegotiationService:Notify:Error:", "user_id", userID, "type", notifType, "error", err)
	}
}

func (s *NegotiationService) lookupUser(ctx context.Context, id uuid.UUID) dto.SwapUser {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil || user == nil {
		return dto.SwapUser{ID: id}
	}
	return dto.SwapUser{ID: user.ID, Name: user.Name, Email: user.Email, Handle: user.Handle}
}

// expand builds the response shape with user and slot details populated.
func (s *NegotiationService) expand(ctx context.Context, req *entity.SwapRequest, reqSlot, recSlot *slotentity.Slot) *dto.SwapRequestResponse {
	resp := &dto.SwapRequestResponse{
		ID:        req.ID,
		Reference: req.Reference,
		Status:    req.Status,
		Requester: s.lookupUser(ctx, req.RequesterID),
		Recipient: s.lookupUser(ctx, req.RecipientID),
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
	if reqSlot != nil {
		resp.RequesterSlot = slotdto.ToSlotResponse(reqSlot)
	}
	if recSlot != nil {
		resp.RecipientSlot = slotdto.ToSlotResponse(recSlot)
	}
	return resp
}
