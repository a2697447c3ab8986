package dto

import (
	"time"

	slotdto "slotswap-api/modules/slot/dto"
	slotentity "slotswap-api/modules/slot/entity"
	"slotswap-api/modules/swap/entity"

	"github.com/google/uuid"
)

type ProposeSwapRequest struct {
	OfferedSlotID uuid.UUID `json:"offered_slot_id"`
	TargetSlotID  uuid.UUID `json:"target_slot_id"`
}

type RespondSwapRequest struct {
	Accept bool `json:"accept"`
}

// SwapUser is the expanded user reference carried in responses.
type SwapUser struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Handle string    `json:"handle,omitempty"`
}

type SwapRequestResponse struct {
	ID            uuid.UUID             `json:"id"`
	Reference     string                `json:"reference"`
	Status        entity.SwapStatus     `json:"status"`
	Requester     SwapUser              `json:"requester"`
	Recipient     SwapUser              `json:"recipient"`
	RequesterSlot *slotdto.SlotResponse `json:"requester_slot,omitempty"`
	RecipientSlot *slotdto.SlotResponse `json:"recipient_slot,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type SwapRequestListResponse struct {
	Requests []SwapRequestResponse `json:"requests"`
	Count    int                   `json:"count"`
}

// SwappableSlot is a marketplace entry: someone else's slot offered for swap.
type SwappableSlot struct {
	slotdto.SlotResponse
	Owner SwapUser `json:"owner"`
}

type SwappableSlotsResponse struct {
	Slots []SwappableSlot `json:"slots"`
	Count int             `json:"count"`
}

func ToSwappableSlot(s *slotentity.Slot, owner SwapUser) SwappableSlot {
	return SwappableSlot{
		SlotResponse: *slotdto.ToSlotResponse(s),
		Owner:        owner,
	}
}
