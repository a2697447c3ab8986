package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SwapStatus is the lifecycle state of a swap request. A cancelled request is
// deleted, not transitioned, so cancellation has no status of its own.
type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "PENDING"
	SwapStatusAccepted SwapStatus = "ACCEPTED"
	SwapStatusRejected SwapStatus = "REJECTED"
)

func ParseSwapStatus(s string) (SwapStatus, error) {
	switch SwapStatus(s) {
	case SwapStatusPending, SwapStatusAccepted, SwapStatusRejected:
		return SwapStatus(s), nil
	default:
		return "", fmt.Errorf("unknown swap status %q", s)
	}
}

// Terminal reports whether the request can no longer change.
func (s SwapStatus) Terminal() bool {
	return s == SwapStatusAccepted || s == SwapStatusRejected
}

// SwapRequest is a proposed one-for-one exchange of two slots owned by
// different users. Immutable after creation except for Status.
type SwapRequest struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Reference       string     `db:"reference" json:"reference"`
	RequesterID     uuid.UUID  `db:"requester_id" json:"requester_id"`
	RequesterSlotID uuid.UUID  `db:"requester_slot_id" json:"requester_slot_id"`
	RecipientID     uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	RecipientSlotID uuid.UUID  `db:"recipient_slot_id" json:"recipient_slot_id"`
	Status          SwapStatus `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
