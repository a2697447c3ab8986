package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotStatus is the availability state of a calendar slot. The set is closed;
// anything else is rejected at construction time.
type SlotStatus string

const (
	SlotStatusBusy        SlotStatus = "BUSY"
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING"
)

// ParseSlotStatus validates an incoming status string against the closed set.
func ParseSlotStatus(s string) (SlotStatus, error) {
	switch SlotStatus(s) {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending:
		return SlotStatus(s), nil
	default:
		return "", fmt.Errorf("unknown slot status %q", s)
	}
}

// Togglable reports whether an owner may set this status directly.
// SWAP_PENDING is only ever set by the negotiation engine.
func (s SlotStatus) Togglable() bool {
	return s == SlotStatusBusy || s == SlotStatusSwappable
}

// Slot is a user's calendar time interval. Ownership changes only as the side
// effect of an accepted swap.
type Slot struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   time.Time  `db:"end_time" json:"end_time"`
	Status    SlotStatus `db:"status" json:"status"`
	OwnerID   uuid.UUID  `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
