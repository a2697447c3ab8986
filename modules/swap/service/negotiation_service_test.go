package service

import (
	"context"
	"testing"
	"time"

	"slotswap-api/core/errors"
	authentity "slotswap-api/modules/auth/entity"
	notifdto "slotswap-api/modules/notification/dto"
	slotentity "slotswap-api/modules/slot/entity"
	"slotswap-api/modules/swap/dto"
	"slotswap-api/modules/swap/entity"
	"slotswap-api/modules/swap/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSlotRepo keeps slots in a map. The Tx methods ignore the tx argument;
// Transact on the fake swap repo passes nil through.
type fakeSlotRepo struct {
	slots map[uuid.UUID]*slotentity.Slot
}

func newFakeSlotRepo(slots ...*slotentity.Slot) *fakeSlotRepo {
	r := &fakeSlotRepo{slots: map[uuid.UUID]*slotentity.Slot{}}
	for _, s := range slots {
		r.slots[s.ID] = s
	}
	return r
}

func (r *fakeSlotRepo) Create(_ context.Context, slot *slotentity.Slot) (*slotentity.Slot, error) {
	r.slots[slot.ID] = slot
	return slot, nil
}

func (r *fakeSlotRepo) GetByID(_ context.Context, id uuid.UUID) (*slotentity.Slot, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSlotRepo) GetByOwner(_ context.Context, ownerID uuid.UUID) ([]slotentity.Slot, error) {
	var out []slotentity.Slot
	for _, s := range r.slots {
		if s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) GetSwappableExcluding(_ context.Context, ownerID uuid.UUID) ([]slotentity.Slot, error) {
	var out []slotentity.Slot
	for _, s := range r.slots {
		if s.Status == slotentity.SlotStatusSwappable && s.OwnerID != ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) UpdateDetailsGuarded(_ context.Context, slot *slotentity.Slot, expected slotentity.SlotStatus) (bool, error) {
	s, ok := r.slots[slot.ID]
	if !ok || s.Status != expected {
		return false, nil
	}
	s.Title, s.StartTime, s.EndTime = slot.Title, slot.StartTime, slot.EndTime
	return true, nil
}

func (r *fakeSlotRepo) UpdateStatusGuarded(_ context.Context, id uuid.UUID, from, to slotentity.SlotStatus) (bool, error) {
	s, ok := r.slots[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (r *fakeSlotRepo) DeleteGuarded(_ context.Context, id uuid.UUID, expected slotentity.SlotStatus) (bool, error) {
	s, ok := r.slots[id]
	if !ok || s.Status != expected {
		return false, nil
	}
	delete(r.slots, id)
	return true, nil
}

func (r *fakeSlotRepo) GetByIDForUpdateTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID) (*slotentity.Slot, error) {
	s, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSlotRepo) UpdateStatusTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID, status slotentity.SlotStatus) error {
	if s, ok := r.slots[id]; ok {
		s.Status = status
	}
	return nil
}

func (r *fakeSlotRepo) SetOwnerStatusTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID, ownerID uuid.UUID, status slotentity.SlotStatus) error {
	if s, ok := r.slots[id]; ok {
		s.OwnerID = ownerID
		s.Status = status
	}
	return nil
}

type fakeSwapRepo struct {
	requests map[uuid.UUID]*entity.SwapRequest
}

func newFakeSwapRepo(requests ...*entity.SwapRequest) *fakeSwapRepo {
	r := &fakeSwapRepo{requests: map[uuid.UUID]*entity.SwapRequest{}}
	for _, req := range requests {
		r.requests[req.ID] = req
	}
	return r
}

func (r *fakeSwapRepo) Transact(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (r *fakeSwapRepo) CreateTx(_ context.Context, _ *sqlx.Tx, req *entity.SwapRequest) (*entity.SwapRequest, error) {
	cp := *req
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.requests[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeSwapRepo) GetByIDForUpdateTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID) (*entity.SwapRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *fakeSwapRepo) UpdateStatusTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID, status entity.SwapStatus) error {
	if req, ok := r.requests[id]; ok {
		req.Status = status
	}
	return nil
}

func (r *fakeSwapRepo) DeleteTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID) error {
	delete(r.requests, id)
	return nil
}

func (r *fakeSwapRepo) FindPendingBySlotPairTx(_ context.Context, _ *sqlx.Tx, slotA, slotB uuid.UUID) (*entity.SwapRequest, error) {
	for _, req := range r.requests {
		if req.Status != entity.SwapStatusPending {
			continue
		}
		if (req.RequesterSlotID == slotA && req.RecipientSlotID == slotB) ||
			(req.RequesterSlotID == slotB && req.RecipientSlotID == slotA) {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSwapRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.SwapRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *fakeSwapRepo) GetByParticipant(_ context.Context, userID uuid.UUID, dir repository.Direction) ([]entity.SwapRequest, error) {
	var out []entity.SwapRequest
	for _, req := range r.requests {
		incoming := req.RecipientID == userID
		outgoing := req.RequesterID == userID
		switch dir {
		case repository.DirectionIncoming:
			if incoming {
				out = append(out, *req)
			}
		case repository.DirectionOutgoing:
			if outgoing {
				out = append(out, *req)
			}
		default:
			if incoming || outgoing {
				out = append(out, *req)
			}
		}
	}
	return out, nil
}

type fakeUserDirectory struct {
	users map[uuid.UUID]*authentity.User
}

func (d *fakeUserDirectory) GetUserByID(_ context.Context, id uuid.UUID) (*authentity.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

type fakeNotifier struct {
	sent []*notifdto.CreateNotificationRequest
}

func (n *fakeNotifier) Create(_ context.Context, req *notifdto.CreateNotificationRequest) error {
	n.sent = append(n.sent, req)
	return nil
}

type fixture struct {
	svc      NegotiationServiceInterface
	slots    *fakeSlotRepo
	swaps    *fakeSwapRepo
	notifier *fakeNotifier

	alice uuid.UUID
	bob   uuid.UUID
	carol uuid.UUID
}

func newSlot(owner uuid.UUID, title string, status slotentity.SlotStatus) *slotentity.Slot {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	return &slotentity.Slot{
		ID:        uuid.New(),
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    status,
		OwnerID:   owner,
	}
}

func newFixture(slots ...*slotentity.Slot) *fixture {
	f := &fixture{
		alice: uuid.New(),
		bob:   uuid.New(),
		carol: uuid.New(),
	}
	f.slots = newFakeSlotRepo(slots...)
	f.swaps = newFakeSwapRepo()
	f.notifier = &fakeNotifier{}

	users := &fakeUserDirectory{users: map[uuid.UUID]*authentity.User{
		f.alice: {ID: f.alice, Name: "Alice", Email: "alice@example.com", Handle: "alice"},
		f.bob:   {ID: f.bob, Name: "Bob", Email: "bob@example.com", Handle: "bob"},
		f.carol: {ID: f.carol, Name: "Carol", Email: "carol@example.com", Handle: "carol"},
	}}

	f.svc = NewNegotiationService(f.swaps, f.slots, users, f.notifier)
	return f
}

func (f *fixture) propose(t *testing.T, requester uuid.UUID, offered, target uuid.UUID) *dto.SwapRequestResponse {
	t.Helper()
	resp, appErr := f.svc.ProposeSwap(context.Background(), requester, &dto.ProposeSwapRequest{
		OfferedSlotID: offered,
		TargetSlotID:  target,
	})
	require.Nil(t, appErr)
	require.NotNil(t, resp)
	return resp
}

func TestProposeSwap(t *testing.T) {
	t.Run("marks both slots pending and creates the request", func(t *testing.T) {
		offered := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
		target := newSlot(uuid.Nil, "Gym", slotentity.SlotStatusSwappable)
		f := newFixture(offered, target)
		offered.OwnerID = f.alice
		target.OwnerID = f.bob

		resp := f.propose(t, f.alice, offered.ID, target.ID)

		assert.Equal(t, entity.SwapStatusPending, resp.Status)
		assert.NotEmpty(t, resp.Reference)
		assert.Equal(t, f.alice, resp.Requester.ID)
		assert.Equal(t, f.bob, resp.Recipient.ID)
		require.NotNil(t, resp.RequesterSlot)
		require.NotNil(t, resp.RecipientSlot)
		assert.Equal(t, slotentity.SlotStatusSwapPending, resp.RequesterSlot.Status)
		assert.Equal(t, slotentity.SlotStatusSwapPending, resp.RecipientSlot.Status)

		assert.Equal(t, slotentity.SlotStatusSwapPending, f.slots.slots[offered.ID].Status)
		assert.Equal(t, slotentity.SlotStatusSwapPending, f.slots.slots[target.ID].Status)

		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, f.bob, f.notifier.sent[0].UserID)
	})

	t.Run("rejects an offered slot the requester does not own", func(t *testing.T) {
		offered := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
		target := newSlot(uuid.Nil, "Gym", slotentity.SlotStatusSwappable)
		f := newFixture(offered, target)
		offered.OwnerID = f.carol
		target.OwnerID = f.bob

		_, appErr := f.svc.ProposeSwap(context.Background(), f.alice, &dto.ProposeSwapRequest{
			OfferedSlotID: offered.ID,
			TargetSlotID:  target.ID,
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
		assert.Equal(t, slotentity.SlotStatusSwappable, f.slots.slots[target.ID].Status)
	})

	t.Run("rejects when either slot is not swappable", func(t *testing.T) {
		offered := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusBusy)
		target := newSlot(uuid.Nil, "Gym", slotentity.SlotStatusSwappable)
		f := newFixture(offered, target)
		offered.OwnerID = f.alice
		target.OwnerID = f.bob

		_, appErr := f.svc.ProposeSwap(context.Background(), f.alice, &dto.ProposeSwapRequest{
			OfferedSlotID: offered.ID,
			TargetSlotID:  target.ID,
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("rejects swapping with yourself", func(t *testing.T) {
		offered := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
		target := newSlot(uuid.Nil, "Gym", slotentity.SlotStatusSwappable)
		f := newFixture(offered, target)
		offered.OwnerID = f.alice
		target.OwnerID = f.alice

		_, appErr := f.svc.ProposeSwap(context.Background(), f.alice, &dto.ProposeSwapRequest{
			OfferedSlotID: offered.ID,
			TargetSlotID:  target.ID,
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("rejects the same slot on both sides", func(t *testing.T) {
		offered := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
		f := newFixture(offered)
		offered.OwnerID = f.alice

		_, appErr := f.svc.ProposeSwap(context.Background(), f.alice, &dto.ProposeSwapRequest{
			OfferedSlotID: offered.ID,
			TargetSlotID:  offered.ID,
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("rejects a duplicate pending pair in the reverse ordering", func(t *testing.T) {
		aliceSlot := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
		bobSlot := newSlot(uuid.Nil, "Gym", slotentity.SlotStatusSwappable)
		f := newFixture(aliceSlot, bobSlot)
		aliceSlot.OwnerID = f.alice
		bobSlot.OwnerID = f.bob

		f.propose(t, f.alice, aliceSlot.ID, bobSlot.ID)

		// Force both slots back to SWAPPABLE so only the duplicate check can
		// trip, then propose the mirror-image request as Bob.
		f.slots.slots[aliceSlot.ID].Status = slotentity.SlotStatusSwappable
		f.slots.slots[bobSlot.ID].Status = slotentity.SlotStatusSwappable

		_, appErr := f.svc.ProposeSwap(context.Background(), f.bob, &dto.ProposeSwapRequest{
			OfferedSlotID: bobSlot.ID,
			TargetSlotID:  aliceSlot.ID,
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})

	t.Run("rejects a missing target slot", func(t *testing.T) {
		offered := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
		f := newFixture(offered)
		offered.OwnerID = f.alice

		_, appErr := f.svc.ProposeSwap(context.Background(), f.alice, &dto.ProposeSwapRequest{
			OfferedSlotID: offered.ID,
			TargetSlotID:  uuid.New(),
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})
}

func TestRespondToSwap(t *testing.T) {
	setup := func(t *testing.T) (*fixture, *slotentity.Slot, *slotentity.Slot, uuid.UUID) {
		t.Helper()
		aliceSlot := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
		bobSlot := newSlot(uuid.Nil, "Gym", slotentity.SlotStatusSwappable)
		f := newFixture(aliceSlot, bobSlot)
		aliceSlot.OwnerID = f.alice
		bobSlot.OwnerID = f.bob
		resp := f.propose(t, f.alice, aliceSlot.ID, bobSlot.ID)
		f.notifier.sent = nil
		return f, aliceSlot, bobSlot, resp.ID
	}

	t.Run("accept exchanges owners and parks both slots busy", func(t *testing.T) {
		f, aliceSlot, bobSlot, requestID := setup(t)

		resp, appErr := f.svc.RespondToSwap(context.Background(), requestID, f.bob, true)
		require.Nil(t, appErr)
		assert.Equal(t, entity.SwapStatusAccepted, resp.Status)

		assert.Equal(t, f.bob, f.slots.slots[aliceSlot.ID].OwnerID)
		assert.Equal(t, f.alice, f.slots.slots[bobSlot.ID].OwnerID)
		assert.Equal(t, slotentity.SlotStatusBusy, f.slots.slots[aliceSlot.ID].Status)
		assert.Equal(t, slotentity.SlotStatusBusy, f.slots.slots[bobSlot.ID].Status)

		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, f.alice, f.notifier.sent[0].UserID)
	})

	t.Run("reject restores both slots and keeps owners", func(t *testing.T) {
		f, aliceSlot, bobSlot, requestID := setup(t)

		resp, appErr := f.svc.RespondToSwap(context.Background(), requestID, f.bob, false)
		require.Nil(t, appErr)
		assert.Equal(t, entity.SwapStatusRejected, resp.Status)

		assert.Equal(t, f.alice, f.slots.slots[aliceSlot.ID].OwnerID)
		assert.Equal(t, f.bob, f.slots.slots[bobSlot.ID].OwnerID)
		assert.Equal(t, slotentity.SlotStatusSwappable, f.slots.slots[aliceSlot.ID].Status)
		assert.Equal(t, slotentity.SlotStatusSwappable, f.slots.slots[bobSlot.ID].Status)
	})

	t.Run("only the recipient may respond", func(t *testing.T) {
		f, aliceSlot, bobSlot, requestID := setup(t)

		_, appErr := f.svc.RespondToSwap(context.Background(), requestID, f.carol, true)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrForbidden, appErr.Code)

		// Requester cannot accept their own proposal either.
		_, appErr = f.svc.RespondToSwap(context.Background(), requestID, f.alice, true)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrForbidden, appErr.Code)

		assert.Equal(t, slotentity.SlotStatusSwapPending, f.slots.slots[aliceSlot.ID].Status)
		assert.Equal(t, slotentity.SlotStatusSwapPending, f.slots.slots[bobSlot.ID].Status)
	})

	t.Run("responding twice conflicts", func(t *testing.T) {
		f, _, _, requestID := setup(t)

		_, appErr := f.svc.RespondToSwap(context.Background(), requestID, f.bob, true)
		require.Nil(t, appErr)

		_, appErr = f.svc.RespondToSwap(context.Background(), requestID, f.bob, false)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrConflict, appErr.Code)
	})

	t.Run("unknown request is not found", func(t *testing.T) {
		f, _, _, _ := setup(t)

		_, appErr := f.svc.RespondToSwap(context.Background(), uuid.New(), f.bob, true)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrNotFound, appErr.Code)
	})
}

func TestCancelSwap(t *testing.T) {
	setup := func(t *testing.T) (*fixture, *slotentity.Slot, *slotentity.Slot, uuid.UUID) {
		t.Helper()
		aliceSlot := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
		bobSlot := newSlot(uuid.Nil, "Gym", slotentity.SlotStatusSwappable)
		f := newFixture(aliceSlot, bobSlot)
		aliceSlot.OwnerID = f.alice
		bobSlot.OwnerID = f.bob
		resp := f.propose(t, f.alice, aliceSlot.ID, bobSlot.ID)
		f.notifier.sent = nil
		return f, aliceSlot, bobSlot, resp.ID
	}

	t.Run("requester cancel restores both slots and deletes the request", func(t *testing.T) {
		f, aliceSlot, bobSlot, requestID := setup(t)

		appErr := f.svc.CancelSwap(context.Background(), requestID, f.alice)
		require.Nil(t, appErr)

		assert.Equal(t, slotentity.SlotStatusSwappable, f.slots.slots[aliceSlot.ID].Status)
		assert.Equal(t, slotentity.SlotStatusSwappable, f.slots.slots[bobSlot.ID].Status)
		assert.Empty(t, f.swaps.requests)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("recipient cannot cancel", func(t *testing.T) {
		f, _, _, requestID := setup(t)

		appErr := f.svc.CancelSwap(context.Background(), requestID, f.bob)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrForbidden, appErr.Code)
		assert.Len(t, f.swaps.requests, 1)
	})

	t.Run("resolved requests cannot be cancelled", func(t *testing.T) {
		f, _, _, requestID := setup(t)

		_, appErr := f.svc.RespondToSwap(context.Background(), requestID, f.bob, true)
		require.Nil(t, appErr)

		appErr = f.svc.CancelSwap(context.Background(), requestID, f.alice)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrConflict, appErr.Code)
	})

	t.Run("unknown request is not found", func(t *testing.T) {
		f, _, _, _ := setup(t)

		appErr := f.svc.CancelSwap(context.Background(), uuid.New(), f.alice)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrNotFound, appErr.Code)
	})
}

func TestGetSwappableSlots(t *testing.T) {
	mine := newSlot(uuid.Nil, "Mine", slotentity.SlotStatusSwappable)
	theirs := newSlot(uuid.Nil, "Theirs", slotentity.SlotStatusSwappable)
	busy := newSlot(uuid.Nil, "Busy", slotentity.SlotStatusBusy)
	f := newFixture(mine, theirs, busy)
	mine.OwnerID = f.alice
	theirs.OwnerID = f.bob
	busy.OwnerID = f.bob

	resp, appErr := f.svc.GetSwappableSlots(context.Background(), f.alice)
	require.Nil(t, appErr)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, theirs.ID, resp.Slots[0].ID)
	assert.Equal(t, "Bob", resp.Slots[0].Owner.Name)
	assert.Equal(t, "bob", resp.Slots[0].Owner.Handle)
}

func TestGetMyRequests(t *testing.T) {
	aliceSlot := newSlot(uuid.Nil, "Dentist", slotentity.SlotStatusSwappable)
	aliceSpare := newSlot(uuid.Nil, "Lunch", slotentity.SlotStatusSwappable)
	bobSlot := newSlot(uuid.Nil, "Gym", slotentity.SlotStatusSwappable)
	carolSlot := newSlot(uuid.Nil, "Yoga", slotentity.SlotStatusSwappable)
	f := newFixture(aliceSlot, aliceSpare, bobSlot, carolSlot)
	aliceSlot.OwnerID = f.alice
	aliceSpare.OwnerID = f.alice
	bobSlot.OwnerID = f.bob
	carolSlot.OwnerID = f.carol

	// Each proposal targets a slot that is still SWAPPABLE: the first one
	// parks aliceSlot and bobSlot as SWAP_PENDING, so carol aims at alice's
	// spare slot instead.
	f.propose(t, f.alice, aliceSlot.ID, bobSlot.ID)
	f.propose(t, f.carol, carolSlot.ID, aliceSpare.ID)

	t.Run("outgoing", func(t *testing.T) {
		resp, appErr := f.svc.GetMyRequests(context.Background(), f.alice, "outgoing")
		require.Nil(t, appErr)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, f.alice, resp.Requests[0].Requester.ID)
	})

	t.Run("incoming", func(t *testing.T) {
		resp, appErr := f.svc.GetMyRequests(context.Background(), f.alice, "incoming")
		require.Nil(t, appErr)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, f.carol, resp.Requests[0].Requester.ID)
	})

	t.Run("all by default", func(t *testing.T) {
		resp, appErr := f.svc.GetMyRequests(context.Background(), f.alice, "")
		require.Nil(t, appErr)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, appErr := f.svc.GetMyRequests(context.Background(), f.alice, "sideways")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})
}
