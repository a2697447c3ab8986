package repository

import (
	"context"
	"database/sql"

	"slotswap-api/core/database"
	"slotswap-api/core/logger"
	"slotswap-api/modules/swap/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SwapRepository persists swap requests. Engine mutations always run inside
// Transact so the slot-pair writes and the request write commit together.
type SwapRepository struct {
	DB database.IDatabase
}

func NewSwapRepository(db database.IDatabase) *SwapRepository {
	return &SwapRepository{DB: db}
}

// Direction filters GetByParticipant.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionAll      Direction = "all"
)

type SwapRepositoryInterface interface {
	Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, req *entity.SwapRequest) (*entity.SwapRequest, error)
	GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*entity.SwapRequest, error)
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status entity.SwapStatus) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	FindPendingBySlotPairTx(ctx context.Context, tx *sqlx.Tx, slotA, slotB uuid.UUID) (*entity.SwapRequest, error)

	GetByID(ctx context.Context, id uuid.UUID) (*entity.SwapRequest, error)
	GetByParticipant(ctx context.Context, userID uuid.UUID, dir Direction) ([]entity.SwapRequest, error)
}

const swapColumns = `id, reference, requester_id, requester_slot_id, recipient_id, recipient_slot_id, status, created_at, updated_at`

// Transact runs fn inside a transaction, rolling back on error or panic.
func (r *SwapRepository) Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("SwapRepository:Transact:Begin:Error:", err)
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			logger.Error("SwapRepository:Transact:Rollback:Error:", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("SwapRepository:Transact:Commit:Error:", err)
		return err
	}
	return nil
}

func (r *SwapRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, req *entity.SwapRequest) (*entity.SwapRequest, error) {
	query := `
		INSERT INTO swap_requests (reference, requester_id, requester_slot_id, recipient_id, recipient_slot_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + swapColumns

	var created entity.SwapRequest
	err := tx.GetContext(ctx, &created, query,
		req.Reference, req.RequesterID, req.RequesterSlotID, req.RecipientID, req.RecipientSlotID, req.Status)
	if err != nil {
		logger.Error("SwapRepository:CreateTx:Error:", err)
		return nil, err
	}

	return &created, nil
}

func (r *SwapRepository) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*entity.SwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id = $1 FOR UPDATE`

	var req entity.SwapRequest
	err := tx.GetContext(ctx, &req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("SwapRepository:GetByIDForUpdateTx:Error:", err)
		return nil, err
	}

	return &req, nil
}

func (r *SwapRepository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status entity.SwapStatus) error {
	query := `UPDATE swap_requests SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, status); err != nil {
		logger.Error("SwapRepository:UpdateStatusTx:Error:", err)
		return err
	}
	return nil
}

func (r *SwapRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	query := `DELETE FROM swap_requests WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		logger.Error("SwapRepository:DeleteTx:Error:", err)
		return err
	}
	return nil
}

// FindPendingBySlotPairTx looks for a PENDING request linking the two slots in
// either direction.
func (r *SwapRepository) FindPendingBySlotPairTx(ctx context.Context, tx *sqlx.Tx, slotA, slotB uuid.UUID) (*entity.SwapRequest, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swap_requests
		WHERE status = $1
		  AND ((requester_slot_id = $2 AND recipient_slot_id = $3)
		    OR (requester_slot_id = $3 AND recipient_slot_id = $2))
		LIMIT 1
	`

	var req entity.SwapRequest
	err := tx.GetContext(ctx, &req, query, entity.SwapStatusPending, slotA, slotB)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("SwapRepository:FindPendingBySlotPairTx:Error:", err)
		return nil, err
	}

	return &req, nil
}

func (r *SwapRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id = $1`

	var req entity.SwapRequest
	err := r.DB.GetContext(ctx, &req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("SwapRepository:GetByID:Error:", err)
		return nil, err
	}

	return &req, nil
}

func (r *SwapRepository) GetByParticipant(ctx context.Context, userID uuid.UUID, dir Direction) ([]entity.SwapRequest, error) {
	var query string
	switch dir {
	case DirectionIncoming:
		query = `SELECT ` + swapColumns + ` FROM swap_requests WHERE recipient_id = $1 ORDER BY created_at DESC`
	case DirectionOutgoing:
		query = `SELECT ` + swapColumns + ` FROM swap_requests WHERE requester_id = $1 ORDER BY created_at DESC`
	default:
		query = `SELECT ` + swapColumns + ` FROM swap_requests WHERE recipient_id = $1 OR requester_id = $1 ORDER BY created_at DESC`
	}

	var requests []entity.SwapRequest
	err := r.DB.SelectContext(ctx, &requests, query, userID)
	if err != nil {
		logger.Error("SwapRepository:GetByParticipant:Error:", err)
		return nil, err
	}

	return requests, nil
}
