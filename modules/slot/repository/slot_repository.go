package repository

import (
	"context"
	"database/sql"

	"slotswap-api/core/database"
	"slotswap-api/core/logger"
	"slotswap-api/modules/slot/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SlotRepository persists slots. The ...Tx methods operate inside a
// transaction owned by the caller (the negotiation engine); the FOR UPDATE
// variants take the row lock that protects the joint slot/request transition.
type SlotRepository struct {
	DB database.IDatabase
}

func NewSlotRepository(db database.IDatabase) *SlotRepository {
	return &SlotRepository{DB: db}
}

type SlotRepositoryInterface interface {
	Create(ctx context.Context, slot *entity.Slot) (*entity.Slot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Slot, error)
	GetSwappableExcluding(ctx context.Context, ownerID uuid.UUID) ([]entity.Slot, error)
	UpdateDetailsGuarded(ctx context.Context, slot *entity.Slot, expected entity.SlotStatus) (bool, error)
	UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to entity.SlotStatus) (bool, error)
	DeleteGuarded(ctx context.Context, id uuid.UUID, expected entity.SlotStatus) (bool, error)

	GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*entity.Slot, error)
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status entity.SlotStatus) error
	SetOwnerStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID uuid.UUID, status entity.SlotStatus) error
}

const slotColumns = `id, title, start_time, end_time, status, owner_id, created_at, updated_at`

func (r *SlotRepository) Create(ctx context.Context, slot *entity.Slot) (*entity.Slot, error) {
	query := `
		INSERT INTO slots (title, start_time, end_time, status, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + slotColumns

	var created entity.Slot
	err := r.DB.GetContext(ctx, &created, query,
		slot.Title, slot.StartTime, slot.EndTime, slot.Status, slot.OwnerID)
	if err != nil {
		logger.Error("SlotRepository:Create:Error:", err)
		return nil, err
	}

	return &created, nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	var slot entity.Slot
	err := r.DB.GetContext(ctx, &slot, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("SlotRepository:GetByID:Error:", err)
		return nil, err
	}

	return &slot, nil
}

func (r *SlotRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE owner_id = $1 ORDER BY start_time ASC`

	var slots []entity.Slot
	err := r.DB.SelectContext(ctx, &slots, query, ownerID)
	if err != nil {
		logger.Error("SlotRepository:GetByOwner:Error:", err)
		return nil, err
	}

	return slots, nil
}

// GetSwappableExcluding returns the marketplace feed: every SWAPPABLE slot not
// owned by the given user.
func (r *SlotRepository) GetSwappableExcluding(ctx context.Context, ownerID uuid.UUID) ([]entity.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE status = $1 AND owner_id <> $2
		ORDER BY start_time ASC
	`

	var slots []entity.Slot
	err := r.DB.SelectContext(ctx, &slots, query, entity.SlotStatusSwappable, ownerID)
	if err != nil {
		logger.Error("SlotRepository:GetSwappableExcluding:Error:", err)
		return nil, err
	}

	return slots, nil
}

// UpdateDetailsGuarded rewrites title and times only while the slot still has
// the expected status. Returns false when the compare-and-set missed.
func (r *SlotRepository) UpdateDetailsGuarded(ctx context.Context, slot *entity.Slot, expected entity.SlotStatus) (bool, error) {
	query := `
		UPDATE slots
		SET title = $3, start_time = $4, end_time = $5, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	res, err := r.DB.ExecContext(ctx, query, slot.ID, expected, slot.Title, slot.StartTime, slot.EndTime)
	if err != nil {
		logger.Error("SlotRepository:UpdateDetailsGuarded:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateStatusGuarded flips the status only if the row still holds the status
// the caller read. A miss means a concurrent transition won.
func (r *SlotRepository) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, from, to entity.SlotStatus) (bool, error) {
	query := `UPDATE slots SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	res, err := r.DB.ExecContext(ctx, query, id, from, to)
	if err != nil {
		logger.Error("SlotRepository:UpdateStatusGuarded:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SlotRepository) DeleteGuarded(ctx context.Context, id uuid.UUID, expected entity.SlotStatus) (bool, error) {
	query := `DELETE FROM slots WHERE id = $1 AND status = $2`

	res, err := r.DB.ExecContext(ctx, query, id, expected)
	if err != nil {
		logger.Error("SlotRepository:DeleteGuarded:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ===================== transactional (engine) =====================

func (r *SlotRepository) GetByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*entity.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1 FOR UPDATE`

	var slot entity.Slot
	err := tx.GetContext(ctx, &slot, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("SlotRepository:GetByIDForUpdateTx:Error:", err)
		return nil, err
	}

	return &slot, nil
}

func (r *SlotRepository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status entity.SlotStatus) error {
	query := `UPDATE slots SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, status); err != nil {
		logger.Error("SlotRepository:UpdateStatusTx:Error:", err)
		return err
	}
	return nil
}

func (r *SlotRepository) SetOwnerStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, ownerID uuid.UUID, status entity.SlotStatus) error {
	query := `UPDATE slots SET owner_id = $2, status = $3, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, ownerID, status); err != nil {
		logger.Error("SlotRepository:SetOwnerStatusTx:Error:", err)
		return err
	}
	return nil
}
