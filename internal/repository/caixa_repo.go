package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

// CaixaRepository is the authoritative store for register sessions. Every
// admission check is re-validated here against the current row state, under
// a row lock — the caller's view of open/closed is only a hint that may have
// gone stale out-of-band.
type CaixaRepository interface {
	OpenRegister(ctx context.Context, r *model.CashRegister) error
	CloseRegister(ctx context.Context, id uuid.UUID, observation *string) (*model.CashRegister, error)
	FindOpen(ctx context.Context) (*model.CashRegister, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	CreateMovement(ctx context.Context, m *model.Movement) error
	ListMovements(ctx context.Context, registerID uuid.UUID) ([]model.Movement, error)
	ListRegisters(ctx context.Context, page, limit int) ([]model.CashRegister, int64, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) OpenRegister(ctx context.Context, reg *model.CashRegister) error {
	reg.Status = model.RegisterOpen
	err := r.db.WithContext(ctx).Create(reg).Error
	if err != nil && isSingleOpenViolation(err) {
		// Lost the race against a concurrent open — the partial unique
		// index is the arbiter, not the pre-check in the service.
		return model.ErrRegisterAlreadyOpen
	}
	return err
}

func (r *caixaRepo) CloseRegister(ctx context.Context, id uuid.UUID, observation *string) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reg, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrRegisterNotFound
			}
			return err
		}
		if !reg.IsOpen() {
			return model.ErrRegisterAlreadyClosed
		}
		now := time.Now().UTC()
		reg.Status = model.RegisterClosed
		reg.ClosedAt = &now
		if observation != nil {
			reg.Observation = observation
		}
		return tx.Save(&reg).Error
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *caixaRepo) FindOpen(ctx context.Context) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).Where("status = ?", model.RegisterOpen).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *caixaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).Preload("Movements").First(&reg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrRegisterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// CreateMovement admits a movement only while the owning register row is
// open, checked under FOR UPDATE so a concurrent close cannot interleave.
// Settlement movements are idempotent per (register, order): a duplicate
// returns the already-recorded movement instead of a second entry.
func (r *caixaRepo) CreateMovement(ctx context.Context, m *model.Movement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg model.CashRegister
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reg, "id = ?", m.RegisterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrRegisterNotFound
			}
			return err
		}
		if !reg.IsOpen() {
			return model.ErrRegisterClosed
		}

		if m.OrderID != nil {
			var existing model.Movement
			err := tx.Where("register_id = ? AND order_id = ?", m.RegisterID, *m.OrderID).
				First(&existing).Error
			if err == nil {
				*m = existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		return tx.Create(m).Error
	})
}

func (r *caixaRepo) ListMovements(ctx context.Context, registerID uuid.UUID) ([]model.Movement, error) {
	var movs []model.Movement
	err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *caixaRepo) ListRegisters(ctx context.Context, page, limit int) ([]model.CashRegister, int64, error) {
	var regs []model.CashRegister
	var total int64
	q := r.db.WithContext(ctx).Model(&model.CashRegister{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("opened_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&regs).Error
	return regs, total, err
}

// isSingleOpenViolation detects the partial unique index that enforces
// "at most one open register".
func isSingleOpenViolation(err error) bool {
	return strings.Contains(err.Error(), "uq_cash_registers_single_open")
}
