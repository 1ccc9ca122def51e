package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	ListPending(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	CreatePayment(ctx context.Context, p *model.Payment) error
	ListPayments(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Payments").First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Payments").
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// ListPending returns orders still awaiting settlement — everything that has
// not reached payment_confirmed.
func (r *orderRepo) ListPending(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Payments").
		Where("status <> ?", model.OrderPaymentConfirmed).
		Order("created_at ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) CreatePayment(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *orderRepo) ListPayments(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").Find(&payments).Error
	return payments, err
}
