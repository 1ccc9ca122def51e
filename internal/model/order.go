package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus follows the order's payment progress. Transitions are derived
// from reconciliation (see internal/reconcile): once an order reaches
// PartialPayment or PaymentConfirmed it never regresses to Pending.
type OrderStatus string

const (
	OrderPending          OrderStatus = "pending"
	OrderConditional      OrderStatus = "conditional"
	OrderPartialPayment   OrderStatus = "partial_payment"
	OrderPaymentConfirmed OrderStatus = "payment_confirmed"
)

// PaymentStatus marks a ledger entry's outcome. Only captured entries
// count toward reconciliation.
type PaymentStatus string

const (
	PaymentCaptured PaymentStatus = "captured"
	PaymentFailed   PaymentStatus = "failed"
	PaymentVoided   PaymentStatus = "voided"
)

var ErrOrderNotFound = errors.New("pedido não encontrado")

// Order is owned by the order subsystem; the register engine reads
// Total/Discount and writes the derived Status.
type Order struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Discount is an absolute currency amount, already resolved from the
	// cart-stage scalar (see internal/money for the cart rule).
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status    OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Payments []Payment `gorm:"foreignKey:OrderID"`
}

// Payment is an append-only ledger entry against an order.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method    string          `gorm:"type:varchar(20);not null"`
	Status    PaymentStatus   `gorm:"type:varchar(10);not null;default:'captured'"`
	CreatedAt time.Time
}
