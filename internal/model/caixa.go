package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterStatus is the lifecycle state of a cash register session.
// A register goes through a single Closed → Open → Closed cycle; a new
// row is created for each opening, and a closed row is terminal.
type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "open"
	RegisterClosed RegisterStatus = "closed"
)

// MovementType classifies entries in the register ledger.
type MovementType string

const (
	// MovementManual is a cash-in/cash-out posted directly by an operator.
	// The sign of the amount carries the direction.
	MovementManual MovementType = "manual"
	// MovementOrderSettlement attaches an order's payment flow to the register.
	MovementOrderSettlement MovementType = "order_settlement"
)

// Domain errors of the register state machine. The repository re-raises
// these from the authoritative row state, so handlers can map them
// regardless of which layer detected the violation.
var (
	ErrRegisterAlreadyOpen   = errors.New("já existe um caixa aberto")
	ErrRegisterAlreadyClosed = errors.New("o caixa já está fechado")
	ErrRegisterClosed        = errors.New("o caixa não está aberto")
	ErrRegisterNotFound      = errors.New("caixa não encontrado")
)

// CashRegister is one till session bounded by an open and a close action.
// At most one register may be open system-wide; the DB enforces this with
// a partial unique index on status='open'.
type CashRegister struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Status         RegisterStatus  `gorm:"type:varchar(10);not null;default:'open';index"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observation    *string
	OpenedAt       time.Time
	// ClosedAt is set exactly once, on close. Nil while open.
	ClosedAt *time.Time

	Movements []Movement `gorm:"foreignKey:RegisterID"`
}

// IsOpen reports whether the register still admits movements.
func (r *CashRegister) IsOpen() bool { return r.Status == RegisterOpen }

// Movement is an immutable signed entry against an open register.
// Movements are NEVER updated or deleted — corrections create inverse entries.
type Movement struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type       MovementType    `gorm:"type:varchar(20);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// OrderID is set iff Type == MovementOrderSettlement. A partial unique
	// index on (register_id, order_id) makes settlement idempotent.
	OrderID     *uuid.UUID `gorm:"type:uuid"`
	Description string
	CreatedAt   time.Time
}
