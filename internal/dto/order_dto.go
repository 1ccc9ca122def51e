package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/reconcile"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CapturePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method string          `json:"method" validate:"required,oneof=cash debit credit transfer pix"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaymentResponse struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
}

// OrderResponse embeds the reconciled position so UI surfaces never have to
// re-derive paid/remaining from the raw payment list.
type OrderResponse struct {
	ID        string            `json:"id"`
	Total     decimal.Decimal   `json:"total"`
	Discount  decimal.Decimal   `json:"discount"`
	Status    string            `json:"status"`
	Payments  []PaymentResponse `json:"payments"`
	Position  reconcile.Result  `json:"position"`
	CreatedAt string            `json:"createdAt"`
}
