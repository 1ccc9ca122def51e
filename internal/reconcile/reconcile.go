// Package reconcile derives an order's payment position from its captured
// payments. Everything here is a pure function of explicit inputs — no I/O,
// no hidden state — so the client orchestrator and the store can both run
// the same arithmetic and agree.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

// Result is the reconciled payment position of one order.
type Result struct {
	Total              decimal.Decimal `json:"total"`
	Discount           decimal.Decimal `json:"discount"`
	TotalAfterDiscount decimal.Decimal `json:"total_after_discount"`
	Paid               decimal.Decimal `json:"paid"`
	Remaining          decimal.Decimal `json:"remaining"`
	IsFullyPaid        bool            `json:"is_fully_paid"`
}

// Reconcile computes the paid/remaining position. Reconciliation never
// fails: a nil order yields the all-zero, not-fully-paid result. Only
// captured payments count; failed and voided entries are ignored.
// Remaining is floored at zero — over-payment is representable in the
// ledger but never reported as negative remaining.
func Reconcile(order *model.Order, payments []model.Payment) Result {
	if order == nil {
		return Result{
			Total:              decimal.Zero,
			Discount:           decimal.Zero,
			TotalAfterDiscount: decimal.Zero,
			Paid:               decimal.Zero,
			Remaining:          decimal.Zero,
		}
	}

	afterDiscount := order.Total.Sub(order.Discount)

	paid := decimal.Zero
	for _, p := range payments {
		if p.Status == model.PaymentCaptured {
			paid = paid.Add(p.Amount)
		}
	}

	remaining := afterDiscount.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return Result{
		Total:              order.Total,
		Discount:           order.Discount,
		TotalAfterDiscount: afterDiscount,
		Paid:               paid,
		Remaining:          remaining,
		IsFullyPaid:        remaining.IsZero(),
	}
}

// NextStatus returns the order status implied by the reconciled position.
//
//	fully paid            → PaymentConfirmed, from any prior state
//	partial, from Pending or Conditional → PartialPayment
//	otherwise             → current status unchanged
//
// The last arm guarantees no regression: an order already at
// PartialPayment or PaymentConfirmed never moves back toward Pending.
func NextStatus(isFullyPaid bool, current model.OrderStatus) model.OrderStatus {
	if isFullyPaid {
		return model.OrderPaymentConfirmed
	}
	if current == model.OrderPending || current == model.OrderConditional {
		return model.OrderPartialPayment
	}
	return current
}
