package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenRegisterRequest struct {
	OpeningBalance decimal.Decimal `json:"openingBalance" validate:"min=0"`
	Observation    *string         `json:"observation"`
}

type CloseRegisterRequest struct {
	Observation *string `json:"observation"`
}

type RecordMovementRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Type   string          `json:"type"   validate:"required,oneof=manual order_settlement"`
	// OrderID is required when type == order_settlement.
	OrderID     *string `json:"orderId"     validate:"omitempty,uuid"`
	Description string  `json:"description"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RegisterResponse struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Observation    *string         `json:"observation"`
	OpenedAt       string          `json:"openedAt"`
	ClosedAt       *string         `json:"closedAt"`
}

type MovementResponse struct {
	ID          string          `json:"id"`
	RegisterID  string          `json:"registerId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     *string         `json:"orderId"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"createdAt"`
}

// RegisterTotals is the derived report arithmetic for one session:
// ClosingBalance = OpeningBalance + Net, Net = Σ all movement amounts.
type RegisterTotals struct {
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ManualIn       decimal.Decimal `json:"manualIn"`
	ManualOut      decimal.Decimal `json:"manualOut"`
	Settlements    decimal.Decimal `json:"settlements"`
	Net            decimal.Decimal `json:"net"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

type RegisterReportResponse struct {
	Register  RegisterResponse   `json:"register"`
	Movements []MovementResponse `json:"movements"`
	Totals    RegisterTotals     `json:"totals"`
}

type RegisterListResponse struct {
	Data  []RegisterResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
