package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/cache"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/dto"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/reconcile"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/repository"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/worker"
)

type CaixaService interface {
	Open(ctx context.Context, req dto.OpenRegisterRequest) (*dto.RegisterResponse, error)
	Close(ctx context.Context, id uuid.UUID, req dto.CloseRegisterRequest) (*dto.RegisterReportResponse, error)
	RecordMovement(ctx context.Context, registerID uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error)
	SettleOrder(ctx context.Context, registerID, orderID uuid.UUID) (*dto.MovementResponse, error)
	// Status is the read-through current-register lookup: cache first,
	// store on miss. Returns (nil, nil) when no register is open.
	Status(ctx context.Context) (*dto.RegisterResponse, error)
	Report(ctx context.Context, id uuid.UUID) (*dto.RegisterReportResponse, error)
	History(ctx context.Context, page, limit int) (*dto.RegisterListResponse, error)
}

type caixaService struct {
	repo       repository.CaixaRepository
	orders     repository.OrderRepository
	status     *cache.StatusCache
	dispatcher *worker.Dispatcher
}

// NewCaixaService wires the register lifecycle. status and dispatcher may be
// nil (unit tests run without redis); both are best-effort side channels.
func NewCaixaService(repo repository.CaixaRepository, orders repository.OrderRepository, status *cache.StatusCache, dispatcher *worker.Dispatcher) CaixaService {
	return &caixaService{repo: repo, orders: orders, status: status, dispatcher: dispatcher}
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *caixaService) Open(ctx context.Context, req dto.OpenRegisterRequest) (*dto.RegisterResponse, error) {
	// Guard: at most one open register system-wide. The repository's
	// partial unique index settles concurrent opens; this pre-check just
	// gives the common case a clean error without burning an insert.
	if existing, err := s.repo.FindOpen(ctx); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, model.ErrRegisterAlreadyOpen
	}

	reg := &model.CashRegister{
		OpeningBalance: req.OpeningBalance,
		Observation:    req.Observation,
		OpenedAt:       time.Now().UTC(),
	}
	if err := s.repo.OpenRegister(ctx, reg); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, worker.Event{Type: worker.EventRegisterOpened, RegisterID: reg.ID.String()})
	resp := toRegisterResponse(reg)
	return &resp, nil
}

// ── Close ────────────────────────────────────────────────────────────────────
// Terminal transition: sets closedAt exactly once and returns the session
// report so the caller sees the implied closing balance atomically with
// the close outcome.

func (s *caixaService) Close(ctx context.Context, id uuid.UUID, req dto.CloseRegisterRequest) (*dto.RegisterReportResponse, error) {
	reg, err := s.repo.CloseRegister(ctx, id, req.Observation)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, worker.Event{Type: worker.EventRegisterClosed, RegisterID: reg.ID.String()})
	return s.buildReport(ctx, reg)
}

// ── RecordMovement ───────────────────────────────────────────────────────────
// Movements are immutable — no Update/Delete exists anywhere. Admission
// (register open) is re-validated by the repository under a row lock; the
// check here is never trusted from cached state.

func (s *caixaService) RecordMovement(ctx context.Context, registerID uuid.UUID, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: valor do movimento não pode ser zero", ErrValidation)
	}

	mov := &model.Movement{
		RegisterID:  registerID,
		Type:        model.MovementType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Type == string(model.MovementOrderSettlement) {
		if req.OrderID == nil {
			return nil, fmt.Errorf("%w: orderId é obrigatório para liquidação de pedido", ErrValidation)
		}
		oid, err := uuid.Parse(*req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("%w: orderId inválido", ErrValidation)
		}
		mov.OrderID = &oid
	}

	if err := s.repo.CreateMovement(ctx, mov); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, worker.Event{Type: worker.EventMovementRecorded, RegisterID: registerID.String()})
	resp := toMovementResponse(mov)
	return &resp, nil
}

// ── SettleOrder ──────────────────────────────────────────────────────────────
// Attaches a pending order to the register as an order_settlement movement
// for its reconciled total after discount. Full payment is deliberately NOT
// a precondition — partial settlements are part of the contract. Duplicate
// settlement of the same order is absorbed by the repository (idempotent
// per register+order).

func (s *caixaService) SettleOrder(ctx context.Context, registerID, orderID uuid.UUID) (*dto.MovementResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	position := reconcile.Reconcile(order, order.Payments)
	mov := &model.Movement{
		RegisterID:  registerID,
		Type:        model.MovementOrderSettlement,
		Amount:      position.TotalAfterDiscount,
		OrderID:     &orderID,
		Description: fmt.Sprintf("Pedido %s", orderID),
	}
	if err := s.repo.CreateMovement(ctx, mov); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, worker.Event{
		Type:       worker.EventMovementRecorded,
		RegisterID: registerID.String(),
		OrderID:    orderID.String(),
	})
	resp := toMovementResponse(mov)
	return &resp, nil
}

// ── Status ───────────────────────────────────────────────────────────────────

func (s *caixaService) Status(ctx context.Context) (*dto.RegisterResponse, error) {
	if s.status != nil {
		if reg, hit, err := s.status.Get(ctx); err == nil && hit {
			if reg == nil {
				return nil, nil
			}
			resp := toRegisterResponse(reg)
			return &resp, nil
		}
		// Cache errors degrade to a store read; never fail a status
		// lookup because redis hiccuped.
	}

	reg, err := s.repo.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	if s.status != nil {
		if err := s.status.Set(ctx, reg); err != nil {
			log.Warn().Err(err).Msg("status cache write failed")
		}
	}
	if reg == nil {
		return nil, nil
	}
	resp := toRegisterResponse(reg)
	return &resp, nil
}

// ── Report / History ─────────────────────────────────────────────────────────

func (s *caixaService) Report(ctx context.Context, id uuid.UUID) (*dto.RegisterReportResponse, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildReport(ctx, reg)
}

func (s *caixaService) History(ctx context.Context, page, limit int) (*dto.RegisterListResponse, error) {
	regs, total, err := s.repo.ListRegisters(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.RegisterResponse, 0, len(regs))
	for i := range regs {
		data = append(data, toRegisterResponse(&regs[i]))
	}
	return &dto.RegisterListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// afterMutation invalidates the status hint and fans out the event. Both are
// best-effort: the store already committed, a failed side channel only
// delays cache convergence until the next poll tick.
func (s *caixaService) afterMutation(ctx context.Context, ev worker.Event) {
	if s.status != nil {
		if err := s.status.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("status cache invalidation failed")
		}
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Enqueue(ctx, ev); err != nil {
			log.Warn().Err(err).Str("event", ev.Type).Msg("event enqueue failed")
		}
	}
}

func (s *caixaService) buildReport(ctx context.Context, reg *model.CashRegister) (*dto.RegisterReportResponse, error) {
	movs, err := s.repo.ListMovements(ctx, reg.ID)
	if err != nil {
		return nil, err
	}

	totals := dto.RegisterTotals{
		OpeningBalance: reg.OpeningBalance,
		ManualIn:       decimal.Zero,
		ManualOut:      decimal.Zero,
		Settlements:    decimal.Zero,
		Net:            decimal.Zero,
	}
	responses := make([]dto.MovementResponse, 0, len(movs))
	for i := range movs {
		m := &movs[i]
		totals.Net = totals.Net.Add(m.Amount)
		switch m.Type {
		case model.MovementOrderSettlement:
			totals.Settlements = totals.Settlements.Add(m.Amount)
		default:
			if m.Amount.IsNegative() {
				totals.ManualOut = totals.ManualOut.Add(m.Amount)
			} else {
				totals.ManualIn = totals.ManualIn.Add(m.Amount)
			}
		}
		responses = append(responses, toMovementResponse(m))
	}
	totals.ClosingBalance = reg.OpeningBalance.Add(totals.Net)

	return &dto.RegisterReportResponse{
		Register:  toRegisterResponse(reg),
		Movements: responses,
		Totals:    totals,
	}, nil
}

func toRegisterResponse(reg *model.CashRegister) dto.RegisterResponse {
	resp := dto.RegisterResponse{
		ID:             reg.ID.String(),
		Status:         string(reg.Status),
		OpeningBalance: reg.OpeningBalance,
		Observation:    reg.Observation,
		OpenedAt:       reg.OpenedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if reg.ClosedAt != nil {
		t := reg.ClosedAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.ClosedAt = &t
	}
	return resp
}

func toMovementResponse(m *model.Movement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:          m.ID.String(),
		RegisterID:  m.RegisterID.String(),
		Type:        string(m.Type),
		Amount:      m.Amount,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if m.OrderID != nil {
		oid := m.OrderID.String()
		resp.OrderID = &oid
	}
	return resp
}
