package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

// ── Full in-memory CaixaRepository ───────────────────────────────────────────
// Mirrors the semantics the real repository enforces at the DB level: a
// single open register, no movements against closed registers, idempotent
// settlement per (register, order).

type fakeCaixaRepo struct {
	registers map[uuid.UUID]*model.CashRegister
	movements []model.Movement
}

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{registers: make(map[uuid.UUID]*model.CashRegister)}
}

// OpenRegister assigns the same fields the real repository does: ID (the
// DB default there) and Status. OpenedAt is the service's responsibility
// and must arrive already set.
func (r *fakeCaixaRepo) OpenRegister(_ context.Context, reg *model.CashRegister) error {
	for _, existing := range r.registers {
		if existing.IsOpen() {
			return model.ErrRegisterAlreadyOpen
		}
	}
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	reg.Status = model.RegisterOpen
	r.registers[reg.ID] = reg
	return nil
}

func (r *fakeCaixaRepo) CloseRegister(_ context.Context, id uuid.UUID, observation *string) (*model.CashRegister, error) {
	reg, ok := r.registers[id]
	if !ok {
		return nil, model.ErrRegisterNotFound
	}
	if !reg.IsOpen() {
		return nil, model.ErrRegisterAlreadyClosed
	}
	now := time.Now().UTC()
	reg.Status = model.RegisterClosed
	reg.ClosedAt = &now
	if observation != nil {
		reg.Observation = observation
	}
	return reg, nil
}

func (r *fakeCaixaRepo) FindOpen(_ context.Context) (*model.CashRegister, error) {
	for _, reg := range r.registers {
		if reg.IsOpen() {
			return reg, nil
		}
	}
	return nil, nil
}

func (r *fakeCaixaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.registers[id]
	if !ok {
		return nil, model.ErrRegisterNotFound
	}
	return reg, nil
}

func (r *fakeCaixaRepo) CreateMovement(_ context.Context, m *model.Movement) error {
	reg, ok := r.registers[m.RegisterID]
	if !ok {
		return model.ErrRegisterNotFound
	}
	if !reg.IsOpen() {
		return model.ErrRegisterClosed
	}
	if m.OrderID != nil {
		for _, existing := range r.movements {
			if existing.RegisterID == m.RegisterID && existing.OrderID != nil && *existing.OrderID == *m.OrderID {
				*m = existing
				return nil
			}
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeCaixaRepo) ListMovements(_ context.Context, registerID uuid.UUID) ([]model.Movement, error) {
	var out []model.Movement
	for _, m := range r.movements {
		if m.RegisterID == registerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCaixaRepo) ListRegisters(_ context.Context, page, limit int) ([]model.CashRegister, int64, error) {
	var out []model.CashRegister
	for _, reg := range r.registers {
		out = append(out, *reg)
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

// ── Full in-memory OrderRepository ───────────────────────────────────────────

type fakeOrderRepo struct {
	orders   map[uuid.UUID]*model.Order
	payments []model.Payment
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	o.CreatedAt = time.Now().UTC()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	o.Payments, _ = r.ListPayments(context.Background(), id)
	return o, nil
}

func (r *fakeOrderRepo) List(_ context.Context) ([]model.Order, error) {
	var out []model.Order
	for id, o := range r.orders {
		o.Payments, _ = r.ListPayments(context.Background(), id)
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrderRepo) ListPending(_ context.Context) ([]model.Order, error) {
	var out []model.Order
	for id, o := range r.orders {
		if o.Status != model.OrderPaymentConfirmed {
			o.Payments, _ = r.ListPayments(context.Background(), id)
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) CreatePayment(_ context.Context, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *fakeOrderRepo) ListPayments(_ context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}
