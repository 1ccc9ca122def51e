package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/dto"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/reconcile"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/repository"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/worker"
)

type OrderService interface {
	List(ctx context.Context) ([]dto.OrderResponse, error)
	ListPending(ctx context.Context) ([]dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	// CapturePayment appends a captured payment, re-reconciles the order
	// and advances its status per the no-regression rule.
	CapturePayment(ctx context.Context, orderID uuid.UUID, req dto.CapturePaymentRequest) (*dto.PaymentResponse, error)
}

type orderService struct {
	repo       repository.OrderRepository
	dispatcher *worker.Dispatcher
}

func NewOrderService(repo repository.OrderRepository, dispatcher *worker.Dispatcher) OrderService {
	return &orderService{repo: repo, dispatcher: dispatcher}
}

func (s *orderService) List(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

func (s *orderService) ListPending(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderService) CapturePayment(ctx context.Context, orderID uuid.UUID, req dto.CapturePaymentRequest) (*dto.PaymentResponse, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		OrderID: orderID,
		Amount:  req.Amount,
		Method:  req.Method,
		Status:  model.PaymentCaptured,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	// Re-read the ledger rather than appending to the stale in-memory
	// slice: a concurrent capture may have landed between the two calls.
	payments, err := s.repo.ListPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}

	position := reconcile.Reconcile(order, payments)
	next := reconcile.NextStatus(position.IsFullyPaid, order.Status)
	if next != order.Status {
		if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
			return nil, err
		}
		if s.dispatcher != nil {
			ev := worker.Event{
				Type:    worker.EventOrderStatus,
				OrderID: orderID.String(),
				Status:  string(next),
			}
			if err := s.dispatcher.Enqueue(ctx, ev); err != nil {
				log.Warn().Err(err).Str("order_id", orderID.String()).Msg("event enqueue failed")
			}
		}
	}

	resp := toPaymentResponse(payment)
	return &resp, nil
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	payments := make([]dto.PaymentResponse, 0, len(o.Payments))
	for i := range o.Payments {
		payments = append(payments, toPaymentResponse(&o.Payments[i]))
	}
	return dto.OrderResponse{
		ID:        o.ID.String(),
		Total:     o.Total,
		Discount:  o.Discount,
		Status:    string(o.Status),
		Payments:  payments,
		Position:  reconcile.Reconcile(o, o.Payments),
		CreatedAt: o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func toPaymentResponse(p *model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:        p.ID.String(),
		OrderID:   p.OrderID.String(),
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
