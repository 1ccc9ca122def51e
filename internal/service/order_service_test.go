package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/dto"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

func seedOrder(t *testing.T, repo *fakeOrderRepo, total, discount int64, status model.OrderStatus) uuid.UUID {
	t.Helper()
	order := &model.Order{
		Total:    decimal.NewFromInt(total),
		Discount: decimal.NewFromInt(discount),
		Status:   status,
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order.ID
}

func capture(t *testing.T, svc OrderService, orderID uuid.UUID, amount int64) *dto.PaymentResponse {
	t.Helper()
	p, err := svc.CapturePayment(context.Background(), orderID, dto.CapturePaymentRequest{
		Amount: decimal.NewFromInt(amount),
		Method: "cash",
	})
	require.NoError(t, err)
	return p
}

func TestCapturePartialThenFull(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, nil)
	// Due 130 after discount.
	id := seedOrder(t, repo, 150, 20, model.OrderPending)

	capture(t, svc, id, 100)
	order, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "partial_payment", order.Status)
	assert.True(t, decimal.NewFromInt(30).Equal(order.Position.Remaining))
	assert.False(t, order.Position.IsFullyPaid)

	capture(t, svc, id, 30)
	order, err = svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "payment_confirmed", order.Status)
	assert.True(t, order.Position.Remaining.IsZero())
	assert.True(t, order.Position.IsFullyPaid)
}

func TestCaptureExactTotalConfirms(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, nil)
	id := seedOrder(t, repo, 100, 0, model.OrderPending)

	capture(t, svc, id, 100)
	order, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "payment_confirmed", order.Status)
}

func TestOverpaymentFloorsRemaining(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, nil)
	id := seedOrder(t, repo, 100, 0, model.OrderPending)

	capture(t, svc, id, 120)
	order, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "payment_confirmed", order.Status)
	assert.True(t, order.Position.Remaining.IsZero())
	assert.True(t, decimal.NewFromInt(120).Equal(order.Position.Paid))
}

func TestFailedAndVoidedPaymentsIgnored(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, nil)
	id := seedOrder(t, repo, 100, 0, model.OrderPending)

	require.NoError(t, repo.CreatePayment(context.Background(), &model.Payment{
		OrderID: id, Amount: decimal.NewFromInt(60), Method: "pix", Status: model.PaymentFailed,
	}))
	require.NoError(t, repo.CreatePayment(context.Background(), &model.Payment{
		OrderID: id, Amount: decimal.NewFromInt(60), Method: "pix", Status: model.PaymentVoided,
	}))

	capture(t, svc, id, 40)
	order, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "partial_payment", order.Status)
	assert.True(t, decimal.NewFromInt(40).Equal(order.Position.Paid))
	assert.True(t, decimal.NewFromInt(60).Equal(order.Position.Remaining))
}

func TestConditionalAdvancesToPartial(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, nil)
	id := seedOrder(t, repo, 200, 0, model.OrderConditional)

	capture(t, svc, id, 50)
	order, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "partial_payment", order.Status)
}

func TestConfirmedNeverRegresses(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, nil)
	id := seedOrder(t, repo, 100, 0, model.OrderPending)

	capture(t, svc, id, 100)
	// A later small capture must not pull the order back to partial.
	capture(t, svc, id, 1)

	order, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "payment_confirmed", order.Status)
}

func TestCaptureUnknownOrder(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo(), nil)

	_, err := svc.CapturePayment(context.Background(), uuid.New(), dto.CapturePaymentRequest{
		Amount: decimal.NewFromInt(10),
		Method: "cash",
	})
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestListPendingExcludesConfirmed(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, nil)

	pendingID := seedOrder(t, repo, 50, 0, model.OrderPending)
	confirmedID := seedOrder(t, repo, 50, 0, model.OrderPending)
	capture(t, svc, confirmedID, 50)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pendingID.String(), pending[0].ID)
}
