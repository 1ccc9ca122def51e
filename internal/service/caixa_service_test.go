package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/dto"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

func newCaixaService(repo *fakeCaixaRepo, orders *fakeOrderRepo) CaixaService {
	return NewCaixaService(repo, orders, nil, nil)
}

func mustOpen(t *testing.T, svc CaixaService, balance int64) uuid.UUID {
	t.Helper()
	reg, err := svc.Open(context.Background(), dto.OpenRegisterRequest{
		OpeningBalance: decimal.NewFromInt(balance),
	})
	require.NoError(t, err)
	id, err := uuid.Parse(reg.ID)
	require.NoError(t, err)
	return id
}

func TestOpenRegister(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())

	obs := "turno da manhã"
	reg, err := svc.Open(context.Background(), dto.OpenRegisterRequest{
		OpeningBalance: decimal.NewFromInt(100),
		Observation:    &obs,
	})
	require.NoError(t, err)
	assert.Equal(t, "open", reg.Status)
	assert.True(t, decimal.NewFromInt(100).Equal(reg.OpeningBalance))
	assert.Equal(t, &obs, reg.Observation)
	assert.Nil(t, reg.ClosedAt)
}

func TestOpenStampsOpenedAt(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())

	before := time.Now().UTC().Truncate(time.Second)
	reg, err := svc.Open(context.Background(), dto.OpenRegisterRequest{
		OpeningBalance: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	openedAt, err := time.Parse(time.RFC3339, reg.OpenedAt)
	require.NoError(t, err)
	assert.False(t, openedAt.IsZero())
	assert.False(t, openedAt.Before(before))
	assert.False(t, openedAt.After(time.Now().UTC().Add(time.Second)))
}

func TestOpenSecondRegisterRejected(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())
	mustOpen(t, svc, 100)

	_, err := svc.Open(context.Background(), dto.OpenRegisterRequest{
		OpeningBalance: decimal.NewFromInt(50),
	})
	assert.ErrorIs(t, err, model.ErrRegisterAlreadyOpen)
}

func TestReopenAfterClose(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())
	id := mustOpen(t, svc, 100)

	_, err := svc.Close(context.Background(), id, dto.CloseRegisterRequest{})
	require.NoError(t, err)

	// A closed register is terminal; a fresh session starts instead.
	second := mustOpen(t, svc, 200)
	assert.NotEqual(t, id, second)
}

func TestCloseTwiceRejected(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())
	id := mustOpen(t, svc, 100)

	first, err := svc.Close(context.Background(), id, dto.CloseRegisterRequest{})
	require.NoError(t, err)
	require.NotNil(t, first.Register.ClosedAt)

	_, err = svc.Close(context.Background(), id, dto.CloseRegisterRequest{})
	assert.ErrorIs(t, err, model.ErrRegisterAlreadyClosed)
}

func TestCloseUnknownRegister(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())

	_, err := svc.Close(context.Background(), uuid.New(), dto.CloseRegisterRequest{})
	assert.ErrorIs(t, err, model.ErrRegisterNotFound)
}

func TestMovementOnClosedRegisterRejected(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())
	id := mustOpen(t, svc, 100)
	_, err := svc.Close(context.Background(), id, dto.CloseRegisterRequest{})
	require.NoError(t, err)

	_, err = svc.RecordMovement(context.Background(), id, dto.RecordMovementRequest{
		Amount: decimal.NewFromInt(10),
		Type:   "manual",
	})
	assert.ErrorIs(t, err, model.ErrRegisterClosed)
}

func TestZeroAmountMovementRejected(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())
	id := mustOpen(t, svc, 100)

	_, err := svc.RecordMovement(context.Background(), id, dto.RecordMovementRequest{
		Amount: decimal.Zero,
		Type:   "manual",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSettlementMovementRequiresOrderID(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())
	id := mustOpen(t, svc, 100)

	_, err := svc.RecordMovement(context.Background(), id, dto.RecordMovementRequest{
		Amount: decimal.NewFromInt(30),
		Type:   "order_settlement",
	})
	assert.ErrorIs(t, err, ErrValidation)

	bad := "not-a-uuid"
	_, err = svc.RecordMovement(context.Background(), id, dto.RecordMovementRequest{
		Amount:  decimal.NewFromInt(30),
		Type:    "order_settlement",
		OrderID: &bad,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSessionReportTotals(t *testing.T) {
	repo := newFakeCaixaRepo()
	orders := newFakeOrderRepo()
	svc := newCaixaService(repo, orders)
	id := mustOpen(t, svc, 100)

	_, err := svc.RecordMovement(context.Background(), id, dto.RecordMovementRequest{
		Amount:      decimal.NewFromInt(50),
		Type:        "manual",
		Description: "troco",
	})
	require.NoError(t, err)

	_, err = svc.RecordMovement(context.Background(), id, dto.RecordMovementRequest{
		Amount:      decimal.NewFromInt(-20),
		Type:        "manual",
		Description: "sangria",
	})
	require.NoError(t, err)

	order := &model.Order{Total: decimal.NewFromInt(40), Discount: decimal.NewFromInt(10)}
	require.NoError(t, orders.Create(context.Background(), order))
	_, err = svc.SettleOrder(context.Background(), id, order.ID)
	require.NoError(t, err)

	report, err := svc.Close(context.Background(), id, dto.CloseRegisterRequest{})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(100).Equal(report.Totals.OpeningBalance))
	assert.True(t, decimal.NewFromInt(50).Equal(report.Totals.ManualIn))
	assert.True(t, decimal.NewFromInt(-20).Equal(report.Totals.ManualOut))
	assert.True(t, decimal.NewFromInt(30).Equal(report.Totals.Settlements))
	assert.True(t, decimal.NewFromInt(60).Equal(report.Totals.Net))
	assert.True(t, decimal.NewFromInt(160).Equal(report.Totals.ClosingBalance))
	assert.Len(t, report.Movements, 3)
}

func TestSettleOrderIdempotent(t *testing.T) {
	repo := newFakeCaixaRepo()
	orders := newFakeOrderRepo()
	svc := newCaixaService(repo, orders)
	id := mustOpen(t, svc, 100)

	order := &model.Order{Total: decimal.NewFromInt(80), Discount: decimal.Zero}
	require.NoError(t, orders.Create(context.Background(), order))

	first, err := svc.SettleOrder(context.Background(), id, order.ID)
	require.NoError(t, err)
	second, err := svc.SettleOrder(context.Background(), id, order.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	report, err := svc.Report(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, report.Movements, 1)
	assert.True(t, decimal.NewFromInt(80).Equal(report.Totals.Settlements))
}

func TestSettleOrderWithoutFullPayment(t *testing.T) {
	repo := newFakeCaixaRepo()
	orders := newFakeOrderRepo()
	svc := newCaixaService(repo, orders)
	id := mustOpen(t, svc, 0)

	// Settlement does not require the order to be fully paid; the movement
	// carries the reconciled total after discount.
	order := &model.Order{Total: decimal.NewFromInt(150), Discount: decimal.NewFromInt(20)}
	require.NoError(t, orders.Create(context.Background(), order))
	require.NoError(t, orders.CreatePayment(context.Background(), &model.Payment{
		OrderID: order.ID,
		Amount:  decimal.NewFromInt(100),
		Method:  "cash",
		Status:  model.PaymentCaptured,
	}))

	mov, err := svc.SettleOrder(context.Background(), id, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "order_settlement", mov.Type)
	assert.True(t, decimal.NewFromInt(130).Equal(mov.Amount))
	require.NotNil(t, mov.OrderID)
	assert.Equal(t, order.ID.String(), *mov.OrderID)
}

func TestSettleUnknownOrder(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())
	id := mustOpen(t, svc, 0)

	_, err := svc.SettleOrder(context.Background(), id, uuid.New())
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestStatusWithoutOpenRegister(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())

	reg, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestStatusReflectsOpenRegister(t *testing.T) {
	svc := newCaixaService(newFakeCaixaRepo(), newFakeOrderRepo())
	id := mustOpen(t, svc, 100)

	reg, err := svc.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, id.String(), reg.ID)

	_, err = svc.Close(context.Background(), id, dto.CloseRegisterRequest{})
	require.NoError(t, err)

	reg, err = svc.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestHistoryPagination(t *testing.T) {
	repo := newFakeCaixaRepo()
	svc := newCaixaService(repo, newFakeOrderRepo())

	for i := 0; i < 3; i++ {
		id := mustOpen(t, svc, 10)
		_, err := svc.Close(context.Background(), id, dto.CloseRegisterRequest{})
		require.NoError(t, err)
	}

	page, err := svc.History(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Data, 2)

	page, err = svc.History(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}
