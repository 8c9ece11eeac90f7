package order

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Iamabhih/ikhaya-checkout/model"
)

type fakePending struct {
	rows map[string]model.PendingOrder
}

func newFakePending() *fakePending {
	return &fakePending{rows: map[string]model.PendingOrder{}}
}

func (f *fakePending) Store(_ context.Context, pending model.PendingOrder) error {
	f.rows[pending.TempOrderID] = pending
	return nil
}

func (f *fakePending) Get(_ context.Context, tempOrderID string) (*model.PendingOrder, error) {
	row, ok := f.rows[tempOrderID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *fakePending) Clear(_ context.Context, tempOrderID string) error {
	delete(f.rows, tempOrderID)
	return nil
}

func (f *fakePending) Claim(_ context.Context, tempOrderID string) (bool, error) {
	if _, ok := f.rows[tempOrderID]; !ok {
		return false, nil
	}
	delete(f.rows, tempOrderID)
	return true, nil
}

func (f *fakePending) PurgeExpired(_ context.Context) (int, error) {
	return 0, nil
}

type fakeRepo struct {
	nextID    int64
	orders    map[int64]model.Order
	items     map[int64][]model.OrderItem
	failOrder bool
	failItems bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: map[int64]model.Order{},
		items:  map[int64][]model.OrderItem{},
	}
}

func (f *fakeRepo) CreateOrder(_ context.Context, order model.Order) (int64, error) {
	if f.failOrder {
		return 0, fmt.Errorf("forced order insert failure")
	}
	for _, existing := range f.orders {
		if existing.OrderNumber == order.OrderNumber {
			return 0, fmt.Errorf("duplicate order number %s", order.OrderNumber)
		}
	}
	f.nextID++
	order.ID = f.nextID
	f.orders[f.nextID] = order
	return f.nextID, nil
}

func (f *fakeRepo) GetOrder(_ context.Context, id int64) (model.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return model.Order{}, sql.ErrNoRows
	}
	return order, nil
}

func (f *fakeRepo) GetOrderByNumber(_ context.Context, orderNumber string) (model.Order, error) {
	for _, order := range f.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return model.Order{}, sql.ErrNoRows
}

func (f *fakeRepo) CreateOrderItems(_ context.Context, items []model.OrderItem) error {
	if f.failItems {
		return fmt.Errorf("forced item insert failure")
	}
	for _, item := range items {
		f.items[item.OrderID] = append(f.items[item.OrderID], item)
	}
	return nil
}

func (f *fakeRepo) ListOrderItems(_ context.Context, orderID int64) ([]model.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeRepo) DeleteOrder(_ context.Context, id int64) error {
	delete(f.orders, id)
	delete(f.items, id)
	return nil
}

const tempID = "TEMP-1700000000000-abc123de"

func seedPending(t *testing.T, pendingSvc *fakePending) {
	t.Helper()
	err := pendingSvc.Store(context.Background(), model.PendingOrder{
		TempOrderID: tempID,
		UserID:      sql.NullString{String: "user-42", Valid: true},
		Email:       "thandi@example.com",
		BillingAddress: model.Address{
			FirstName: "Thandi",
			LastName:  "Ngcobo",
		},
		Items: model.PendingItems{
			{
				ProductID:   "prod-1",
				ProductName: "Rattan armchair",
				ProductSKU:  "RAT-001",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("250.00"),
				LineTotal:   decimal.RequireFromString("250.00"),
			},
		},
		Subtotal:       decimal.RequireFromString("250.00"),
		ShippingAmount: decimal.RequireFromString("50.00"),
		TotalAmount:    decimal.RequireFromString("300.00"),
	})
	assert.NoError(t, err)
}

func Test_CreateFromPending(t *testing.T) {
	repo := newFakeRepo()
	pendingSvc := newFakePending()
	svc := NewService(repo, pendingSvc)
	ctx := context.Background()

	seedPending(t, pendingSvc)

	res, err := svc.CreateFromPending(ctx, tempID, "PF-999")
	assert.NoError(t, err)
	assert.NotEmpty(t, res.OrderNumber)

	created, err := repo.GetOrder(ctx, res.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, created.Status)
	assert.Equal(t, model.PaymentStatusPaid, created.PaymentStatus)
	assert.Equal(t, "payfast", created.PaymentGateway)
	assert.Equal(t, "PF-999", created.PaymentReference)
	assert.True(t, created.TotalAmount.Equal(decimal.RequireFromString("300.00")))
	assert.Equal(t, "thandi@example.com", created.Email)

	items, err := repo.ListOrderItems(ctx, res.OrderID)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Rattan armchair", items[0].ProductName)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("250.00")))

	// Promotion consumed the pending order.
	gone, err := pendingSvc.Get(ctx, tempID)
	assert.NoError(t, err)
	assert.Nil(t, gone)
}

func Test_CreateFromPending_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	pendingSvc := newFakePending()
	svc := NewService(repo, pendingSvc)
	ctx := context.Background()

	seedPending(t, pendingSvc)

	_, err := svc.CreateFromPending(ctx, tempID, "PF-999")
	assert.NoError(t, err)

	_, err = svc.CreateFromPending(ctx, tempID, "PF-999")
	assert.ErrorIs(t, err, ErrPendingOrderNotFound)
	assert.Len(t, repo.orders, 1)
}

func Test_CreateFromPending_UnknownTempID(t *testing.T) {
	svc := NewService(newFakeRepo(), newFakePending())

	_, err := svc.CreateFromPending(context.Background(), "TEMP-1700000000000-missing0", "PF-999")
	assert.ErrorIs(t, err, ErrPendingOrderNotFound)
}

func Test_CreateFromPending_ItemFailureRollsBack(t *testing.T) {
	repo := newFakeRepo()
	repo.failItems = true
	pendingSvc := newFakePending()
	svc := NewService(repo, pendingSvc)
	ctx := context.Background()

	seedPending(t, pendingSvc)

	_, err := svc.CreateFromPending(ctx, tempID, "PF-999")
	assert.ErrorIs(t, err, ErrItemInsertFailed)

	// Compensating delete: no confirmed order without items survives.
	assert.Empty(t, repo.orders)

	// The pending order is restored so a retry or manual recovery can run.
	restored, err := pendingSvc.Get(ctx, tempID)
	assert.NoError(t, err)
	assert.NotNil(t, restored)
}

func Test_CreateFromPending_OrderFailureRestoresPending(t *testing.T) {
	repo := newFakeRepo()
	repo.failOrder = true
	pendingSvc := newFakePending()
	svc := NewService(repo, pendingSvc)
	ctx := context.Background()

	seedPending(t, pendingSvc)

	_, err := svc.CreateFromPending(ctx, tempID, "PF-999")
	assert.ErrorIs(t, err, ErrOrderInsertFailed)
	assert.Empty(t, repo.orders)

	restored, err := pendingSvc.Get(ctx, tempID)
	assert.NoError(t, err)
	assert.NotNil(t, restored)

	// A later retry succeeds against the restored record.
	repo.failOrder = false
	res, err := svc.CreateFromPending(ctx, tempID, "PF-999")
	assert.NoError(t, err)
	assert.Len(t, repo.items[res.OrderID], 1)
}

func Test_newOrderNumber_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := newOrderNumber()
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
		assert.Regexp(t, `^ORD-\d{14}-[0-9A-F]{6}$`, n)
	}
}
