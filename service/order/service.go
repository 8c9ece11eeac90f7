package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Iamabhih/ikhaya-checkout/model"
	"github.com/Iamabhih/ikhaya-checkout/service/pending"
)

const gatewayName = "payfast"

var (
	// ErrPendingOrderNotFound is benign: a duplicate webhook delivery or a
	// lost claim race lands here, meaning the order was already handled.
	ErrPendingOrderNotFound = errors.New("pending order not found")

	// ErrOrderInsertFailed is retryable; the pending order is restored
	// before it is returned.
	ErrOrderInsertFailed = errors.New("order insert failed")

	// ErrItemInsertFailed is returned after the compensating delete of the
	// order row.
	ErrItemInsertFailed = errors.New("order item insert failed")
)

// Result identifies the order materialized from a pending order.
type Result struct {
	OrderID     int64
	OrderNumber string
}

type IService interface {
	CreateFromPending(ctx context.Context, tempOrderID string, paymentReference string) (Result, error)
}

func NewService(repo IRepo, pendingSvc pending.IService) IService {
	return &service{
		repo:    repo,
		pending: pendingSvc,
	}
}

type service struct {
	repo    IRepo
	pending pending.IService
}

// CreateFromPending promotes a pending order into a confirmed order with its
// items. Safe to call concurrently for one temp id: the pending claim is a
// conditional delete, so exactly one caller creates the order and the rest
// get ErrPendingOrderNotFound.
func (s service) CreateFromPending(ctx context.Context, tempOrderID string, paymentReference string) (Result, error) {
	p, err := s.pending.Get(ctx, tempOrderID)
	if err != nil {
		return Result{}, err
	}
	if p == nil {
		return Result{}, ErrPendingOrderNotFound
	}

	won, err := s.pending.Claim(ctx, tempOrderID)
	if err != nil {
		return Result{}, err
	}
	if !won {
		return Result{}, ErrPendingOrderNotFound
	}

	orderNumber := newOrderNumber()
	row, err := buildOrder(*p, orderNumber, paymentReference)
	if err != nil {
		s.restorePending(ctx, *p)
		return Result{}, err
	}

	orderID, err := s.repo.CreateOrder(ctx, row)
	if err != nil {
		s.restorePending(ctx, *p)
		return Result{}, fmt.Errorf("%w: %s", ErrOrderInsertFailed, err)
	}

	err = s.repo.CreateOrderItems(ctx, buildItems(*p, orderID))
	if err != nil {
		// Compensate: a confirmed order with zero items must not survive.
		if delErr := s.repo.DeleteOrder(ctx, orderID); delErr != nil {
			log.Printf("order: compensating delete of order %d failed: %s", orderID, delErr)
		}
		s.restorePending(ctx, *p)
		return Result{}, fmt.Errorf("%w: %s", ErrItemInsertFailed, err)
	}

	return Result{OrderID: orderID, OrderNumber: orderNumber}, nil
}

// restorePending puts a claimed pending order back after a failed promotion,
// keeping it reachable for a retry or the recovery tool.
func (s service) restorePending(ctx context.Context, p model.PendingOrder) {
	if err := s.pending.Store(ctx, p); err != nil {
		log.Printf("order: failed to restore pending order %s: %s", p.TempOrderID, err)
	}
}

func buildOrder(p model.PendingOrder, orderNumber string, paymentReference string) (model.Order, error) {
	billing, err := json.Marshal(p.BillingAddress)
	if err != nil {
		return model.Order{}, err
	}
	shipping, err := json.Marshal(p.ShippingAddress)
	if err != nil {
		return model.Order{}, err
	}
	return model.Order{
		OrderNumber:      orderNumber,
		UserID:           p.UserID,
		Email:            p.Email,
		BillingAddress:   billing,
		ShippingAddress:  shipping,
		Subtotal:         p.Subtotal,
		ShippingAmount:   p.ShippingAmount,
		TotalAmount:      p.TotalAmount,
		Status:           model.OrderStatusConfirmed,
		PaymentStatus:    model.PaymentStatusPaid,
		PaymentGateway:   gatewayName,
		PaymentReference: paymentReference,
	}, nil
}

// buildItems copies the snapshots taken at checkout. Live catalog prices are
// never consulted here: the amount charged is the amount that was shown.
func buildItems(p model.PendingOrder, orderID int64) []model.OrderItem {
	var res []model.OrderItem
	for _, item := range p.Items {
		res = append(res, model.OrderItem{
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return res
}

// newOrderNumber combines a second-resolution timestamp with a random suffix.
// The unique index on orders.order_number backstops the vanishingly small
// collision window.
func newOrderNumber() string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102150405"), token)
}
