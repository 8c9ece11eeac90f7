// Package recovery is the administrative fallback for orders whose webhook
// never arrived. It only ever reconstructs the pending side and delegates to
// the order service, so promotion invariants hold on this path too.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Iamabhih/ikhaya-checkout/model"
	"github.com/Iamabhih/ikhaya-checkout/service/order"
	"github.com/Iamabhih/ikhaya-checkout/service/paymentlog"
	"github.com/Iamabhih/ikhaya-checkout/service/pending"
)

// Input is what the operator supplies. TempOrderID alone is enough when the
// pending row still exists; Reconstruction carries a rebuilt cart/customer
// snapshot when it was lost or purged.
type Input struct {
	TempOrderID      string
	PaymentReference string
	Reconstruction   *model.PendingOrder
}

type IService interface {
	RecreateOrder(ctx context.Context, input Input) (order.Result, error)
}

func NewService(orderSvc order.IService, pendingSvc pending.IService, logs paymentlog.IService) IService {
	return &service{
		orders:  orderSvc,
		pending: pendingSvc,
		logs:    logs,
	}
}

type service struct {
	orders  order.IService
	pending pending.IService
	logs    paymentlog.IService
}

func (s service) RecreateOrder(ctx context.Context, input Input) (order.Result, error) {
	if input.PaymentReference == "" {
		return order.Result{}, fmt.Errorf("recovery: payment reference is required")
	}
	if input.TempOrderID == "" && input.Reconstruction == nil {
		return order.Result{}, fmt.Errorf("recovery: need a temp order id or a reconstruction")
	}

	tempOrderID := input.TempOrderID
	if tempOrderID != "" {
		res, err := s.orders.CreateFromPending(ctx, tempOrderID, input.PaymentReference)
		if err == nil {
			s.logRecovered(ctx, res, input)
			return res, nil
		}
		if !errors.Is(err, order.ErrPendingOrderNotFound) || input.Reconstruction == nil {
			return order.Result{}, err
		}
		// Pending row gone and the operator brought a reconstruction; fall
		// through and re-mint it.
	}

	recon := *input.Reconstruction
	if recon.TempOrderID == "" {
		recon.TempOrderID = pending.NewTempOrderID()
	}
	if err := s.pending.Store(ctx, recon); err != nil {
		return order.Result{}, err
	}

	res, err := s.orders.CreateFromPending(ctx, recon.TempOrderID, input.PaymentReference)
	if err != nil {
		return order.Result{}, err
	}
	s.logRecovered(ctx, res, input)
	return res, nil
}

func (s service) logRecovered(ctx context.Context, res order.Result, input Input) {
	err := s.logs.Append(ctx, paymentlog.Event{
		Type:        model.EventOrderRecovered,
		OrderNumber: res.OrderNumber,
		Payload: map[string]string{
			"temp_order_id":     input.TempOrderID,
			"payment_reference": input.PaymentReference,
		},
	})
	if err != nil {
		// The order exists; a missing audit row is not worth failing the
		// operator's recovery over.
		log.Printf("recovery: audit append failed: %s", err)
	}
}
