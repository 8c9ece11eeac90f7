package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Iamabhih/ikhaya-checkout/model"
	"github.com/Iamabhih/ikhaya-checkout/payfast"
	"github.com/Iamabhih/ikhaya-checkout/service/order"
	"github.com/Iamabhih/ikhaya-checkout/service/paymentlog"
)

// handleNotify is the ITN webhook. The gateway delivers at-least-once and
// retries on non-200, so: 200 "OK" for a confirmed payment and for replays of
// one, 200 for explicit failure statuses (nothing to retry, evidence is
// logged and the pending order kept), 400 for anything that fails
// verification.
func (s *Server) handleNotify(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "INVALID")
		return
	}

	n, err := payfast.ParseNotification(body)
	if err != nil {
		s.appendLog(c, paymentlog.Event{
			Type:  model.EventITNRejected,
			Error: err.Error(),
		})
		c.String(http.StatusBadRequest, "INVALID")
		return
	}

	s.appendLog(c, paymentlog.Event{
		Type:        model.EventITNReceived,
		OrderNumber: n.MPaymentID,
		Payload:     n.Values(),
	})

	if !n.VerifySignature(s.conf.PayFast.Passphrase) {
		// Security-relevant rejection: no detail about what mismatched
		// leaves the process.
		s.appendLog(c, paymentlog.Event{
			Type:        model.EventITNRejected,
			OrderNumber: n.MPaymentID,
			Error:       "signature verification failed",
		})
		c.String(http.StatusBadRequest, "INVALID")
		return
	}

	if n.MerchantID != s.conf.PayFast.MerchantID {
		s.appendLog(c, paymentlog.Event{
			Type:        model.EventITNRejected,
			OrderNumber: n.MPaymentID,
			Error:       "unknown merchant id",
		})
		c.String(http.StatusBadRequest, "INVALID")
		return
	}

	switch n.PaymentStatus {
	case payfast.StatusComplete:
		s.confirmOrder(c, n)
	case payfast.StatusCancelled:
		s.appendLog(c, paymentlog.Event{
			Type:        model.EventPaymentCancelled,
			OrderNumber: n.MPaymentID,
			Payload:     gin.H{"pf_payment_id": n.PFPaymentID},
		})
		c.String(http.StatusOK, "OK")
	default:
		// FAILED or an unrecognized status: keep the pending order around
		// for investigation, never silently delete evidence.
		s.appendLog(c, paymentlog.Event{
			Type:        model.EventITNRejected,
			OrderNumber: n.MPaymentID,
			Error:       "payment_status=" + n.PaymentStatus,
		})
		c.String(http.StatusOK, "OK")
	}
}

func (s *Server) confirmOrder(c *gin.Context, n *payfast.Notification) {
	res, err := s.orders.CreateFromPending(c.Request.Context(), n.MPaymentID, n.PFPaymentID)
	switch {
	case err == nil:
		log.Printf("notify: order %s created for %s", res.OrderNumber, n.MPaymentID)
		c.String(http.StatusOK, "OK")
	case errors.Is(err, order.ErrPendingOrderNotFound):
		// Duplicate delivery or a lost race with another promoter; ack so
		// the gateway stops retrying.
		c.String(http.StatusOK, "OK")
	default:
		log.Printf("notify: promotion failed for %s: %s", n.MPaymentID, err)
		c.String(http.StatusInternalServerError, "RETRY")
	}
}
