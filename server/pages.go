package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Iamabhih/ikhaya-checkout/model"
	"github.com/Iamabhih/ikhaya-checkout/service/paymentlog"
)

// handleReturn is the browser landing after a successful gateway round-trip.
// Order confirmation is the webhook's job; this only records the funnel step.
func (s *Server) handleReturn(c *gin.Context) {
	s.appendLog(c, paymentlog.Event{
		Type:        model.EventPaymentSuccessPage,
		OrderNumber: c.Query("m_payment_id"),
	})
	c.JSON(http.StatusOK, gin.H{"status": "payment received, your order is being confirmed"})
}

func (s *Server) handleCancel(c *gin.Context) {
	s.appendLog(c, paymentlog.Event{
		Type:        model.EventPaymentCancelled,
		OrderNumber: c.Query("m_payment_id"),
	})
	c.JSON(http.StatusOK, gin.H{"status": "payment cancelled"})
}

type clientLogRequest struct {
	OrderNumber string                 `json:"order_number"`
	Payload     map[string]interface{} `json:"payload"`
	Error       string                 `json:"error"`
}

// handleClientLog lets the storefront report client-side checkout errors into
// the same audit trail the server writes.
func (s *Server) handleClientLog(c *gin.Context) {
	var req clientLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.appendLog(c, paymentlog.Event{
		Type:        model.EventClientError,
		OrderNumber: req.OrderNumber,
		Payload:     req.Payload,
		Error:       req.Error,
	})
	c.JSON(http.StatusOK, gin.H{"status": "logged"})
}

// handleListLogs exposes the recorded funnel for one order number or temp
// id, the entry point for audit review when a webhook is suspected lost.
func (s *Server) handleListLogs(c *gin.Context) {
	entries, err := s.logs.List(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load payment logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": entries})
}

// appendLog writes an audit event; the funnel must keep moving even when the
// audit store hiccups, so failures are logged and swallowed.
func (s *Server) appendLog(c *gin.Context, event paymentlog.Event) {
	if err := s.logs.Append(c.Request.Context(), event); err != nil {
		log.Printf("paymentlog: append %s failed: %s", event.Type, err)
	}
}
