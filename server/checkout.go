package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Iamabhih/ikhaya-checkout/model"
	"github.com/Iamabhih/ikhaya-checkout/service/paymentlog"
	"github.com/Iamabhih/ikhaya-checkout/service/pending"
)

type checkoutRequest struct {
	TempOrderID     string              `json:"temp_order_id"`
	UserID          string              `json:"user_id"`
	Email           string              `json:"email" binding:"required"`
	BillingAddress  model.Address       `json:"billing_address" binding:"required"`
	ShippingAddress model.Address       `json:"shipping_address"`
	Items           []model.PendingItem `json:"items" binding:"required"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	ShippingAmount  decimal.Decimal     `json:"shipping_amount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
}

// handleCheckout stores the pending order, signs the gateway request and
// returns the auto-submitting form page. Everything worth auditing is logged
// before the response goes out, because the page navigates away on load.
func (s *Server) handleCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		return
	}
	if req.BillingAddress.FirstName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "billing first name is required"})
		return
	}
	if !req.TotalAmount.Equal(req.Subtotal.Add(req.ShippingAmount)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total does not match subtotal plus shipping"})
		return
	}

	p := model.PendingOrder{
		TempOrderID:     req.TempOrderID,
		Email:           req.Email,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		Items:           req.Items,
		Subtotal:        req.Subtotal,
		ShippingAmount:  req.ShippingAmount,
		TotalAmount:     req.TotalAmount,
	}
	if p.TempOrderID == "" {
		p.TempOrderID = pending.NewTempOrderID()
	}
	if req.UserID != "" {
		p.UserID = sql.NullString{String: req.UserID, Valid: true}
	}
	if p.ShippingAddress == (model.Address{}) {
		p.ShippingAddress = p.BillingAddress
	}

	s.appendLog(c, paymentlog.Event{
		Type:        model.EventPaymentInitiated,
		OrderNumber: p.TempOrderID,
		Payload:     gin.H{"total": p.TotalAmount, "items": len(p.Items)},
	})

	if err := s.pending.Store(c.Request.Context(), p); err != nil {
		s.appendLog(c, paymentlog.Event{
			Type:        model.EventPendingOrderFailed,
			OrderNumber: p.TempOrderID,
			Error:       err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save your order, please try again"})
		return
	}

	s.appendLog(c, paymentlog.Event{
		Type:        model.EventPendingOrderStored,
		OrderNumber: p.TempOrderID,
		Payload:     gin.H{"storage_key": model.PendingOrderKey(p.TempOrderID)},
	})

	descriptor, err := s.gateway.BuildRedirect(p)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	html, err := descriptor.AutoSubmitHTML()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not prepare payment form"})
		return
	}

	// form_prepared and form_submitted are written here, synchronously: once
	// the page is in the browser there is no later checkpoint on this side.
	s.appendLog(c, paymentlog.Event{
		Type:        model.EventFormPrepared,
		OrderNumber: p.TempOrderID,
		Payload:     gin.H{"process_url": descriptor.ProcessURL},
	})
	s.appendLog(c, paymentlog.Event{
		Type:        model.EventFormSubmitted,
		OrderNumber: p.TempOrderID,
	})

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
