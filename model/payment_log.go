package model

import (
	"database/sql"
)

type PaymentLogEventType string

const (
	EventPaymentInitiated   PaymentLogEventType = "payment_initiated"
	EventPendingOrderStored PaymentLogEventType = "pending_order_created"
	EventPendingOrderFailed PaymentLogEventType = "pending_order_failed"
	EventFormPrepared       PaymentLogEventType = "form_prepared"
	EventFormSubmitted      PaymentLogEventType = "form_submitted"
	EventPaymentCancelled   PaymentLogEventType = "payment_cancelled"
	EventPaymentSuccessPage PaymentLogEventType = "payment_success_page"
	EventClientError        PaymentLogEventType = "client_error"
	EventITNReceived        PaymentLogEventType = "itn_received"
	EventITNRejected        PaymentLogEventType = "itn_rejected"
	EventOrderRecovered     PaymentLogEventType = "order_recovered"
)

// PaymentLog is an append-only audit row. The application never updates or
// deletes these; the funnel is reconstructed from them after the fact.
type PaymentLog struct {
	ID          int64               `db:"id"`
	EventType   PaymentLogEventType `db:"event_type"`
	OrderNumber string              `db:"order_number"`
	Payload     []byte              `db:"payload"`
	ErrorText   sql.NullString      `db:"error_text"`
	CreatedAt   sql.NullTime        `db:"created_at"`
}
