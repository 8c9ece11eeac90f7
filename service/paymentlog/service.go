package paymentlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Iamabhih/ikhaya-checkout/kafka"
	"github.com/Iamabhih/ikhaya-checkout/model"
)

type IService interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context, orderNumber string) ([]model.PaymentLog, error)
	RelayMessage(ctx context.Context, limit int) error
}

// Event is one funnel checkpoint. It is stored as an append-only audit row
// and relayed to Kafka through the outbox.
type Event struct {
	Type        model.PaymentLogEventType `json:"event_type"`
	OrderNumber string                    `json:"order_number"`
	Payload     interface{}               `json:"payload,omitempty"`
	Error       string                    `json:"error,omitempty"`
	At          time.Time                 `json:"at"`
}

func NewService(repo IRepo, producer kafka.IProducer) IService {
	return &service{
		repo:     repo,
		producer: producer,
	}
}

type service struct {
	repo     IRepo
	producer kafka.IProducer
}

// Append writes the audit row and its outbox copy together. Audit failures
// are surfaced to the caller, who decides whether the step itself may
// proceed; the checkout path treats them as non-fatal, the webhook path logs
// them.
func (s service) Append(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	entry := model.PaymentLog{
		EventType:   event.Type,
		OrderNumber: event.OrderNumber,
		Payload:     payload,
	}
	if event.Error != "" {
		entry.ErrorText = sql.NullString{String: event.Error, Valid: true}
	}

	content, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.repo.Transact(ctx, func(ctx context.Context) error {
		if err := s.repo.CreatePaymentLog(ctx, entry); err != nil {
			return err
		}
		return s.repo.CreateOutbox(ctx, model.Outbox{Content: content})
	})
}

// List returns the recorded funnel for one order number (or temp order id),
// oldest first. This is the operator's first stop when a webhook went
// missing.
func (s service) List(ctx context.Context, orderNumber string) ([]model.PaymentLog, error) {
	return s.repo.ListPaymentLogs(ctx, orderNumber)
}

// RelayMessage pushes a batch of pending outbox rows to Kafka and marks them
// done. At-least-once: a crash between push and mark re-delivers.
func (s service) RelayMessage(ctx context.Context, limit int) error {
	outboxes, err := s.repo.GetPendingOutbox(ctx, limit)
	if err != nil {
		return err
	}
	err = s.producer.Push(extractContents(outboxes))
	if err != nil {
		return err
	}

	return s.repo.MarkDoneOutboxes(ctx, extractIDs(outboxes))
}

func extractIDs(outboxes []model.Outbox) []int64 {
	var res []int64
	for _, outbox := range outboxes {
		res = append(res, outbox.ID)
	}
	return res
}

func extractContents(outboxes []model.Outbox) [][]byte {
	var res [][]byte
	for _, outbox := range outboxes {
		res = append(res, outbox.Content)
	}
	return res
}
