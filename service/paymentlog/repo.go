package paymentlog

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/Iamabhih/ikhaya-checkout/model"
)

type IRepo interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
	CreatePaymentLog(ctx context.Context, entry model.PaymentLog) error
	ListPaymentLogs(ctx context.Context, orderNumber string) ([]model.PaymentLog, error)
	CreateOutbox(ctx context.Context, outbox model.Outbox) error
	GetPendingOutbox(ctx context.Context, limit int) ([]model.Outbox, error)
	MarkDoneOutboxes(ctx context.Context, ids []int64) error
}

func NewRepo(db *sqlx.DB) IRepo {
	return &repo{
		db: db,
	}
}

type repo struct {
	db *sqlx.DB
}

var createPaymentLogQuery = `INSERT INTO payment_logs (event_type, order_number, payload, error_text)
	VALUES (:event_type, :order_number, :payload, :error_text)`

func (r repo) CreatePaymentLog(ctx context.Context, entry model.PaymentLog) error {
	_, err := r.db.NamedExecContext(ctx, createPaymentLogQuery, entry)
	return err
}

var listPaymentLogsQuery = "SELECT * FROM payment_logs WHERE order_number = ? ORDER BY id"

func (r repo) ListPaymentLogs(ctx context.Context, orderNumber string) ([]model.PaymentLog, error) {
	var res []model.PaymentLog
	err := r.db.SelectContext(ctx, &res, listPaymentLogsQuery, orderNumber)
	return res, err
}

var createOutboxQuery = "INSERT INTO payment_outboxes(content) VALUES (:content)"

func (r repo) CreateOutbox(ctx context.Context, outbox model.Outbox) error {
	_, err := r.db.NamedExecContext(ctx, createOutboxQuery, outbox)
	return err
}

func (r repo) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = tx.Rollback()
			panic(r)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = fn(ctx)
	if err != nil {
		return err
	}
	return tx.Commit()
}

var getPendingOutboxQuery = "SELECT * FROM payment_outboxes WHERE status = ? LIMIT ?"

func (r repo) GetPendingOutbox(ctx context.Context, limit int) ([]model.Outbox, error) {
	var res []model.Outbox
	err := r.db.SelectContext(ctx, &res, getPendingOutboxQuery, model.OutboxPending, limit)
	return res, err
}

var markDoneOutboxesQuery = "UPDATE payment_outboxes SET status = ? WHERE id IN (?)"

func (r repo) MarkDoneOutboxes(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(markDoneOutboxesQuery, model.OutboxCompleted, ids)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
