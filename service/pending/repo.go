package pending

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/Iamabhih/ikhaya-checkout/model"
)

type IRepo interface {
	CreatePendingOrder(ctx context.Context, pending model.PendingOrder) error
	GetPendingOrder(ctx context.Context, tempOrderID string) (model.PendingOrder, error)
	DeletePendingOrder(ctx context.Context, tempOrderID string) (bool, error)
	ListPendingOrders(ctx context.Context) ([]model.PendingOrder, error)
}

func NewRepo(db *sqlx.DB) IRepo {
	return &repo{
		db: db,
	}
}

type repo struct {
	db *sqlx.DB
}

var createPendingOrderQuery = `INSERT INTO pending_orders
	(temp_order_id, user_id, email, billing_address, shipping_address, items, subtotal, shipping_amount, total_amount)
	VALUES (:temp_order_id, :user_id, :email, :billing_address, :shipping_address, :items, :subtotal, :shipping_amount, :total_amount)`

func (r repo) CreatePendingOrder(ctx context.Context, pending model.PendingOrder) error {
	_, err := r.db.NamedExecContext(ctx, createPendingOrderQuery, pending)
	return err
}

var getPendingOrderQuery = "SELECT * FROM pending_orders WHERE temp_order_id = ?"

func (r repo) GetPendingOrder(ctx context.Context, tempOrderID string) (model.PendingOrder, error) {
	var res model.PendingOrder
	err := r.db.GetContext(ctx, &res, getPendingOrderQuery, tempOrderID)
	return res, err
}

var deletePendingOrderQuery = "DELETE FROM pending_orders WHERE temp_order_id = ?"

// DeletePendingOrder reports whether this call removed the row. Only one
// concurrent caller sees true; that caller owns promotion.
func (r repo) DeletePendingOrder(ctx context.Context, tempOrderID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deletePendingOrderQuery, tempOrderID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

var listPendingOrdersQuery = "SELECT * FROM pending_orders"

func (r repo) ListPendingOrders(ctx context.Context) ([]model.PendingOrder, error) {
	var res []model.PendingOrder
	err := r.db.SelectContext(ctx, &res, listPendingOrdersQuery)
	return res, err
}
