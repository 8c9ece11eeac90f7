package order

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/Iamabhih/ikhaya-checkout/model"
)

type IRepo interface {
	CreateOrder(ctx context.Context, order model.Order) (int64, error)
	GetOrder(ctx context.Context, id int64) (model.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (model.Order, error)
	CreateOrderItems(ctx context.Context, items []model.OrderItem) error
	ListOrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	DeleteOrder(ctx context.Context, id int64) error
}

func NewRepo(db *sqlx.DB) IRepo {
	return &repo{
		db: db,
	}
}

type repo struct {
	db *sqlx.DB
}

var createOrderQuery = `INSERT INTO orders
	(order_number, user_id, email, billing_address, shipping_address, subtotal, shipping_amount, total_amount, status, payment_status, payment_gateway, payment_reference)
	VALUES (:order_number, :user_id, :email, :billing_address, :shipping_address, :subtotal, :shipping_amount, :total_amount, :status, :payment_status, :payment_gateway, :payment_reference)`

func (r repo) CreateOrder(ctx context.Context, order model.Order) (int64, error) {
	res, err := r.db.NamedExecContext(ctx, createOrderQuery, order)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

var getOrderQuery = "SELECT * FROM orders WHERE id = ?"

func (r repo) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	var res model.Order
	err := r.db.GetContext(ctx, &res, getOrderQuery, id)
	return res, err
}

var getOrderByNumberQuery = "SELECT * FROM orders WHERE order_number = ?"

func (r repo) GetOrderByNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	var res model.Order
	err := r.db.GetContext(ctx, &res, getOrderByNumberQuery, orderNumber)
	return res, err
}

var createOrderItemQuery = `INSERT INTO order_items
	(order_id, product_id, product_name, product_sku, quantity, unit_price, line_total)
	VALUES (:order_id, :product_id, :product_name, :product_sku, :quantity, :unit_price, :line_total)`

func (r repo) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	_, err := r.db.NamedExecContext(ctx, createOrderItemQuery, items)
	return err
}

var listOrderItemsQuery = "SELECT * FROM order_items WHERE order_id = ? ORDER BY id"

func (r repo) ListOrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var res []model.OrderItem
	err := r.db.SelectContext(ctx, &res, listOrderItemsQuery, orderID)
	return res, err
}

// DeleteOrder exists for the compensating path: an order whose items failed
// to insert is removed rather than left confirmed and empty.
var deleteOrderQuery = "DELETE FROM orders WHERE id = ?"

func (r repo) DeleteOrder(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, deleteOrderQuery, id)
	return err
}
