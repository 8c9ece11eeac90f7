package model

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type Order struct {
	ID               int64           `db:"id"`
	OrderNumber      string          `db:"order_number"`
	UserID           sql.NullString  `db:"user_id"`
	Email            string          `db:"email"`
	BillingAddress   []byte          `db:"billing_address"`
	ShippingAddress  []byte          `db:"shipping_address"`
	Subtotal         decimal.Decimal `db:"subtotal"`
	ShippingAmount   decimal.Decimal `db:"shipping_amount"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	Status           OrderStatus     `db:"status"`
	PaymentStatus    PaymentStatus   `db:"payment_status"`
	PaymentGateway   string          `db:"payment_gateway"`
	PaymentReference string          `db:"payment_reference"`
	CreatedAt        sql.NullTime    `db:"created_at"`
	UpdatedAt        sql.NullTime    `db:"updated_at"`
}

// OrderItem snapshots the product at purchase time. Name, SKU and prices are
// copied from the pending order, never re-read from the catalog, so historical
// orders stay accurate after catalog changes.
type OrderItem struct {
	ID          int64           `db:"id"`
	OrderID     int64           `db:"order_id"`
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	ProductSKU  string          `db:"product_sku"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	LineTotal   decimal.Decimal `db:"line_total"`
	CreatedAt   sql.NullTime    `db:"created_at"`
}
