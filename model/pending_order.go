package model

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Address is stored as a JSON column on both pending and confirmed orders.
type Address struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("address: cannot scan %T", src)
	}
	return json.Unmarshal(b, a)
}

type PendingItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type PendingItems []PendingItem

func (p PendingItems) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PendingItems) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("pending items: cannot scan %T", src)
	}
	return json.Unmarshal(b, p)
}

// PendingOrder is the cart/address/amount snapshot saved before redirecting to
// the gateway. It lives until promoted to an Order or purged by the expiry
// sweep.
type PendingOrder struct {
	ID              int64           `db:"id"`
	TempOrderID     string          `db:"temp_order_id"`
	UserID          sql.NullString  `db:"user_id"`
	Email           string          `db:"email"`
	BillingAddress  Address         `db:"billing_address"`
	ShippingAddress Address         `db:"shipping_address"`
	Items           PendingItems    `db:"items"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	ShippingAmount  decimal.Decimal `db:"shipping_amount"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	CreatedAt       sql.NullTime    `db:"created_at"`
}

// PendingOrderKey is the storage key scheme shared by the checkout initiator
// and the webhook handler, so both sides can address the same record.
func PendingOrderKey(tempOrderID string) string {
	return "pending_order_" + tempOrderID
}
