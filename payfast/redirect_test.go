package payfast

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Iamabhih/ikhaya-checkout/config"
	"github.com/Iamabhih/ikhaya-checkout/model"
)

func testGatewayConfig() config.PayFastConfig {
	return config.PayFastConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  "secret-passphrase",
		Sandbox:     true,
		ReturnURL:   "https://shop.example/payment/return",
		CancelURL:   "https://shop.example/payment/cancel",
		NotifyURL:   "https://shop.example/payfast/notify",
	}
}

func testPendingOrder() model.PendingOrder {
	return model.PendingOrder{
		TempOrderID: "TEMP-1700000000000-abc123de",
		UserID:      sql.NullString{String: "user-42", Valid: true},
		Email:       "thandi@example.com",
		BillingAddress: model.Address{
			FirstName: "Thandi",
			LastName:  "Ngcobo",
			Phone:     "0821234567",
		},
		Items: model.PendingItems{
			{
				ProductID:   "prod-1",
				ProductName: "Rattan armchair",
				ProductSKU:  "RAT-001",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("250.00"),
				LineTotal:   decimal.RequireFromString("250.00"),
			},
		},
		Subtotal:       decimal.RequireFromString("250.00"),
		ShippingAmount: decimal.RequireFromString("50.00"),
		TotalAmount:    decimal.RequireFromString("300.00"),
	}
}

func Test_BuildRedirect(t *testing.T) {
	client := NewClient(testGatewayConfig())

	descriptor, err := client.BuildRedirect(testPendingOrder())
	assert.NoError(t, err)
	assert.Equal(t, "https://sandbox.payfast.co.za/eng/process", descriptor.ProcessURL)

	names := make([]string, 0, len(descriptor.Fields))
	values := map[string]string{}
	for _, f := range descriptor.Fields {
		names = append(names, f.Name)
		values[f.Name] = f.Value
	}

	assert.Equal(t, []string{
		"merchant_id", "merchant_key", "return_url", "cancel_url", "notify_url",
		"name_first", "name_last", "email_address", "cell_number",
		"m_payment_id", "amount", "item_name",
		"custom_int1", "custom_str1",
		"signature",
	}, names)

	assert.Equal(t, "300.00", values["amount"])
	assert.Equal(t, "TEMP-1700000000000-abc123de", values["m_payment_id"])
	assert.Equal(t, "user-42", values["custom_str1"])

	// The embedded signature must match a recomputation over the same fields.
	recomputed := Fields{}
	for _, f := range descriptor.Fields {
		if f.Name != "signature" {
			recomputed[f.Name] = f.Value
		}
	}
	assert.Equal(t, Sign(recomputed, "secret-passphrase"), values["signature"])
}

func Test_BuildRedirect_LiveURL(t *testing.T) {
	conf := testGatewayConfig()
	conf.Sandbox = false
	client := NewClient(conf)

	descriptor, err := client.BuildRedirect(testPendingOrder())
	assert.NoError(t, err)
	assert.Equal(t, "https://www.payfast.co.za/eng/process", descriptor.ProcessURL)
}

func Test_BuildRedirect_MissingBuyerFields(t *testing.T) {
	client := NewClient(testGatewayConfig())

	noName := testPendingOrder()
	noName.BillingAddress.FirstName = ""
	_, err := client.BuildRedirect(noName)
	assert.Error(t, err)

	noEmail := testPendingOrder()
	noEmail.Email = ""
	_, err = client.BuildRedirect(noEmail)
	assert.Error(t, err)

	noID := testPendingOrder()
	noID.TempOrderID = ""
	_, err = client.BuildRedirect(noID)
	assert.Error(t, err)

	zeroAmount := testPendingOrder()
	zeroAmount.TotalAmount = decimal.Zero
	_, err = client.BuildRedirect(zeroAmount)
	assert.Error(t, err)
}

func Test_AutoSubmitHTML(t *testing.T) {
	client := NewClient(testGatewayConfig())
	descriptor, err := client.BuildRedirect(testPendingOrder())
	assert.NoError(t, err)

	html, err := descriptor.AutoSubmitHTML()
	assert.NoError(t, err)
	assert.Contains(t, html, `action="https://sandbox.payfast.co.za/eng/process"`)
	assert.Contains(t, html, `name="m_payment_id" value="TEMP-1700000000000-abc123de"`)
	assert.Contains(t, html, `name="signature"`)
}
