package payfast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleFields() Fields {
	return Fields{
		"merchant_id":   "10000100",
		"merchant_key":  "46f0cd694581a",
		"return_url":    "https://shop.example/payment/return",
		"cancel_url":    "https://shop.example/payment/cancel",
		"notify_url":    "https://shop.example/payfast/notify",
		"name_first":    "Thandi",
		"name_last":     "Ngcobo",
		"email_address": "thandi@example.com",
		"m_payment_id":  "TEMP-1700000000000-abc123de",
		"amount":        "300.00",
		"item_name":     "ikhaya order TEMP-1700000000000-abc123de",
		"custom_int1":   "1",
	}
}

func Test_BuildSignatureString(t *testing.T) {
	got := BuildSignatureString(sampleFields(), "secret-passphrase")
	assert.Equal(t,
		"merchant_id=10000100"+
			"&merchant_key=46f0cd694581a"+
			"&return_url=https%3A%2F%2Fshop.example%2Fpayment%2Freturn"+
			"&cancel_url=https%3A%2F%2Fshop.example%2Fpayment%2Fcancel"+
			"&notify_url=https%3A%2F%2Fshop.example%2Fpayfast%2Fnotify"+
			"&name_first=Thandi"+
			"&name_last=Ngcobo"+
			"&email_address=thandi%40example.com"+
			"&m_payment_id=TEMP-1700000000000-abc123de"+
			"&amount=300.00"+
			"&item_name=ikhaya+order+TEMP-1700000000000-abc123de"+
			"&custom_int1=1"+
			"&passphrase=secret-passphrase",
		got,
	)
}

func Test_Sign_KnownVector(t *testing.T) {
	assert.Equal(t, "32605294113fa14ee604d4b1195fc057", Sign(sampleFields(), "secret-passphrase"))
}

func Test_Sign_Deterministic(t *testing.T) {
	first := Sign(sampleFields(), "secret-passphrase")
	second := Sign(sampleFields(), "secret-passphrase")
	assert.Equal(t, first, second)
}

// Field order comes from the schema, not from how the map was populated.
func Test_Sign_InsertionOrderIrrelevant(t *testing.T) {
	forward := sampleFields()

	reversed := Fields{}
	keys := make([]string, 0, len(forward))
	for k := range forward {
		keys = append(keys, k)
	}
	for i := len(keys) - 1; i >= 0; i-- {
		reversed[keys[i]] = forward[keys[i]]
	}

	assert.Equal(t, Sign(forward, "secret-passphrase"), Sign(reversed, "secret-passphrase"))
}

func Test_Sign_EmptyFieldsOmitted(t *testing.T) {
	withEmpty := sampleFields()
	withEmpty["cell_number"] = ""
	withEmpty["item_description"] = ""

	str := BuildSignatureString(withEmpty, "")
	assert.NotContains(t, str, "cell_number")
	assert.NotContains(t, str, "item_description")
	assert.NotContains(t, str, "=&")
	assert.Equal(t, Sign(sampleFields(), ""), Sign(withEmpty, ""))
}

func Test_Sign_NoPassphrase(t *testing.T) {
	str := BuildSignatureString(sampleFields(), "")
	assert.False(t, strings.Contains(str, "passphrase"))
}

func Test_encode(t *testing.T) {
	assert.Equal(t, "a+b%21c%27d%28e%29f%2Ag%7Eh", encode("a b!c'd(e)f*g~h"))
	assert.Equal(t, "%C3%A9", encode("é"))
	assert.Equal(t, "300.00", encode("300.00"))
	assert.Equal(t, "thandi%40example.com", encode("thandi@example.com"))
}
