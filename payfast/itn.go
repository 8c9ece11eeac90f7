package payfast

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Gateway payment_status values carried by an ITN post.
const (
	StatusComplete  = "COMPLETE"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

type pair struct {
	key   string
	value string
}

// Notification is a parsed ITN (Instant Transaction Notification) webhook
// body. The original field order of the POST is retained because the
// signature is computed over the fields as the gateway sent them.
type Notification struct {
	MerchantID    string
	MPaymentID    string
	PFPaymentID   string
	PaymentStatus string
	ItemName      string
	AmountGross   decimal.Decimal
	AmountFee     decimal.Decimal
	AmountNet     decimal.Decimal
	EmailAddress  string
	Signature     string

	pairs []pair
}

// ParseNotification decodes a form-encoded ITN body. It fails on undecodable
// keys or values but performs no business validation; signature and status
// checks belong to the caller.
func ParseNotification(body []byte) (*Notification, error) {
	n := &Notification{}
	for _, rawPair := range strings.Split(string(body), "&") {
		if rawPair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(rawPair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("itn: bad key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("itn: bad value for %q: %w", key, err)
		}
		n.pairs = append(n.pairs, pair{key: key, value: value})
		if err := n.setField(key, value); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (n *Notification) setField(key, value string) error {
	var err error
	switch key {
	case "merchant_id":
		n.MerchantID = value
	case "m_payment_id":
		n.MPaymentID = value
	case "pf_payment_id":
		n.PFPaymentID = value
	case "payment_status":
		n.PaymentStatus = value
	case "item_name":
		n.ItemName = value
	case "amount_gross":
		n.AmountGross, err = decimal.NewFromString(value)
	case "amount_fee":
		n.AmountFee, err = decimal.NewFromString(value)
	case "amount_net":
		n.AmountNet, err = decimal.NewFromString(value)
	case "email_address":
		n.EmailAddress = value
	case "signature":
		n.Signature = value
	}
	if err != nil {
		return fmt.Errorf("itn: bad %s %q: %w", key, value, err)
	}
	return nil
}

// VerifySignature recomputes the signature over the posted fields, in posted
// order, excluding the signature field itself, and compares it to the one the
// gateway supplied.
func (n *Notification) VerifySignature(passphrase string) bool {
	var parts []string
	for _, p := range n.pairs {
		if p.key == "signature" {
			continue
		}
		parts = append(parts, p.key+"="+encode(p.value))
	}
	if passphrase != "" {
		parts = append(parts, "passphrase="+encode(passphrase))
	}
	expected := md5Hex(strings.Join(parts, "&"))
	return expected == strings.ToLower(n.Signature)
}

// Values returns the posted fields as a map, for audit payloads.
func (n *Notification) Values() map[string]string {
	res := make(map[string]string, len(n.pairs))
	for _, p := range n.pairs {
		res[p.key] = p.value
	}
	return res
}
