package payfast

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/Iamabhih/ikhaya-checkout/config"
	"github.com/Iamabhih/ikhaya-checkout/model"
)

// FormField is one input of the gateway form. Order matters: the descriptor
// lists fields in signing order with the signature last.
type FormField struct {
	Name  string
	Value string
}

// RedirectDescriptor is everything needed to move the browser to the gateway:
// the form target and the ordered, signed field list.
type RedirectDescriptor struct {
	ProcessURL string
	Fields     []FormField
}

type Client struct {
	conf config.PayFastConfig
}

func NewClient(conf config.PayFastConfig) *Client {
	return &Client{conf: conf}
}

// BuildRedirect assembles and signs the gateway request for a pending order.
// It refuses to produce a descriptor when required buyer fields are missing:
// a partially populated or unsigned form must never reach the gateway.
func (c *Client) BuildRedirect(pending model.PendingOrder) (*RedirectDescriptor, error) {
	billing := pending.BillingAddress
	if pending.TempOrderID == "" {
		return nil, fmt.Errorf("payfast: missing temp order id")
	}
	if billing.FirstName == "" {
		return nil, fmt.Errorf("payfast: missing buyer first name")
	}
	if pending.Email == "" {
		return nil, fmt.Errorf("payfast: missing buyer email")
	}
	if !pending.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("payfast: non-positive amount %s", pending.TotalAmount)
	}

	fields := Fields{
		"merchant_id":   c.conf.MerchantID,
		"merchant_key":  c.conf.MerchantKey,
		"return_url":    c.conf.ReturnURL,
		"cancel_url":    c.conf.CancelURL,
		"notify_url":    c.conf.NotifyURL,
		"name_first":    billing.FirstName,
		"name_last":     billing.LastName,
		"email_address": pending.Email,
		"cell_number":   billing.Phone,
		"m_payment_id":  pending.TempOrderID,
		"amount":        pending.TotalAmount.StringFixed(2),
		"item_name":     fmt.Sprintf("ikhaya order %s", pending.TempOrderID),
		"custom_int1":   strconv.Itoa(len(pending.Items)),
	}
	if pending.UserID.Valid {
		fields["custom_str1"] = pending.UserID.String
	}

	signature := Sign(fields, c.conf.Passphrase)

	descriptor := &RedirectDescriptor{ProcessURL: c.conf.ProcessURL()}
	for _, key := range fieldOrder {
		if fields[key] == "" {
			continue
		}
		descriptor.Fields = append(descriptor.Fields, FormField{Name: key, Value: fields[key]})
	}
	descriptor.Fields = append(descriptor.Fields, FormField{Name: "signature", Value: signature})
	return descriptor, nil
}

var formTemplate = template.Must(template.New("payfast_form").Parse(`<!DOCTYPE html>
<html>
<head><title>Redirecting to PayFast</title></head>
<body onload="document.forms[0].submit()">
<form action="{{.ProcessURL}}" method="post">
{{range .Fields}}<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{end}}<noscript><button type="submit">Continue to payment</button></noscript>
</form>
</body>
</html>
`))

// AutoSubmitHTML renders the self-submitting form page served to the browser
// at checkout.
func (d *RedirectDescriptor) AutoSubmitHTML() (string, error) {
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
