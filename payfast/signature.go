package payfast

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// fieldOrder is the gateway-mandated signing order. It is not alphabetical and
// must never be derived from map iteration or insertion order; the gateway
// walks the same list when it recomputes the signature.
var fieldOrder = []string{
	"merchant_id",
	"merchant_key",
	"return_url",
	"cancel_url",
	"notify_url",
	"name_first",
	"name_last",
	"email_address",
	"cell_number",
	"m_payment_id",
	"amount",
	"item_name",
	"item_description",
	"custom_int1",
	"custom_int2",
	"custom_int3",
	"custom_int4",
	"custom_int5",
	"custom_str1",
	"custom_str2",
	"custom_str3",
	"custom_str4",
	"custom_str5",
	"payment_method",
}

// Fields holds the outbound request fields by schema name. An empty string
// means "field not present": it is omitted from the signature string entirely,
// never encoded as key=.
type Fields map[string]string

// BuildSignatureString concatenates the schema fields in protocol order as
// key=encodedValue pairs joined by '&', appending the passphrase last when one
// is configured.
func BuildSignatureString(fields Fields, passphrase string) string {
	var parts []string
	for _, key := range fieldOrder {
		value := fields[key]
		if value == "" {
			continue
		}
		parts = append(parts, key+"="+encode(value))
	}
	if passphrase != "" {
		parts = append(parts, "passphrase="+encode(passphrase))
	}
	return strings.Join(parts, "&")
}

// Sign returns the MD5 hex signature of the schema fields. It is a pure
// function of the field values and passphrase: identical input always yields
// an identical hash.
func Sign(fields Fields, passphrase string) string {
	return md5Hex(BuildSignatureString(fields, passphrase))
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
