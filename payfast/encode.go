package payfast

import "strings"

const upperhex = "0123456789ABCDEF"

// encode percent-encodes a value the way the gateway's own encoder does:
// space becomes '+', and every byte outside [A-Za-z0-9-_.] is escaped,
// including '!', '\'', '(', ')', '*' and '~'. net/url.QueryEscape leaves '~'
// bare, which makes the two sides disagree on the signature, so the table is
// spelled out here.
func encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '-', c == '_', c == '.':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
		}
	}
	return b.String()
}
