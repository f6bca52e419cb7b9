package textutil

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789abcdef"

// EscapeToken turns a store record name into a file-name-safe token that
// UnescapeToken maps back to the same name. Lowercase ASCII letters, digits,
// '-' and '_' pass through; every other byte becomes "%xx". Uppercase is
// escaped too so names differing only in case stay distinct on
// case-insensitive filesystems.
func EscapeToken(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isTokenByte(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

// UnescapeToken reverses EscapeToken. Tokens that EscapeToken could not
// have produced are rejected.
func UnescapeToken(token string) (string, error) {
	var b strings.Builder
	b.Grow(len(token))
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case isTokenByte(c):
			b.WriteByte(c)
		case c == '%' && i+2 < len(token):
			hi, lo := unhex(token[i+1]), unhex(token[i+2])
			if hi < 0 || lo < 0 {
				return "", fmt.Errorf("token %q: bad escape at byte %d", token, i)
			}
			decoded := byte(hi<<4 | lo)
			if isTokenByte(decoded) {
				return "", fmt.Errorf("token %q: needless escape at byte %d", token, i)
			}
			b.WriteByte(decoded)
			i += 2
		default:
			return "", fmt.Errorf("token %q: unexpected byte at %d", token, i)
		}
	}
	return b.String(), nil
}

func isTokenByte(c byte) bool {
	return ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') || c == '-' || c == '_'
}

func unhex(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}
