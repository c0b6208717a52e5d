package validator

import (
	"strconv"
	"strings"
)

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapeToken escapes a JSON Pointer reference token.
func EscapeToken(tok string) string {
	return tokenEscaper.Replace(tok)
}

// Pointer renders tokens as a JSON Pointer. The document root is "".
func Pointer(tokens []string) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteByte('/')
		sb.WriteString(EscapeToken(tok))
	}
	return sb.String()
}

// ValueAt returns the value found by following tokens from doc.
func ValueAt(doc any, tokens []string) (any, bool) {
	v := doc
	for _, tok := range tokens {
		switch cur := v.(type) {
		case map[string]any:
			next, ok := cur[tok]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(cur) {
				return nil, false
			}
			v = cur[i]
		default:
			return nil, false
		}
	}
	return v, true
}
