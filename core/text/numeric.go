package text

import "strconv"

// IsNumeric reports whether a token reads as a number: plain digits, an
// exponent form such as "1e5", or a 0x/0o/0b prefixed integer. Numeric
// tokens still count toward word totals but never toward unique words or
// frequency tables.
func IsNumeric(token string) bool {
	if token == "" || token[0] < '0' || token[0] > '9' {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] == '_' || token[i] >= 0x80 {
			return false
		}
	}
	if len(token) > 2 && token[0] == '0' {
		base := 0
		switch token[1] {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}
		if base != 0 {
			return allDigits(token[2:], base)
		}
	}
	if allDigits(token, 10) {
		return true
	}
	_, err := strconv.ParseFloat(token, 64)
	if err == nil {
		return true
	}
	// out-of-range exponents are still numbers
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		return true
	}
	return false
}

func allDigits(s string, base int) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'a' && c <= 'f':
			v = int(c-'a') + 10
		default:
			return false
		}
		if v >= base {
			return false
		}
	}
	return true
}
