package user

import "strings"

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// NormalizePhone reduces a user-entered number to E.164 form: a leading "+"
// followed by 8 to 15 digits. Spaces, dashes, dots and parentheses are dropped;
// a "00" international prefix becomes "+".
func NormalizePhone(value string) (string, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "00") {
		value = "+" + value[2:]
	}

	var builder strings.Builder
	builder.Grow(len(value))
	for i, r := range value {
		switch {
		case r == '+' && i == 0:
			builder.WriteRune(r)
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", ErrInvalidPhone
		}
	}

	normalized := builder.String()
	if !strings.HasPrefix(normalized, "+") {
		return "", ErrInvalidPhone
	}
	digits := len(normalized) - 1
	if digits < minPhoneDigits || digits > maxPhoneDigits || normalized[1] == '0' {
		return "", ErrInvalidPhone
	}
	return normalized, nil
}
