package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// Payloads shared by every workflow.
const (
	PayloadCancel     = "CANCEL"
	PayloadConfirmYes = "CONFIRM_YES"
	PayloadConfirmNo  = "CONFIRM_NO"
	PayloadSkip       = "SKIP"
)

// PayloadArg extracts the identifier baked into a parameterized payload
// token like "MAINT_CAT_plumbing". Returns false when the payload does
// not carry the prefix or the identifier is empty.
func PayloadArg(payload, prefix string) (string, bool) {
	if !strings.HasPrefix(payload, prefix) {
		return "", false
	}
	arg := strings.TrimPrefix(payload, prefix)
	if arg == "" {
		return "", false
	}
	return arg, true
}

// FormatNumberedOptions renders quick-reply options as a numbered list
// for surfaces that cannot show buttons.
func FormatNumberedOptions(text string, options []Option) string {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")
	for i, opt := range options {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, opt.Text))
	}
	return sb.String()
}

// MatchNumberToOption converts a bare number reply ("2") to the payload
// of the corresponding option. Returns empty string when there is no
// match.
func MatchNumberToOption(text string, options []Option) string {
	num, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || num < 1 || num > len(options) {
		return ""
	}
	return options[num-1].Payload
}

// ValidPhone reports whether the input looks like a phone number
// (10-15 digits, optional leading +).
func ValidPhone(phone string) bool {
	digits := 0
	for i, ch := range phone {
		switch {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '+' && i == 0:
		case ch == ' ' || ch == '-' || ch == '(' || ch == ')':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

// NormalizePhone strips formatting characters and prepends "+".
func NormalizePhone(phone string) string {
	var sb strings.Builder
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			sb.WriteRune(ch)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "+" + sb.String()
}
