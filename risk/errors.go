package risk

import "errors"

// Rejection reasons. Every rejected order wraps exactly one of these.
var (
	ErrInvalidOrder         = errors.New("invalid order")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientPosition = errors.New("insufficient position")
	ErrSessionNotActive     = errors.New("session not active")
)

const (
	CodeInvalidOrder         = "INVALID_ORDER"
	CodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
	CodeInsufficientPosition = "INSUFFICIENT_POSITION"
	CodeSessionNotActive     = "SESSION_NOT_ACTIVE"
)

// Code maps a rejection error to its stable code, or "" for anything else.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotActive):
		return CodeSessionNotActive
	case errors.Is(err, ErrInvalidOrder):
		return CodeInvalidOrder
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInsufficientPosition):
		return CodeInsufficientPosition
	}
	return ""
}

// IsRejection reports whether err is an order rejection rather than a fault.
func IsRejection(err error) bool { return Code(err) != "" }
