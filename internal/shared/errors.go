package shared

import "errors"

var (
	// ErrBridgeUnavailable indicates the backend could not be reached or
	// failed internally; the caller may retry.
	ErrBridgeUnavailable = errors.New("backend unavailable")
	// ErrCommandRejected indicates the backend refused a command.
	ErrCommandRejected = errors.New("command rejected")
	// ErrInvalidAmount indicates a non-positive mutation amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientBalance indicates a withdrawal exceeding the balance.
	ErrInsufficientBalance = errors.New("withdrawal exceeds current balance")
	// ErrBusy indicates a mutation is already in flight for this screen.
	ErrBusy = errors.New("operation already in progress")
)

// UserSafeMessage maps internal errors to text that is safe to show in the
// shell. Unknown errors collapse to a generic message so internals never
// leak into a notification.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBridgeUnavailable):
		return "The server could not be reached. Please retry."
	case errors.Is(err, ErrCommandRejected):
		return "The server refused the request."
	case errors.Is(err, ErrInvalidAmount):
		return "Enter an amount greater than zero."
	case errors.Is(err, ErrInsufficientBalance):
		return "The withdrawal exceeds the current balance."
	case errors.Is(err, ErrBusy):
		return "Another operation is still running. Please wait."
	default:
		return "Something went wrong. Please try again."
	}
}

// Retryable reports whether the error represents a transient fetch failure
// that the shell should offer a retry for.
func Retryable(err error) bool {
	return errors.Is(err, ErrBridgeUnavailable)
}
