package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserSafeMessageNeverLeaksInternals(t *testing.T) {
	internal := fmt.Errorf("pgx: connection refused at 10.0.0.4:5432: %w", errors.New("dial tcp"))
	msg := UserSafeMessage(internal)
	if msg != "Something went wrong. Please try again." {
		t.Fatalf("unknown errors must collapse to the generic message, got %q", msg)
	}
}

func TestUserSafeMessageWrappedSentinels(t *testing.T) {
	err := fmt.Errorf("%w: list_sales returned 503", ErrBridgeUnavailable)
	if msg := UserSafeMessage(err); msg != "The server could not be reached. Please retry." {
		t.Fatalf("unexpected message %q", msg)
	}
	if UserSafeMessage(nil) != "" {
		t.Fatal("nil error should yield an empty message")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(fmt.Errorf("%w: list_sales", ErrBridgeUnavailable)) {
		t.Fatal("bridge failures are retryable")
	}
	for _, err := range []error{ErrCommandRejected, ErrInvalidAmount, ErrInsufficientBalance, ErrBusy} {
		if Retryable(err) {
			t.Fatalf("%v must not be retryable", err)
		}
	}
}
