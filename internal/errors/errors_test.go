package errors

import (
	"errors"
	"testing"
)

type customError struct {
	Msg string
}

func (e customError) Error() string { return e.Msg }

func TestNew(t *testing.T) {
	err := New("test error")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "test error" {
		t.Errorf("expected 'test error', got '%s'", err.Error())
	}
}

func TestWrap(t *testing.T) {
	t.Run("wrap sentinel keeps chain", func(t *testing.T) {
		wrapped := Wrap(ErrInvalidInput, "tag too big")
		if wrapped.Error() != "tag too big: invalid input" {
			t.Errorf("unexpected message '%s'", wrapped.Error())
		}
		if !Is(wrapped, ErrInvalidInput) {
			t.Error("expected wrapped error to match ErrInvalidInput")
		}
	})

	t.Run("wrap nil error", func(t *testing.T) {
		if wrapped := Wrap(nil, "wrapped"); wrapped != nil {
			t.Errorf("expected nil, got %v", wrapped)
		}
	})
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrNotFound, "content %d", 42)
	if wrapped.Error() != "content 42: not found" {
		t.Errorf("unexpected message '%s'", wrapped.Error())
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}
	if Wrapf(nil, "content %d", 1) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestAs(t *testing.T) {
	err := Wrap(customError{Msg: "boom"}, "context")

	var target customError
	if !As(err, &target) {
		t.Fatal("expected As to find customError")
	}
	if target.Msg != "boom" {
		t.Errorf("expected 'boom', got '%s'", target.Msg)
	}
}

func TestJoin(t *testing.T) {
	if Join(nil, nil) != nil {
		t.Error("expected nil when joining only nil errors")
	}

	joined := Join(ErrConflict, nil, ErrForbidden)
	if !Is(joined, ErrConflict) || !Is(joined, ErrForbidden) {
		t.Error("expected joined error to match both sentinels")
	}
}

func TestSentinelMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not found"},
		{ErrConflict, "conflict"},
		{ErrInvalidInput, "invalid input"},
		{ErrUnauthorized, "unauthorized"},
		{ErrForbidden, "forbidden"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("expected '%s', got '%s'", tt.want, tt.err.Error())
		}
	}
}
