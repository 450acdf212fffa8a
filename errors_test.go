package medra

import (
	"errors"
	"strings"
	"testing"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus Status
		wantOp     string
		wantMsg    string
	}{
		{
			name:       "Device Destroyed",
			err:        ErrDeviceDestroyed,
			wantStatus: StatusDeviceDestroyed,
			wantOp:     "Device",
			wantMsg:    "device handle was destroyed",
		},
		{
			name:       "Invalid Size",
			err:        ErrInvalidSize,
			wantStatus: StatusInvalidArg,
			wantOp:     "CreateBuffer",
			wantMsg:    "size must be positive",
		},
		{
			name:       "Double Destroy",
			err:        ErrDoubleDestroy,
			wantStatus: StatusInvalidArg,
			wantOp:     "Destroy",
			wantMsg:    "resource already destroyed",
		},
		{
			name:       "Event Not Ready",
			err:        ErrEventNotReady,
			wantStatus: StatusEventNotReady,
			wantOp:     "Event",
			wantMsg:    "submission has not completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := tt.err.(*Error)
			if !ok {
				t.Fatalf("Expected *Error, got %T", tt.err)
			}
			if e.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", e.Status, tt.wantStatus)
			}
			if e.Op != tt.wantOp {
				t.Errorf("Op = %v, want %v", e.Op, tt.wantOp)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", e.Message, tt.wantMsg)
			}
			if StatusOf(tt.err) != tt.wantStatus {
				t.Errorf("StatusOf() = %v, want %v", StatusOf(tt.err), tt.wantStatus)
			}
			if !strings.Contains(tt.err.Error(), tt.wantStatus.String()) {
				t.Errorf("Error() = %q, missing diagnostic %q", tt.err.Error(), tt.wantStatus)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	baseErr := errors.New("base error")
	wrappedErr := NewError(StatusOutOfMemory, "Test", "wrapped error", baseErr)

	e, ok := wrappedErr.(*Error)
	if !ok {
		t.Fatal("Expected *Error")
	}
	if unwrapped := e.Unwrap(); unwrapped != baseErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, baseErr)
	}
	if !errors.Is(wrappedErr, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}
	if !IsOutOfMemory(wrappedErr) {
		t.Error("IsOutOfMemory() should return true")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusSuccess, "success"},
		{StatusInvalidArg, "invalid argument"},
		{StatusOutOfMemory, "out of memory"},
		{StatusInvalidProgram, "invalid program"},
		{StatusInvalidKernel, "invalid kernel"},
		{StatusInvalidThreadSpace, "invalid thread-group space"},
		{StatusQueueError, "queue error"},
		{StatusEventNotReady, "event not ready"},
		{StatusDeviceDestroyed, "device destroyed"},
		{Status(999), "unknown status"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusOfForeignError(t *testing.T) {
	if got := StatusOf(nil); got != StatusSuccess {
		t.Errorf("StatusOf(nil) = %v, want success", got)
	}
	if got := StatusOf(errors.New("plain")); got != StatusQueueError {
		t.Errorf("StatusOf(plain) = %v, want queue error", got)
	}
}
