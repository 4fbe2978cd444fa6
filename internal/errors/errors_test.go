package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeInvalidHold, "invalid dice held")
	err := fmt.Errorf("roll: %w", New(CodeInvalidHold, "die 3 does not score"))
	if !stderrors.Is(err, sentinel) {
		t.Fatalf("expected %v to match %v by code", err, sentinel)
	}
	if stderrors.Is(err, New(CodeNoActiveWager, "")) {
		t.Fatal("different codes must not match")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeConflict, "save session", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if got := CodeOf(fmt.Errorf("outer: %w", err)); got != CodeConflict {
		t.Fatalf("CodeOf = %s, want %s", got, CodeConflict)
	}
	if got := CodeOf(cause); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %s, want %s", got, CodeUnknown)
	}
}

func TestCodeMappings(t *testing.T) {
	tcs := []struct {
		code     Code
		grpcCode codes.Code
		httpCode int
	}{
		{CodeInvalidHold, codes.InvalidArgument, http.StatusBadRequest},
		{CodePowerUpAlreadyUsed, codes.FailedPrecondition, http.StatusUnprocessableEntity},
		{CodeWrongPlayer, codes.PermissionDenied, http.StatusForbidden},
		{CodeUnknownSession, codes.NotFound, http.StatusNotFound},
		{CodeConflict, codes.Aborted, http.StatusConflict},
		{CodeUnknown, codes.Internal, http.StatusInternalServerError},
	}
	for _, tc := range tcs {
		if got := tc.code.GRPCCode(); got != tc.grpcCode {
			t.Fatalf("%s.GRPCCode() = %v, want %v", tc.code, got, tc.grpcCode)
		}
		if got := tc.code.HTTPStatus(); got != tc.httpCode {
			t.Fatalf("%s.HTTPStatus() = %d, want %d", tc.code, got, tc.httpCode)
		}
	}
}

func TestToGRPCStatus(t *testing.T) {
	err := New(CodeGameAlreadyOver, "game not started").ToGRPCStatus()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.FailedPrecondition || st.Message() != "game not started" {
		t.Fatalf("status = %v %q", st.Code(), st.Message())
	}
}
