// Package errors provides structured domain errors for the farkle engine.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Hold errors
	CodeInvalidHold          Code = "INVALID_HOLD"
	CodeFarkleHoldNotAllowed Code = "FARKLE_HOLD_NOT_ALLOWED"
	CodeMustHoldOrFarkle     Code = "MUST_HOLD_OR_FARKLE_FIRST"

	// Turn/game sequencing errors
	CodeFarkleUnresolved Code = "FARKLE_UNRESOLVED"
	CodeNotFarkled       Code = "NOT_FARKLED"
	CodeNoActiveWager    Code = "NO_ACTIVE_WAGER"
	CodeGameAlreadyOver  Code = "GAME_ALREADY_OVER"
	CodeGameInProgress   Code = "GAME_IN_PROGRESS"
	CodeTurnAlreadyEnded Code = "TURN_ALREADY_ENDED"
	CodeTutorialComplete Code = "TUTORIAL_COMPLETE"

	// Power-up and economy errors
	CodePowerUpAlreadyUsed   Code = "POWER_UP_ALREADY_USED"
	CodeInsufficientCurrency Code = "INSUFFICIENT_CURRENCY"
	CodeInvalidAmount        Code = "INVALID_AMOUNT"
	CodeInvalidMode          Code = "INVALID_MODE"
	CodeInvalidRequest       Code = "INVALID_REQUEST"

	// Session errors
	CodeWrongPlayer    Code = "WRONG_PLAYER"
	CodeUnknownSession Code = "UNKNOWN_SESSION"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - bad input from the player
	case CodeInvalidHold,
		CodeInvalidAmount,
		CodeInvalidMode,
		CodeInvalidRequest:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeFarkleHoldNotAllowed,
		CodeMustHoldOrFarkle,
		CodeFarkleUnresolved,
		CodeNotFarkled,
		CodeNoActiveWager,
		CodeGameAlreadyOver,
		CodeGameInProgress,
		CodeTurnAlreadyEnded,
		CodeTutorialComplete,
		CodePowerUpAlreadyUsed,
		CodeInsufficientCurrency:
		return codes.FailedPrecondition

	case CodeWrongPlayer:
		return codes.PermissionDenied

	case CodeUnknownSession, CodeNotFound:
		return codes.NotFound

	case CodeConflict:
		return codes.Aborted

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Aborted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
