package farkle

import apperrors "github.com/xtding233/farkle-backend/internal/errors"

// Domain failures. All of them are caller errors: the state is left as it
// was and the message is surfaced to the player.
var (
	ErrInvalidHold      = apperrors.New(apperrors.CodeInvalidHold, "invalid dice held")
	ErrFarkleHold       = apperrors.New(apperrors.CodeFarkleHoldNotAllowed, "held after farkle not allowed")
	ErrMustHold         = apperrors.New(apperrors.CodeMustHoldOrFarkle, "no dice held")
	ErrFarkleUnresolved = apperrors.New(apperrors.CodeFarkleUnresolved, "cannot roll after farkle")
	ErrNotFarkled       = apperrors.New(apperrors.CodeNotFarkled, "cannot unfarkle")
	ErrNoActiveWager    = apperrors.New(apperrors.CodeNoActiveWager, "cannot roll without a bet")
	ErrGameOver         = apperrors.New(apperrors.CodeGameAlreadyOver, "game not started")
	ErrGameInProgress   = apperrors.New(apperrors.CodeGameInProgress, "game in progress")
	ErrTurnEnded        = apperrors.New(apperrors.CodeTurnAlreadyEnded, "turn already ended")
	ErrTutorialComplete = apperrors.New(apperrors.CodeTutorialComplete, "tutorial complete")
	ErrPowerUpUsed      = apperrors.New(apperrors.CodePowerUpAlreadyUsed, "power-up already used")
	ErrNoTokens         = apperrors.New(apperrors.CodeInsufficientCurrency, "not enough boosts")
	ErrNoGems           = apperrors.New(apperrors.CodeInsufficientCurrency, "not enough gems")
	ErrInvalidAmount    = apperrors.New(apperrors.CodeInvalidAmount, "amount must be positive")
	ErrInvalidMode      = apperrors.New(apperrors.CodeInvalidMode, "unknown game mode")
)
