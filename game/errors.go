package game

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found in the room")
	ErrUnauthorized   = errors.New("session does not match the player")
	ErrInvalidState   = errors.New("operation not allowed in current room state")

	// ErrNoEligibleChallenge is returned when the redraw loop exhausts
	// every tier without finding a sex-compatible challenge.
	ErrNoEligibleChallenge = errors.New("no eligible challenge for this room")

	// errIncompatibleChallenge drives the selection retry loop. It never
	// escapes the engine.
	errIncompatibleChallenge = errors.New("challenge incompatible with player sexes")
)

// ValidationError reports malformed creation or update parameters.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func validationErr(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
