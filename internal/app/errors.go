package app

import (
	"errors"
	"fmt"
)

// ErrMissingSource reports a service built without a scoring client.
var ErrMissingSource = errors.New("app: missing source client")

// ErrMissingTarget reports a service built without an Equipe client.
var ErrMissingTarget = errors.New("app: missing target client")

// ErrValidation marks caller mistakes: blank identifiers, empty
// selections. Handlers translate it to a 4xx reply without touching
// either upstream.
var ErrValidation = errors.New("app: validation")

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
