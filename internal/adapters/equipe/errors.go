package equipe

import (
	"errors"
	"fmt"
)

// ErrUpstreamStatus reports a non-200 reply from an Equipe read endpoint.
var ErrUpstreamStatus = errors.New("equipe: unexpected status")

// ErrEmptyMeetingURL reports a request without a meeting URL.
var ErrEmptyMeetingURL = errors.New("equipe: empty meeting url")

func statusError(operation string, code int) error {
	return fmt.Errorf("%w: %s returned %d", ErrUpstreamStatus, operation, code)
}
