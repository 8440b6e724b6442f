package hippodata

import (
	"errors"
	"fmt"
)

// ErrUpstreamStatus reports a non-200 reply from the scoring API.
var ErrUpstreamStatus = errors.New("hippodata: unexpected status")

// ErrEmptyBaseURL reports a client built without a base URL.
var ErrEmptyBaseURL = errors.New("hippodata: empty base url")

func statusError(operation string, code int) error {
	return fmt.Errorf("%w: %s returned %d", ErrUpstreamStatus, operation, code)
}
