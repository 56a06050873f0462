package client

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the server rejects the credential.
// It deliberately carries no detail about which field was wrong.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError reports a malformed event or request before it reaches
// the outbox. The caller must correct the input; nothing was persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RemoteError reports a non-success response from the central service.
// Local durable state is always left unchanged; the operation is retryable.
type RemoteError struct {
	Op     string
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: server returned status %d", e.Op, e.Status)
}
