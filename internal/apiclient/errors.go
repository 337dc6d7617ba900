package apiclient

import (
	"context"
	"errors"
	"net"

	"github.com/oneacrefund/fieldops-console/pkg/serrors"
)

var (
	// ErrMissingCredential is returned before any network I/O when no bearer
	// token is available at call time.
	ErrMissingCredential = serrors.NewError("MISSING_CREDENTIAL", "no bearer token available", "Errors.MissingCredential")
	// ErrNetworkFailure covers transport-level failures where no response was
	// received.
	ErrNetworkFailure = serrors.NewError("NETWORK_FAILURE", "request did not complete", "Errors.NetworkFailure")
	// ErrTimeout is a network failure caused by the bounded request deadline.
	ErrTimeout = serrors.NewError("TIMEOUT", "request timed out", "Errors.Timeout")
	// ErrNotFound maps upstream 404 responses.
	ErrNotFound = serrors.NewError("NOT_FOUND", "record not found", "Errors.NotFound")
)

// RejectionError carries the upstream-provided message for non-2xx responses
// so it can be surfaced to the operator verbatim where available.
type RejectionError struct {
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return "upstream rejected the request"
	}
	return e.Message
}

// IsMissingCredential reports whether err is the fail-fast credential error.
func IsMissingCredential(err error) bool {
	var serr *serrors.BaseError
	return errors.As(err, &serr) && serr.Code == ErrMissingCredential.Code
}

// IsNotFound reports whether err maps an upstream 404.
func IsNotFound(err error) bool {
	var serr *serrors.BaseError
	return errors.As(err, &serr) && serr.Code == ErrNotFound.Code
}

// IsRejection extracts the upstream rejection, if any.
func IsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	ok := errors.As(err, &rej)
	return rej, ok
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrNetworkFailure.WithDetail(err.Error())
}
