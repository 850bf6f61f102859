package tracker

import (
    "errors"
    "fmt"
)

type ErrorKind string

const (
    KindAuth      ErrorKind = "auth"
    KindNotFound  ErrorKind = "not_found"
    KindClient    ErrorKind = "client"
    KindRateLimit ErrorKind = "rate_limit"
    KindTransient ErrorKind = "transient"
)

// APIError classifies a failed tracker call. Auth, not-found and
// malformed-request failures are never retried; rate-limit and
// transient failures are retried inside the client and surface only
// once the attempt budget is spent.
type APIError struct {
    Kind   ErrorKind
    Status int
    Body   string
    Err    error
}

func (e *APIError) Error() string {
    if e.Err != nil { return fmt.Sprintf("tracker: %s: %v", e.Kind, e.Err) }
    return fmt.Sprintf("tracker: %s: status=%d body=%s", e.Kind, e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Retryable() bool { return e.Kind == KindRateLimit || e.Kind == KindTransient }

func IsAuth(err error) bool {
    var ae *APIError
    return errors.As(err, &ae) && ae.Kind == KindAuth
}

func IsRateLimit(err error) bool {
    var ae *APIError
    return errors.As(err, &ae) && ae.Kind == KindRateLimit
}
