package tgnvoda

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth means the login page had no csrf token, the portal could not
	// be logged into at all. It does not mean the credentials are wrong.
	ErrAuth = errors.New("csrf token not found on login page")
	// ErrLoginRejected is only returned when login verification is enabled.
	ErrLoginRejected = errors.New("login was not accepted by the portal")
	ErrFormNotFound  = errors.New("counters form not found")
	ErrCsrfMissing   = errors.New("counters form csrf token missing")
	// ErrNoMatchingCounters means none of the requested row ids exist on the
	// counters page, nothing was submitted.
	ErrNoMatchingCounters = errors.New("no counters matched provided readings")
)

// HttpError is returned for any response with a status outside of 2xx and 3xx.
type HttpError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.URL, e.Status)
}
