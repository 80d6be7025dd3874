package domain

import (
	"errors"
	"fmt"

	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
)

var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidInput     = errors.New("invalid input")
)

// DecodeError marks a day whose summary payload was present but could not be
// decoded (malformed base64 or invalid JSON). It is distinct from an absent
// or empty summary, which is a valid "no sleep tracked" day.
type DecodeError struct {
	Date  dateutil.Date
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode summary for %s: %v", e.Date, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// TransportError marks a day whose raw payload could not be fetched at all.
type TransportError struct {
	Date  dateutil.Date
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch summary for %s: %v", e.Date, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}
