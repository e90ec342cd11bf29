package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrAuthentication       = errors.New("provider authentication failed")
	ErrTokenExpired         = errors.New("provider token expired")
	ErrUpstream             = errors.New("upstream provider error")
	ErrUpstreamTimeout      = errors.New("upstream provider timed out")
	ErrSearchFailed         = errors.New("flight search failed")
	ErrFetchFailed          = errors.New("fetch failed")
	ErrBookingFailed        = errors.New("booking failed")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrTransactionIDMissing = errors.New("merchant transaction id is required")
	ErrMissingTraceID       = errors.New("search session trace id is missing or expired")
	ErrNotFound             = errors.New("not found")
	ErrNotSupported         = errors.New("not supported")
	ErrAlreadyTicketed      = errors.New("booking is already ticketed")
	ErrTicketInProgress     = errors.New("ticket issuance already in progress")
)

// Error attaches a user-facing message and an optional cause to one of the
// sentinel kinds above. errors.Is matches both the kind and the cause chain.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

type FetchVariant string

const (
	FetchFareRule       FetchVariant = "rule"
	FetchFareQuote      FetchVariant = "quote"
	FetchSSR            FetchVariant = "ssr"
	FetchBookingDetails FetchVariant = "details"
)

type FetchFailedError struct {
	Variant FetchVariant
	Message string
	Err     error
}

func (e *FetchFailedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("could not fetch %s", e.Variant)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchFailedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// PublicMessage returns the message that is safe to show to API callers.
// Causes (provider payloads, driver errors) are never included.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) {
		if de.Message != "" {
			return de.Message
		}
		return de.Kind.Error()
	}
	var fe *FetchFailedError
	if errors.As(err, &fe) {
		if fe.Message != "" {
			return fe.Message
		}
		return fmt.Sprintf("could not fetch %s", fe.Variant)
	}
	for _, kind := range []error{
		ErrValidation, ErrUpstreamTimeout, ErrAuthentication, ErrTokenExpired, ErrNotFound, ErrMissingTraceID,
		ErrTransactionIDMissing, ErrAlreadyTicketed, ErrTicketInProgress, ErrNotSupported, ErrUpstream,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}
