package gemini

import (
	"errors"
	"fmt"
)

// Gemini status codes as defined in the Gemini spec Appendix 1.
const (
	StatusInput = 10

	StatusSuccess                              = 20
	StatusSuccessEndOfClientCertificateSession = 21

	StatusRedirect          = 30
	StatusRedirectTemporary = 30
	StatusRedirectPermanent = 31

	StatusTemporaryFailure = 40
	StatusUnavailable      = 41
	StatusCGIError         = 42
	StatusProxyError       = 43
	StatusSlowDown         = 44

	StatusPermanentFailure    = 50
	StatusNotFound            = 51
	StatusGone                = 52
	StatusProxyRequestRefused = 53
	StatusBadRequest          = 59

	StatusClientCertificateRequired     = 60
	StatusTransientCertificateRequested = 61
	StatusAuthorisedCertificateRequired = 62
	StatusCertificateNotAccepted        = 63
	StatusFutureCertificateRejected     = 64
	StatusExpiredCertificateRejected    = 65
)

// All the statuses between 10 and 65 that are invalid
var invalidStatuses = []int{
	11, 12, 13, 14, 15, 16, 17, 18, 19,
	22, 23, 24, 25, 26, 27, 28, 29,
	32, 33, 34, 35, 36, 37, 38, 39,
	45, 46, 47, 48, 49,
	54, 55, 56, 57, 58,
}

// SimplifyStatus simplify the response status by omiting the detailed second digit of the status code.
func SimplifyStatus(status int) int {
	return (status / 10) * 10
}

// IsStatusValid checks whether an int status is covered by the spec.
func IsStatusValid(status int) bool {
	if status < 10 || status > 65 {
		return false
	}
	for _, v := range invalidStatuses {
		if status == v {
			return false
		}
	}
	return true
}

// StatusCategory is the coarse class of a status, given by its first digit.
type StatusCategory int

const (
	CategoryInput StatusCategory = iota + 1
	CategorySuccess
	CategoryRedirect
	CategoryTemporaryFailure
	CategoryPermanentFailure
	CategoryClientCertificateRequired
)

func (c StatusCategory) String() string {
	switch c {
	case CategoryInput:
		return "input"
	case CategorySuccess:
		return "success"
	case CategoryRedirect:
		return "redirect"
	case CategoryTemporaryFailure:
		return "temporary failure"
	case CategoryPermanentFailure:
		return "permanent failure"
	case CategoryClientCertificateRequired:
		return "client certificate required"
	default:
		return fmt.Sprintf("unknown category %d", int(c))
	}
}

// Classify returns the category of a two character status code.
// Only the first character is looked at.
func Classify(status string) (StatusCategory, error) {
	if status == "" {
		return 0, &UnknownStatusError{Status: status}
	}
	switch status[0] {
	case '1':
		return CategoryInput, nil
	case '2':
		return CategorySuccess, nil
	case '3':
		return CategoryRedirect, nil
	case '4':
		return CategoryTemporaryFailure, nil
	case '5':
		return CategoryPermanentFailure, nil
	case '6':
		return CategoryClientCertificateRequired, nil
	}
	return 0, &UnknownStatusError{Status: status}
}

// Errors returned by DecodeResponse.
var (
	ErrMissingTerminator = errors.New("server response is missing CRLF")
	ErrHeaderTooShort    = errors.New("header is too short")
	ErrMissingSpace      = errors.New("header is missing space character")
	ErrInvalidEncoding   = errors.New("response is not valid UTF-8")
)

// UnknownStatusError is returned by Classify when the first status digit
// is outside 1-6.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown status returned (%s)", e.Status)
}

// TooManyRedirectsError is returned when a redirect chain is longer than
// the configured limit.
type TooManyRedirectsError struct {
	Limit int
}

func (e *TooManyRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects (%d) exceeded", e.Limit)
}

// StatusError reports a terminal response that the caller treats as a
// failure, such as an out of spec status code.
type StatusError struct {
	Err    error
	Status string
	Meta   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Status %s: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
