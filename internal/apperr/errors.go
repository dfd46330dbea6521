package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by who can correct it.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

type Code string

const (
	CodeInternal   Code = "INTERNAL_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeValidation Code = "VALIDATION_ERROR"

	CodeOrderNotFound          Code = "ORDER_NOT_FOUND"
	CodePaymentNotFound        Code = "PAYMENT_NOT_FOUND"
	CodeProductNotFound        Code = "PRODUCT_NOT_FOUND"
	CodeProductTypeNotFound    Code = "PRODUCT_TYPE_NOT_FOUND"
	CodeProductPriceNotFound   Code = "PRODUCT_PRICE_NOT_FOUND"
	CodePriceNotFound          Code = "PRICE_NOT_FOUND"
	CodePriceNotResolvable     Code = "PRICE_NOT_RESOLVABLE"
	CodeDuplicateLine          Code = "DUPLICATE_LINE"
	CodeVersionRequired        Code = "VERSION_REQUIRED"
	CodeConcurrentModification Code = "CONCURRENT_MODIFICATION"
)

type Error struct {
	Kind    Kind   `json:"-"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the error kind onto the status the gateway answers with.
func (e *Error) HTTPStatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(code Code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Validation(code Code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Validationf(code Code, format string, args ...interface{}) *Error {
	return Validation(code, fmt.Sprintf(format, args...))
}

func Conflict(code Code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Internal wraps a storage or infrastructure failure. Already classified
// errors pass through untouched.
func Internal(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// As returns the classified error, wrapping anything unknown as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal server error", Err: err}
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}
