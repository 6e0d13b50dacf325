package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeLimitExceeded Code = "PURCHASE_LIMIT_EXCEEDED"
	CodeStorage       Code = "STORAGE_ERROR"
	CodeGateway       Code = "GATEWAY_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Metadata describes how a failure should surface to the rendering layer.
type Metadata struct {
	Blocking       bool
	UserMessage    string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Blocking:       false,
		UserMessage:    "please review your selection",
		DetailsAllowed: true,
	},
	CodeLimitExceeded: {
		Blocking:       false,
		UserMessage:    "purchase limit reached",
		DetailsAllowed: true,
	},
	CodeStorage: {
		Blocking:       false,
		UserMessage:    "could not save your cart on this device",
		DetailsAllowed: false,
	},
	CodeGateway: {
		Blocking:       true,
		UserMessage:    "cart service is unavailable, please try again",
		DetailsAllowed: false,
	},
	CodeNotFound: {
		Blocking:       false,
		UserMessage:    "item not found",
		DetailsAllowed: false,
	},
	CodeInternal: {
		Blocking:       true,
		UserMessage:    "something went wrong",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
