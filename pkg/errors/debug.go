package errors

import (
	"errors"
	"fmt"
)

// ErrorDump is a log-friendly flattening of an error chain.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UserMessage string `json:"user_message,omitempty"`
	Details     any    `json:"details,omitempty"`
}

// Dump walks the error chain and extracts the typed code, its user-facing
// metadata, and the full unwrap trail for diagnostics.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
		meta := MetadataFor(te.Code())
		d.UserMessage = meta.UserMessage
		if meta.DetailsAllowed {
			d.Details = te.Details()
		}
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	return d
}
