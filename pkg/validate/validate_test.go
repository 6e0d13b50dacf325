package validate

import (
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
)

type samplePayload struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1,max=10"`
}

func TestStructAcceptsValidPayload(t *testing.T) {
	t.Parallel()

	if err := Struct(samplePayload{Name: "hoodie", Quantity: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructMapsFieldErrors(t *testing.T) {
	t.Parallel()

	err := Struct(samplePayload{Quantity: 11})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected detail map, got %T", typed.Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected name message %q", details["name"])
	}
	if details["quantity"] != "must be at most 10" {
		t.Fatalf("unexpected quantity message %q", details["quantity"])
	}
}
