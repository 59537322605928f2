package order

import (
	"errors"
	"reflect"
	"testing"
)

func validForm() CheckoutForm {
	return CheckoutForm{
		Product: "Tea Set",
		Price:   12.5,
		Name:    "Ada",
		Email:   "ada@example.com",
		Phone:   "+1 555 0100",
		Address: "1 Loop Rd",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckoutForm)
		want   []string
	}{
		{name: "complete", mutate: func(*CheckoutForm) {}},
		{
			name:   "missing email",
			mutate: func(f *CheckoutForm) { f.Email = "" },
			want:   []string{"Email is required"},
		},
		{
			name:   "malformed email",
			mutate: func(f *CheckoutForm) { f.Email = "not-an-address" },
			want:   []string{"Email is invalid"},
		},
		{
			name:   "no product selected",
			mutate: func(f *CheckoutForm) { f.Product = "" },
			want:   []string{"Product is required"},
		},
		{
			name:   "everything blank",
			mutate: func(f *CheckoutForm) { *f = CheckoutForm{} },
			want: []string{
				"Product is required",
				"Name is required",
				"Email is required",
				"Phone is required",
				"Address is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			err := Validate(f)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected valid form, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected errors.Is ErrValidation")
			}
			if !reflect.DeepEqual(verr.Problems, tt.want) {
				t.Fatalf("problems = %q, want %q", verr.Problems, tt.want)
			}
		})
	}
}

func TestNormalizeTrimsWhitespaceOnlyFields(t *testing.T) {
	f := validForm()
	f.Name = "   "
	f = f.Normalize()

	var verr *ValidationError
	if !errors.As(Validate(f), &verr) {
		t.Fatalf("expected validation error for blank name")
	}
	if len(verr.Problems) != 1 || verr.Problems[0] != "Name is required" {
		t.Fatalf("problems = %q", verr.Problems)
	}
}
