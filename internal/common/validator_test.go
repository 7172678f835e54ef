package common

import (
	"errors"
	"testing"
)

func TestValidatorCheck(t *testing.T) {
	v := NewValidator()

	v.Check(true, "ok", "should not appear")
	v.Check(false, "field", "first message")
	v.Check(false, "field", "second message")

	if v.Valid() {
		t.Error("expected validator to be invalid")
	}

	if got := v.Errors["field"]; got != "first message" {
		t.Errorf("expected first message to win, got %q", got)
	}

	if _, ok := v.Errors["ok"]; ok {
		t.Error("passing check must not record an error")
	}
}

func TestValidationErrorUnwrapping(t *testing.T) {
	v := NewValidator()
	v.Check(false, "field", "message")

	err := v.ValidationError()

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatal("expected a ValidationError")
	}

	if validationErr.Errors["field"] != "message" {
		t.Errorf("unexpected errors map: %+v", validationErr.Errors)
	}
}

func TestCheckStringLength(t *testing.T) {
	v := NewValidator()

	testCases := []struct {
		s        string
		min, max int
		expected bool
	}{
		{"", 0, 5, true},
		{"", 1, 5, false},
		{"abc", 3, 3, true},
		{"abcd", 1, 3, false},
	}

	for _, tc := range testCases {
		if got := v.CheckStringLength(tc.s, tc.min, tc.max); got != tc.expected {
			t.Errorf("CheckStringLength(%q, %d, %d) = %v, expected %v", tc.s, tc.min, tc.max, got, tc.expected)
		}
	}
}

func TestPermittedValue(t *testing.T) {
	if !PermittedValue("draft", "draft", "published") {
		t.Error("expected draft to be permitted")
	}

	if PermittedValue("archived", "draft", "published") {
		t.Error("expected archived to be rejected")
	}

	if PermittedValue(3, 1, 2) {
		t.Error("expected 3 to be rejected")
	}
}
