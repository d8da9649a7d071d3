package dberrors

import "testing"

func TestErrorKindsWrapMessages(t *testing.T) {
	err := ErrLookup.New("no such table foo")
	if !ErrLookup.Is(err) {
		t.Fatal("ErrLookup.Is should recognize an error it created")
	}
	if ErrSchema.Is(err) {
		t.Fatal("ErrSchema.Is should not match an ErrLookup error")
	}
}

func TestErrParseFormatsFields(t *testing.T) {
	err := ErrParse.New(12, "WHERE or ORDER BY", "FOO")
	if err == nil {
		t.Fatal("expected non-nil error")
	}
	if !ErrParse.Is(err) {
		t.Fatal("ErrParse.Is should recognize its own error")
	}
}
