package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK("요한복음-3-16")
	if r.ID() != "요한복음-3-16" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Status() != StatusOK || r.Err() != nil {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("embedding failed")
	r := NewError("vid1", err)
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{NewOK("a"), NewError("b", errors.New("x")), NewOK("c")})
	if s.Succeeded != 2 || s.Failed != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
