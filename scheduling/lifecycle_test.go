package scheduling

import (
	"errors"
	"testing"
)

func TestTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCanceled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCanceled},
	}
	for _, tr := range allowed {
		if err := Transition(tr.from, tr.to); err != nil {
			t.Errorf("%s -> %s should be allowed, got %v", tr.from, tr.to, err)
		}
	}

	denied := []struct{ from, to string }{
		{StatusPending, StatusCompleted},
		{StatusCompleted, StatusConfirmed},
		{StatusCompleted, StatusCanceled},
		{StatusCanceled, StatusCanceled},
		{StatusCanceled, StatusPending},
		{StatusConfirmed, StatusPending},
	}
	for _, tr := range denied {
		if err := Transition(tr.from, tr.to); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s -> %s should be rejected, got %v", tr.from, tr.to, err)
		}
	}
}

func TestTerminal(t *testing.T) {
	if Terminal(StatusPending) || Terminal(StatusConfirmed) {
		t.Error("pending and confirmed are not terminal")
	}
	if !Terminal(StatusCompleted) || !Terminal(StatusCanceled) {
		t.Error("completed and canceled are terminal")
	}
}

func TestInstitutionAdvance(t *testing.T) {
	if !InstitutionAdvance(StatusPending, StatusConfirmed) {
		t.Error("institutions confirm pending reservations")
	}
	if !InstitutionAdvance(StatusConfirmed, StatusCompleted) {
		t.Error("institutions complete confirmed reservations")
	}
	if InstitutionAdvance(StatusPending, StatusCanceled) {
		t.Error("cancellation must go through the cancel path, not status advance")
	}
	if InstitutionAdvance(StatusCompleted, StatusConfirmed) {
		t.Error("terminal states cannot be advanced")
	}
}
