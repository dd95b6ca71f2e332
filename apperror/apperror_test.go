package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("email", "email is required"), http.StatusBadRequest},
		{Unauthenticated("token expired"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{NotFound("crop", "c123"), http.StatusNotFound},
		{Conflict("request already sent"), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
		{nil, http.StatusOK},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWrappedErrorsKeepTheirStatus(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NotFound("pickup", "p9"))
	if got := Status(err); got != http.StatusNotFound {
		t.Fatalf("Status(wrapped) = %d, want 404", got)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("wrapped error lost its sentinel")
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("crop", "c42")
	if err.Error() == "" {
		t.Fatal("empty message")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("NotFound must match ErrNotFound")
	}
}
