package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ErrValidation, http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"not authorized", ErrNotAuthorized, http.StatusForbidden},
		{"invalid state", ErrInvalidState, http.StatusConflict},
		{"duplicate bid", ErrDuplicateBid, http.StatusConflict},
		{"wrapped validation", fmt.Errorf("%w: title is required", ErrValidation), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("job %q: %w", "j1", ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("pg connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
