package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", NotFound("Document not found with id: %d", 7), http.StatusNotFound, "Document not found with id: 7"},
		{"bad input", BadInput("invalid id"), http.StatusBadRequest, "invalid id"},
		{"conflict", Conflict("username already exists"), http.StatusConflict, "username already exists"},
		{"unauthorized", Unauthorized("Invalid username or password"), http.StatusUnauthorized, "Invalid username or password"},
		{"forbidden", Forbidden("Account is inactive"), http.StatusForbidden, "Account is inactive"},
		{"internal hides cause", Internal(errors.New("dial tcp: refused"), "list users"), http.StatusInternalServerError, "internal server error"},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
		{"wrapped domain error", fmt.Errorf("get user: %w", NotFound("user not found")), http.StatusNotFound, "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.ToErrorResponse().Error)
		})
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(cause, KindConflict, "email already exists")

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(nil, KindConflict))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(cause))
	assert.Equal(t, "email already exists: duplicate key", err.Error())
}
