package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("node \"x\""), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("taken"), ErrorTypeConflict, http.StatusConflict},
		{"data integrity", NewDataIntegrityError("corrupt", cause), ErrorTypeDataIntegrity, http.StatusUnprocessableEntity},
		{"unauthorized", NewUnauthorizedError(""), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{"internal", NewInternalError("oops"), ErrorTypeInternal, http.StatusInternalServerError},
		{"database", NewDatabaseError("put", cause), ErrorTypeDatabase, http.StatusInternalServerError},
		{"external", NewExternalError("eventbridge", cause), ErrorTypeExternal, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.True(t, IsType(fmt.Errorf("wrapped: %w", tt.err), tt.typ))
		})
	}
}

func TestErrorChain(t *testing.T) {
	cause := errors.New("timeout")
	err := NewDatabaseError("get", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: timeout")
	assert.Nil(t, GetAppError(cause))
	assert.False(t, IsNotFound(nil))
	assert.Equal(t, "unauthorized", NewUnauthorizedError("").Message)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))

	wrapped := Wrap(NewValidationError("label too long"), "rename")
	assert.True(t, IsValidation(wrapped))
	assert.Equal(t, "rename: label too long", GetAppError(wrapped).Message)

	plain := Wrapf(errors.New("disk"), "save %s", "m1")
	assert.True(t, IsType(plain, ErrorTypeInternal))
	assert.Equal(t, "save m1", GetAppError(plain).Message)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "cannot delete root", UserMessage(NewValidationError("cannot delete root"), "fallback"))
	assert.Equal(t, "plain", UserMessage(errors.New("plain"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(nil, "fallback"))
}
