package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_SetTypeAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"validation", NewValidationError("bad input"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("club"), ErrorTypeNotFound, http.StatusNotFound},
		{"aggregation", NewAggregationError(errors.New("boom")), ErrorTypeAggregation, http.StatusInternalServerError},
		{"internal", NewInternalError("oops"), ErrorTypeInternal, http.StatusInternalServerError},
		{"unavailable", NewUnavailableError("entity-store"), ErrorTypeUnavailable, http.StatusServiceUnavailable},
		{"store", NewStoreError("query", errors.New("throttled")), ErrorTypeStore, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.True(t, IsType(tt.err, tt.typ))
		})
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("x")))
	assert.True(t, IsNotFound(NewNotFoundError("x")))
	assert.True(t, IsAggregation(NewAggregationError(errors.New("x"))))

	plain := errors.New("plain")
	assert.False(t, IsValidation(plain))
	assert.False(t, IsAppError(plain))
	assert.True(t, IsAppError(NewInternalError("x")))
}

func TestWithCodeAndDetails(t *testing.T) {
	err := NewValidationError("bad parameter").
		WithCode("VALIDATION_ERROR").
		WithDetails(map[string]interface{}{"includeInactive": "maybe"})

	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, "maybe", err.Details["includeInactive"])
}

func TestWrap_PreservesAppErrorType(t *testing.T) {
	inner := NewAggregationError(errors.New("store down"))
	wrapped := Wrap(inner, "get graph data")

	require.True(t, IsAggregation(wrapped))
	appErr := GetAppError(wrapped)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Message, "get graph data")
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	wrapped := Wrapf(errors.New("dial tcp"), "load tunables from %q", "/etc/tunables.json")

	require.True(t, IsType(wrapped, ErrorTypeInternal))
	assert.True(t, errors.Is(wrapped, GetAppError(wrapped).Cause))
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

func TestUnwrap_ExposesCause(t *testing.T) {
	cause := errors.New("throttled")
	err := NewUnavailableError("entity-store").WithCause(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "caused by")
}
