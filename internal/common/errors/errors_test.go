// internal/common/errors/errors_test.go
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("fetch: %w", NewJobCorpusUnavailableError(stderrors.New("es down")))
	assert.Equal(t, ErrCodeJobCorpusUnavailable, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
}

func TestNewEmbeddingError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"deadline", context.DeadlineExceeded, ErrCodeEmbeddingTimeout},
		{"canceled", fmt.Errorf("batch 2: %w", context.Canceled), ErrCodeEmbeddingTimeout},
		{"other", stderrors.New("model not loaded"), ErrCodeEmbeddingFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmbeddingError(tt.err)
			assert.Equal(t, tt.want, e.Code)
			assert.True(t, e.Retryable)
			assert.ErrorIs(t, e, tt.err)
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable keeps budget", func(t *testing.T) {
		std := NewActivitySourceUnavailableError(stderrors.New("pg down")).WithMetadata("email", "a@b.io")
		b := ConvertToBPMNError(std)
		assert.Equal(t, "ACTIVITY_SOURCE_UNAVAILABLE", b.Code)
		assert.Equal(t, 3, b.Retries)
		assert.Equal(t, "pg down", b.Details)

		vars := b.ToErrorVariables()
		assert.Equal(t, "a@b.io", vars["email"])
		assert.Equal(t, "ACTIVITY_SOURCE_UNAVAILABLE", vars["originalErrorCode"])
		assert.Equal(t, true, vars["retryable"])
	})

	t.Run("invalid request is thrown", func(t *testing.T) {
		b := ConvertToBPMNError(NewInvalidRequestError("missing or empty: skills"))
		assert.Equal(t, "INVALID_REQUEST", b.Code)
		assert.Zero(t, b.Retries)
		assert.False(t, b.Retryable)
	})

	t.Run("unmapped code passes through", func(t *testing.T) {
		b := ConvertToBPMNError(NewTimeoutError("zeebe", stderrors.New("slow")))
		assert.Equal(t, "TIMEOUT_ERROR", b.Code)
		assert.Equal(t, 2, b.Retries)
	})
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeInvalidRequest))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeNoRecommendations))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeJobCorpusUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeEmbeddingTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeInternal))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATA_SOURCE", GetErrorCategory(ErrCodeJobCorpusUnavailable))
	assert.Equal(t, "EMBEDDING", GetErrorCategory(ErrCodeEmbeddingFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRequest))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeExternalService))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeBusinessRule))
}

func TestStandardErrorAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewInvalidJobDocumentError("job_id empty"))
	std, ok := AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, "job_id empty", std.Details)
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(std.Code))
}
