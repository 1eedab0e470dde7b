package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorIsMatchesByCode(t *testing.T) {
	err := NewEmptyInputError("resume")
	wrapped := fmt.Errorf("evaluate: %w", err)

	assert.True(t, IsEmptyInput(err))
	assert.True(t, IsEmptyInput(wrapped))
	assert.False(t, IsInsufficientText(wrapped))
	assert.True(t, IsInputError(wrapped))
	assert.Equal(t, "resume", err.Context["field"])
}

func TestIsInputError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", NewInsufficientTextError("job_description"), true},
		{"ai", NewAIError(ErrCodeEmbeddingFailed, "boom", nil), false},
		{"plain", fmt.Errorf("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInputError(tt.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewAIError(ErrCodeEmbeddingFailed, "embedding request failed", cause)

	assert.Equal(t, "EMBEDDING_FAILED: embedding request failed (caused by: connection reset)", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		assert.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.Error(t, err)
}
