package provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFromStatus(t *testing.T) {
	cases := []struct {
		code int
		kind ErrorKind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{429, KindRateLimited},
		{500, KindUnavailable},
		{503, KindUnavailable},
		{400, KindRejected},
		{404, KindInvalidResponse},
		{418, KindInvalidResponse},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("status %d", c.code), func(t *testing.T) {
			err := ErrorFromStatus("openai", c.code, []byte("body"))
			assert.Equal(t, c.kind, err.Kind)
			assert.Equal(t, "openai", err.Provider)
			assert.Contains(t, err.Message, fmt.Sprintf("status %d", c.code))
		})
	}
}

func TestErrorRetryable(t *testing.T) {
	assert.True(t, NewError(KindRateLimited, "p", "").Retryable())
	assert.True(t, NewError(KindUnavailable, "p", "").Retryable())
	assert.False(t, NewError(KindAuth, "p", "").Retryable())
	assert.False(t, NewError(KindInvalidResponse, "p", "").Retryable())
	assert.False(t, NewError(KindRejected, "p", "").Retryable())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(KindUnavailable, "fal", cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("generate image: %w", err)
	extracted, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, extracted.Kind)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "openai: auth: bad key", NewError(KindAuth, "openai", "bad key").Error())
	assert.Equal(t, "openai: auth", NewError(KindAuth, "openai", "").Error())
}
