package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_NoKeyIsUnavailable(t *testing.T) {
	client, err := NewClient(context.Background(), nil, "  ")
	require.NoError(t, err)
	assert.False(t, client.Available())

	_, err = client.Generate(context.Background(), Request{Prompt: "hi"})
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), nil, "")
	require.Error(t, err)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := &Error{Message: "failed to generate content", Cause: cause}
	assert.Equal(t, "llm error: failed to generate content: quota exceeded", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "llm error: empty", (&Error{Message: "empty"}).Error())
}
