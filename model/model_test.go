package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Provider = (*MockProvider)(nil)

func TestMockProvider_ScriptedSteps(t *testing.T) {
	boom := errors.New("boom")
	p := NewMockProvider("a").AddError(boom).AddResponse("hello")
	ctx := context.Background()

	_, err := p.Generate(ctx, "one")
	assert.ErrorIs(t, err, boom)

	text, err := p.Generate(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	text, err = p.Generate(ctx, "three")
	require.NoError(t, err)
	assert.Equal(t, "hello", text, "last step repeats")

	assert.Equal(t, 3, p.Calls())
	assert.Equal(t, []string{"one", "two", "three"}, p.Prompts())
	assert.Equal(t, "mock", p.Info().Vendor)
}

func TestMockProvider_EmptyScript(t *testing.T) {
	_, err := NewMockProvider("empty").Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.False(t, IsQuota(err))
}

func TestMockProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewMockProvider("c").AddResponse("never")
	_, err := p.Generate(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.Calls())
}
