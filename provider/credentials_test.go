package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var (
	_ Credentials = EnvCredentials{}
	_ Credentials = StaticCredentials{}
	_ Credentials = ChainCredentials{}
	_ Credentials = (*FileCredentials)(nil)
)

func TestEnvCredentials(t *testing.T) {
	t.Setenv("TRAVEL_TEST_KEY", "  abc  ")
	t.Setenv("TRAVEL_TEST_BLANK", "   ")

	v, ok := EnvCredentials{}.Lookup("TRAVEL_TEST_KEY")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = EnvCredentials{}.Lookup("TRAVEL_TEST_BLANK")
	assert.False(t, ok)
}

func TestChainCredentials_FirstWins(t *testing.T) {
	chain := ChainCredentials{nil, StaticCredentials{"A": ""}, StaticCredentials{"A": "second"}, StaticCredentials{"A": "third"}}
	v, ok := chain.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	_, ok = chain.Lookup("B")
	assert.False(t, ok)
}

func TestFileCredentials_LoadAndMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.yaml")

	fc, err := NewFileCredentials(path, nil)
	require.NoError(t, err)
	_, ok := fc.Lookup("GEMINI_API_KEY")
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY: AIza-test\n"), 0o600))
	require.NoError(t, fc.Load())
	v, ok := fc.Lookup("GEMINI_API_KEY")
	assert.True(t, ok)
	assert.Equal(t, "AIza-test", v)

	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY: [unclosed\n"), 0o600))
	assert.Error(t, fc.Load())
}

func TestFileCredentials_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.yaml")
	require.NoError(t, os.WriteFile(path, []byte("XAI_API_KEY: old\n"), 0o600))

	fc, err := NewFileCredentials(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fc.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("XAI_API_KEY: new\n"), 0o600))

	assert.Eventually(t, func() bool {
		v, _ := fc.Lookup("XAI_API_KEY")
		return v == "new"
	}, 5*time.Second, 20*time.Millisecond)
}
