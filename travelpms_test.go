package travelpms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namancryu/TravelPMS/config"
	"github.com/namancryu/TravelPMS/core"
	"github.com/namancryu/TravelPMS/provider"
)

func TestNew_OfflineChat(t *testing.T) {
	tp, err := New(func(o *Options) { o.Credentials = provider.StaticCredentials{} })
	require.NoError(t, err)
	assert.Equal(t, provider.MockName, tp.Registry().ActiveProvider())

	ctx := context.Background()
	res := tp.Chat(ctx, "s1", "가족 4명이서 오키나와 가고 싶어요", nil)
	assert.NotEmpty(t, res.Response)
	assert.Equal(t, provider.MockName, res.Provider)
	assert.Equal(t, "오키나와", res.Context.Destination)
	assert.Equal(t, 4, res.Context.TravelerCount)

	sel, err := tp.Select(ctx, "s1", "japan-okinawa")
	require.NoError(t, err)
	assert.Equal(t, core.StateComplete, sel.State)

	sess, err := tp.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, core.StateComplete, sess.State)
	assert.Equal(t, 1, sess.MessageCount)
}

func TestNew_ActiveProviderFromCredentials(t *testing.T) {
	tp, err := New(func(o *Options) {
		o.Credentials = provider.StaticCredentials{"GROQ_API_KEY": "test-key"}
	})
	require.NoError(t, err)
	assert.Equal(t, "groq", tp.Engine().ActiveProvider())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(func(o *Options) {
		o.Config = config.Default()
		o.Config.Budget.SafetyRatio = 0
	})
	require.Error(t, err)

	_, err = New(func(o *Options) {
		o.Config = config.Default()
		o.Config.CatalogFile = "testdata/does-not-exist.yaml"
	})
	require.Error(t, err)
}

func TestDestinationNames(t *testing.T) {
	tp, err := New(func(o *Options) { o.Credentials = provider.StaticCredentials{} })
	require.NoError(t, err)

	names := destinationNames(tp.Catalog())
	seen := map[string]int{}
	for _, n := range names {
		seen[n]++
	}
	for n, c := range seen {
		assert.Equal(t, 1, c, n)
	}
	assert.Contains(t, names, "오키나와")
}

func TestHandler(t *testing.T) {
	tp, err := New(func(o *Options) { o.Credentials = provider.StaticCredentials{} })
	require.NoError(t, err)

	srv := httptest.NewServer(tp.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
