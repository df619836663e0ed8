package web

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServer_StartStopIdempotent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	srv := NewServer("127.0.0.1:0", handler, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stopped, err := srv.Stop(ctx)
	require.NoError(t, err)
	assert.False(t, stopped, "stop on a stopped server is a no-op")

	started, err := srv.Start()
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, srv.Running())

	started, err = srv.Start()
	require.NoError(t, err)
	assert.False(t, started, "start on a running server is a no-op")

	resp, err := http.Get("http://" + srv.Addr())
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	stopped, err = srv.Stop(ctx)
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.False(t, srv.Running())

	stopped, err = srv.Stop(ctx)
	require.NoError(t, err)
	assert.False(t, stopped)
}

func TestServer_Restart(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		started, err := srv.Start()
		require.NoError(t, err)
		assert.True(t, started)

		stopped, err := srv.Stop(ctx)
		require.NoError(t, err)
		assert.True(t, stopped)
	}
}

func TestServer_StartBindError(t *testing.T) {
	first := NewServer("127.0.0.1:0", http.NotFoundHandler(), zap.NewNop())
	_, err := first.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = first.Stop(context.Background()) })

	second := NewServer(first.Addr(), http.NotFoundHandler(), zap.NewNop())
	started, err := second.Start()

	assert.Error(t, err)
	assert.False(t, started)
	assert.False(t, second.Running())
}
