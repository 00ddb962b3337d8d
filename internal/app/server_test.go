//go:build !integration

package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-configurator/config"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:            "0",
		ReadTimeout:     time.Second,
		WriteTimeout:    2 * time.Second,
		ShutdownTimeout: time.Second,
	}
}

func TestNewServer(t *testing.T) {
	cfg := testServerConfig()
	cfg.Port = "8080"

	server := NewServer(http.NotFoundHandler(), cfg)

	assert.Equal(t, ":8080", server.httpServer.Addr)
	assert.Equal(t, time.Second, server.httpServer.ReadTimeout)
	assert.Equal(t, 2*time.Second, server.httpServer.WriteTimeout)
	assert.Equal(t, time.Second, server.shutdownTimeout)
}

func TestServer_ServeUntilCanceled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ready")
	}), testServerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ready", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_DrainsInFlightRequest(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	server := NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		_, _ = io.WriteString(w, "annex")
	}), testServerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	got := make(chan string, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/quotes/Q1/annex")
		if err != nil {
			got <- err.Error()
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		got <- string(b)
	}()

	<-started
	cancel()

	assert.Equal(t, "annex", <-got)
	assert.NoError(t, <-done)
}

func TestServer_RunInvalidAddress(t *testing.T) {
	cfg := testServerConfig()
	cfg.Port = "not-a-port"

	err := NewServer(http.NotFoundHandler(), cfg).Run(context.Background())

	assert.Error(t, err)
}
