package httpserver_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
)

// reserveAddr grabs a free loopback port and releases it for the server
// under test.
func reserveAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func runServer(ctx context.Context, srv *httpserver.Server, h http.Handler) <-chan error {
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, h) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop in time")
		return nil
	}
}

func waitListening(t *testing.T, addr string) {
	t.Helper()

	for range 100 {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			_ = conn.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s never started listening", addr)
}

func TestServerLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("serves until the context is cancelled", func(t *testing.T) {
		t.Parallel()

		addr := reserveAddr(t)
		srv := httpserver.New(
			httpserver.WithAddr(addr),
			httpserver.WithShutdownTimeout(100*time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := runServer(ctx, srv, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
		waitListening(t, addr)

		resp, err := http.Get("http://" + addr)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.Equal(t, "ok", string(body))

		cancel()
		require.NoError(t, waitDone(t, done))
	})

	t.Run("shutdown unblocks run", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		srv := httpserver.New(
			httpserver.WithAddr(reserveAddr(t)),
			httpserver.WithShutdownTimeout(100*time.Millisecond),
			httpserver.WithStartHook(func(_ *slog.Logger) { close(started) }),
		)

		done := runServer(context.Background(), srv, http.NewServeMux())
		<-started
		require.NoError(t, srv.Shutdown(context.Background()))
		require.NoError(t, waitDone(t, done))
	})

	t.Run("second run on the same server is rejected", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		srv := httpserver.New(
			httpserver.WithAddr(reserveAddr(t)),
			httpserver.WithShutdownTimeout(50*time.Millisecond),
			httpserver.WithStartHook(func(_ *slog.Logger) { close(started) }),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := runServer(ctx, srv, nil)
		<-started

		err := srv.Run(context.Background(), nil)
		assert.ErrorIs(t, err, httpserver.ErrStart)

		cancel()
		require.NoError(t, waitDone(t, done))
	})

	t.Run("shutdown is idempotent", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		srv := httpserver.New(
			httpserver.WithAddr(reserveAddr(t)),
			httpserver.WithShutdownTimeout(50*time.Millisecond),
			httpserver.WithStartHook(func(_ *slog.Logger) { close(started) }),
		)

		done := runServer(context.Background(), srv, http.NewServeMux())
		<-started
		require.NoError(t, srv.Shutdown(context.Background()))
		require.NoError(t, srv.Shutdown(context.Background()))
		require.NoError(t, waitDone(t, done))
	})

	t.Run("nil handler answers 404", func(t *testing.T) {
		t.Parallel()

		addr := reserveAddr(t)
		srv := httpserver.New(
			httpserver.WithAddr(addr),
			httpserver.WithShutdownTimeout(100*time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := runServer(ctx, srv, nil)
		waitListening(t, addr)

		resp, err := http.Get("http://" + addr)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		cancel()
		require.NoError(t, waitDone(t, done))
	})
}

// Not parallel: the signal is delivered process-wide and would stop
// sibling servers mid-test.
func TestSignalShutdown(t *testing.T) {
	addr := reserveAddr(t)
	srv := httpserver.New(
		httpserver.WithAddr(addr),
		httpserver.WithShutdownTimeout(50*time.Millisecond),
	)

	done := runServer(context.Background(), srv, http.NewServeMux())
	waitListening(t, addr)

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGTERM))

	require.NoError(t, waitDone(t, done))
}

func TestStartFailures(t *testing.T) {
	t.Parallel()

	t.Run("malformed address", func(t *testing.T) {
		t.Parallel()

		srv := httpserver.New(httpserver.WithAddr(":-1"))
		err := srv.Run(context.Background(), http.NewServeMux())
		require.Error(t, err)
		assert.ErrorIs(t, err, httpserver.ErrStart)
	})

	t.Run("port already bound", func(t *testing.T) {
		t.Parallel()

		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		t.Cleanup(func() { _ = l.Close() })

		srv := httpserver.New(httpserver.WithAddr(l.Addr().String()))
		err = srv.Run(context.Background(), http.NewServeMux())
		require.Error(t, err)
		assert.ErrorIs(t, err, httpserver.ErrStart)
	})
}

func TestHooksAndOptions(t *testing.T) {
	t.Parallel()

	t.Run("start and stop hooks fire exactly once", func(t *testing.T) {
		t.Parallel()

		var starts, stops atomic.Int32
		started := make(chan struct{})
		srv := httpserver.New(
			httpserver.WithAddr(reserveAddr(t)),
			httpserver.WithShutdownTimeout(50*time.Millisecond),
			httpserver.WithStartHook(func(_ *slog.Logger) {
				starts.Add(1)
				close(started)
			}),
			httpserver.WithStopHook(func(_ *slog.Logger) { stops.Add(1) }),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := runServer(ctx, srv, nil)
		<-started
		cancel()
		require.NoError(t, waitDone(t, done))

		// An explicit Shutdown after the run must not rerun the hooks.
		require.NoError(t, srv.Shutdown(context.Background()))
		assert.EqualValues(t, 1, starts.Load())
		assert.EqualValues(t, 1, stops.Load())
	})

	t.Run("options land on a caller-supplied server", func(t *testing.T) {
		t.Parallel()

		addr := reserveAddr(t)
		hs := &http.Server{}
		started := make(chan struct{})
		srv := httpserver.New(
			httpserver.WithServer(hs),
			httpserver.WithAddr(addr),
			httpserver.WithReadTimeout(time.Second),
			httpserver.WithWriteTimeout(2*time.Second),
			httpserver.WithIdleTimeout(3*time.Second),
			httpserver.WithShutdownTimeout(50*time.Millisecond),
			httpserver.WithStartHook(func(_ *slog.Logger) { close(started) }),
		)

		done := runServer(context.Background(), srv, http.NewServeMux())
		<-started
		assert.Equal(t, addr, hs.Addr)
		assert.Equal(t, time.Second, hs.ReadTimeout)
		assert.Equal(t, 2*time.Second, hs.WriteTimeout)
		assert.Equal(t, 3*time.Second, hs.IdleTimeout)
		assert.NotNil(t, hs.Handler)

		require.NoError(t, srv.Shutdown(context.Background()))
		require.NoError(t, waitDone(t, done))
	})

	t.Run("values preset on the server win over options", func(t *testing.T) {
		t.Parallel()

		presetAddr := reserveAddr(t)
		hs := &http.Server{Addr: presetAddr, ReadTimeout: 250 * time.Millisecond}
		started := make(chan struct{})
		srv := httpserver.New(
			httpserver.WithServer(hs),
			httpserver.WithAddr(reserveAddr(t)),
			httpserver.WithReadTimeout(9*time.Second),
			httpserver.WithShutdownTimeout(50*time.Millisecond),
			httpserver.WithStartHook(func(_ *slog.Logger) { close(started) }),
		)

		done := runServer(context.Background(), srv, nil)
		<-started
		assert.Equal(t, presetAddr, hs.Addr)
		assert.Equal(t, 250*time.Millisecond, hs.ReadTimeout)
		waitListening(t, presetAddr)

		require.NoError(t, srv.Shutdown(context.Background()))
		require.NoError(t, waitDone(t, done))
	})

	t.Run("logger reaches the hooks", func(t *testing.T) {
		t.Parallel()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		got := make(chan *slog.Logger, 1)
		srv := httpserver.New(
			httpserver.WithAddr(reserveAddr(t)),
			httpserver.WithShutdownTimeout(50*time.Millisecond),
			httpserver.WithLogger(logger),
			httpserver.WithStartHook(func(l *slog.Logger) { got <- l }),
		)

		done := runServer(context.Background(), srv, nil)
		assert.Same(t, logger, <-got)

		require.NoError(t, srv.Shutdown(context.Background()))
		require.NoError(t, waitDone(t, done))
	})
}

func TestOptionValidation(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]func(){
		"empty addr":                func() { httpserver.WithAddr("") },
		"negative read timeout":     func() { httpserver.WithReadTimeout(-time.Second) },
		"negative write timeout":    func() { httpserver.WithWriteTimeout(-time.Second) },
		"negative idle timeout":     func() { httpserver.WithIdleTimeout(-time.Second) },
		"negative shutdown timeout": func() { httpserver.WithShutdownTimeout(-time.Second) },
		"nil server":                func() { httpserver.WithServer(nil) },
		"nil start hook":            func() { httpserver.WithStartHook(nil) },
		"nil stop hook":             func() { httpserver.WithStopHook(nil) },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, fn)
		})
	}

	t.Run("nil logger is accepted", func(t *testing.T) {
		t.Parallel()
		assert.NotPanics(t, func() { httpserver.WithLogger(nil) })
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	addr := reserveAddr(t)
	started := make(chan struct{})
	srv := httpserver.NewFromConfig(httpserver.Config{
		Addr:            addr,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Minute,
		ShutdownTimeout: 100 * time.Millisecond,
	}, httpserver.WithStartHook(func(_ *slog.Logger) { close(started) }))

	done := runServer(context.Background(), srv, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	<-started
	waitListening(t, addr)

	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, waitDone(t, done))
}
