package staticserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":    {Data: []byte("<h1>home</h1>")},
		"assets/app.js": {Data: []byte("console.log('app')")},
	}
}

func startServer(t *testing.T, s *Server) {
	t.Helper()
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestFrontendHandler(t *testing.T) {
	s := New(Config{}, testFS(), zerolog.Nop())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"root serves index", "/", http.StatusOK, "<h1>home</h1>"},
		{"asset served as-is", "/assets/app.js", http.StatusOK, "console.log('app')"},
		{"client route falls back to index", "/settings/profile", http.StatusOK, "<h1>home</h1>"},
		{"directory falls back to index", "/assets", http.StatusOK, "<h1>home</h1>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			s.Echo().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestFrontendHandler_NoIndex(t *testing.T) {
	s := New(Config{}, fstest.MapFS{"app.js": {Data: []byte("x")}}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFrontendHandler_Head(t *testing.T) {
	s := New(Config{}, testFS(), zerolog.Nop())

	for _, path := range []string{"/", "/assets/app.js", "/settings/profile"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodHead, path, nil)
			rec := httptest.NewRecorder()
			s.Echo().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestHasIndex(t *testing.T) {
	assert.True(t, HasIndex(testFS()))
	assert.False(t, HasIndex(fstest.MapFS{}))
	assert.False(t, HasIndex(fstest.MapFS{"index.html/readme": {Data: []byte("x")}}))
	assert.False(t, HasIndex(nil))
}

func TestStart_EphemeralPort(t *testing.T) {
	s := New(Config{Host: "127.0.0.1"}, testFS(), zerolog.New(zerolog.NewTestWriter(t)))
	assert.Empty(t, s.URL())
	assert.Nil(t, s.Done())

	startServer(t, s)

	assert.NotZero(t, s.Port())
	assert.Equal(t, "http://127.0.0.1:"+strconv.Itoa(s.Port()), s.URL())

	status, body := get(t, s.URL()+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<h1>home</h1>", body)
}

func TestStart_Twice(t *testing.T) {
	s := New(Config{Host: "127.0.0.1"}, testFS(), zerolog.Nop())
	startServer(t, s)

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestStart_BusyPreferredPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	s := New(Config{Host: "127.0.0.1", Port: busyPort}, testFS(), zerolog.Nop())
	startServer(t, s)

	assert.NotEqual(t, busyPort, s.Port())
	status, _ := get(t, s.URL())
	assert.Equal(t, http.StatusOK, status)
}

func TestStart_ReadyTimeoutKeepsServing(t *testing.T) {
	s := New(Config{Host: "127.0.0.1", ReadyTimeout: time.Nanosecond}, testFS(), zerolog.Nop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReady), "got %v", err)
	require.NotEmpty(t, s.URL())

	require.Eventually(t, func() bool {
		resp, err := http.Get(s.URL())
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStart_CancelledContext(t *testing.T) {
	s := New(Config{Host: "127.0.0.1"}, testFS(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShutdown(t *testing.T) {
	s := New(Config{Host: "127.0.0.1"}, testFS(), zerolog.Nop())
	require.NoError(t, s.Shutdown(context.Background()), "shutdown before start is a no-op")

	require.NoError(t, s.Start(context.Background()))
	done := s.Done()
	require.NoError(t, s.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve loop did not exit")
	}
}

func TestNewDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("dist"), 0o644))

	s, err := NewDir(Config{Host: "127.0.0.1"}, dir, zerolog.Nop())
	require.NoError(t, err)
	startServer(t, s)

	status, body := get(t, s.URL())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "dist", body)
}

func TestNewDir_Missing(t *testing.T) {
	_, err := NewDir(Config{}, filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoContent)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewDir(Config{}, file, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoContent)
}
