package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	flaky    int32
	missing  int32
	inflight int32
	peak     int32
	agents   sync.Map
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.agents.Store(r.UserAgent(), true)

		switch r.URL.Path {
		case "/missing":
			atomic.AddInt32(&ts.missing, 1)
			http.NotFound(w, r)
		case "/flaky":
			if atomic.AddInt32(&ts.flaky, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("recovered"))
		case "/slow":
			current := atomic.AddInt32(&ts.inflight, 1)
			for {
				peak := atomic.LoadInt32(&ts.peak)
				if current <= peak || atomic.CompareAndSwapInt32(&ts.peak, peak, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&ts.inflight, -1)
			_, _ = w.Write([]byte("slow"))
		default:
			_, _ = w.Write([]byte("content of " + r.URL.Path))
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig() Config {
	return Config{
		MaxConnections: 2,
		UserAgent:      "podarchive-test",
		Timeout:        5 * time.Second,
		Retries:        2,
		RetryBackoff:   time.Millisecond,
	}
}

func TestDownloaderRun(t *testing.T) {
	srv := newTestServer(t)
	dir := filepath.Join(t.TempDir(), "meta")

	dl := New(srv.Client(), testConfig())
	dl.Enqueue(srv.URL+"/a.mp3", dir, "a.mp3")
	dl.Enqueue(srv.URL+"/missing", dir, "b.mp3")
	assert.Equal(t, 2, dl.Pending())

	results := dl.Run(context.Background())

	require.Equal(t, []string{filepath.Join(dir, "a.mp3")}, results.Completed)
	require.Len(t, results.Errors, 1)
	assert.Equal(t, srv.URL+"/missing", results.Errors[0].URL)
	assert.Equal(t, filepath.Join(dir, "b.mp3"), results.Errors[0].Path)
	assert.Error(t, results.Err())

	data, err := os.ReadFile(filepath.Join(dir, "a.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "content of /a.mp3", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no partial files expected")

	// Permanent failures are not retried
	assert.EqualValues(t, 1, atomic.LoadInt32(&srv.missing))

	_, ok := srv.agents.Load("podarchive-test")
	assert.True(t, ok)

	// Queue is drained
	assert.Equal(t, 0, dl.Pending())
	assert.Empty(t, dl.Run(context.Background()).Completed)
}

func TestDownloaderEnqueueIdempotent(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()

	dl := New(srv.Client(), testConfig())
	dl.Enqueue(srv.URL+"/first", dir, "file")
	dl.Enqueue(srv.URL+"/second", dir, "file")
	assert.Equal(t, 1, dl.Pending())

	results := dl.Run(context.Background())
	require.Len(t, results.Completed, 1)
	assert.NoError(t, results.Err())

	data, err := os.ReadFile(filepath.Join(dir, "file"))
	require.NoError(t, err)
	assert.Equal(t, "content of /second", string(data))
}

func TestDownloaderOverwrites(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "podcast.rss"), []byte("stale"), 0644))

	dl := New(srv.Client(), testConfig())
	dl.Enqueue(srv.URL+"/feed", dir, "podcast.rss")
	require.Len(t, dl.Run(context.Background()).Completed, 1)

	data, err := os.ReadFile(filepath.Join(dir, "podcast.rss"))
	require.NoError(t, err)
	assert.Equal(t, "content of /feed", string(data))
}

func TestDownloaderRetriesTransientFailures(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()

	dl := New(srv.Client(), testConfig())
	dl.Enqueue(srv.URL+"/flaky", dir, "flaky.mp3")

	results := dl.Run(context.Background())
	require.NoError(t, results.Err())
	assert.EqualValues(t, 2, atomic.LoadInt32(&srv.flaky))

	data, err := os.ReadFile(filepath.Join(dir, "flaky.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(data))
}

func TestDownloaderMaxConnections(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()

	dl := New(srv.Client(), testConfig())
	for _, name := range []string{"1", "2", "3", "4", "5", "6"} {
		dl.Enqueue(srv.URL+"/slow", dir, name)
	}

	results := dl.Run(context.Background())
	assert.Len(t, results.Completed, 6)
	assert.LessOrEqual(t, atomic.LoadInt32(&srv.peak), int32(2))
}

func TestDownloaderCancelled(t *testing.T) {
	srv := newTestServer(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dl := New(srv.Client(), testConfig())
	dl.Enqueue(srv.URL+"/a.mp3", dir, "a.mp3")

	results := dl.Run(ctx)
	assert.Empty(t, results.Completed)
	require.Len(t, results.Errors, 1)

	_, err := os.Stat(filepath.Join(dir, "a.mp3"))
	assert.True(t, os.IsNotExist(err))
}
