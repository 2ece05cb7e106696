package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// recordingTimer fires at once and remembers every wait it was asked for.
type recordingTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func (t *recordingTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

// cancelingTimer cancels the request instead of letting the wait elapse.
type cancelingTimer struct {
	cancel context.CancelFunc
}

func (t *cancelingTimer) Start(time.Duration) { t.cancel() }
func (t *cancelingTimer) Stop()               {}
func (t *cancelingTimer) C() <-chan time.Time { return nil }

// newTestClient returns a client whose backoff waits are recorded instead
// of slept.
func newTestClient(t *testing.T, opts ...func(*Options)) (*Client, *[]time.Duration) {
	t.Helper()
	o := Options{
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialDelay:      10 * time.Millisecond,
			MaxDelay:          15 * time.Millisecond,
			BackoffMultiplier: 2,
		},
		Timeout: 5 * time.Second,
	}
	for _, fn := range opts {
		fn(&o)
	}
	c := New(o)
	timer := &recordingTimer{}
	c.timer = timer
	return c, &timer.waits
}

// flaky serves failStatus for the first n requests and then body.
func flaky(n int, failStatus int, body string) (*httptest.Server, *atomic.Int32) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if int(calls.Add(1)) <= n {
			w.WriteHeader(failStatus)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	return srv, &calls
}

// --- HTTP ---

func TestGetSuccess(t *testing.T) {
	srv, calls := flaky(0, 0, "font")
	defer srv.Close()

	c, _ := newTestClient(t)
	data, err := c.Get(context.Background(), srv.URL+"/a.woff2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "font" || calls.Load() != 1 {
		t.Errorf("Get = %q after %d calls", data, calls.Load())
	}
}

func TestGetRetriesTransientStatus(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusRequestTimeout} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv, calls := flaky(2, status, "ok")
			defer srv.Close()

			c, waits := newTestClient(t)
			data, err := c.Get(context.Background(), srv.URL)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(data) != "ok" || calls.Load() != 3 {
				t.Errorf("Get = %q after %d calls", data, calls.Load())
			}
			if len(*waits) != 2 || (*waits)[0] != 10*time.Millisecond || (*waits)[1] != 15*time.Millisecond {
				t.Errorf("backoff waits = %v, want [10ms 15ms]", *waits)
			}
		})
	}
}

func TestGetDoesNotRetryPermanentStatus(t *testing.T) {
	srv, calls := flaky(10, http.StatusNotFound, "")
	defer srv.Close()

	c, waits := newTestClient(t)
	_, err := c.Get(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("Get error = %v, want 404 StatusError", err)
	}
	if calls.Load() != 1 || len(*waits) != 0 {
		t.Errorf("calls=%d waits=%v, want a single attempt", calls.Load(), *waits)
	}
}

func TestGetGivesUpAfterMaxAttempts(t *testing.T) {
	srv, calls := flaky(10, http.StatusBadGateway, "")
	defer srv.Close()

	c, _ := newTestClient(t)
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Errorf("error %v does not wrap StatusError", err)
	}
	if !strings.Contains(err.Error(), "all 3 attempts failed") {
		t.Errorf("error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestRetryBackOffPolicy(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 4, InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffMultiplier: 2}
	b := cfg.backOff(context.Background())
	b.Reset()
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, backoff.Stop}
	for i, w := range want {
		if got := b.NextBackOff(); got != w {
			t.Errorf("wait %d = %v, want %v", i, got, w)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := cfg.backOff(ctx).NextBackOff(); got != backoff.Stop {
		t.Errorf("canceled policy wait = %v, want Stop", got)
	}

	jittered := DefaultRetryConfig()
	jb := jittered.backOff(context.Background())
	jb.Reset()
	lo, hi := float64(jittered.InitialDelay)*(1-jittered.Jitter), float64(jittered.InitialDelay)*(1+jittered.Jitter)
	if got := float64(jb.NextBackOff()); got < lo || got > hi+1 {
		t.Errorf("jittered first wait = %v, want within [%v, %v]", time.Duration(got), time.Duration(lo), time.Duration(hi))
	}
}

func TestGetStopsWhenContextCanceled(t *testing.T) {
	srv, calls := flaky(10, http.StatusServiceUnavailable, "")
	defer srv.Close()

	c, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.timer = &cancelingTimer{cancel: cancel}
	if _, err := c.Get(ctx, srv.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("Get error = %v, want context.Canceled", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGetRejectsOversizedBody(t *testing.T) {
	srv, _ := flaky(0, 0, "0123456789")
	defer srv.Close()

	c, _ := newTestClient(t, func(o *Options) { o.MaxSize = 4 })
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Error("expected size error")
	}
}

func TestGetSendsUserAgent(t *testing.T) {
	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.UserAgent())
	}))
	defer srv.Close()

	c, _ := newTestClient(t, func(o *Options) { o.UserAgent = "termframe/test" })
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := ua.Load(); got != "termframe/test" {
		t.Errorf("User-Agent = %v", got)
	}
}

// --- Local files ---

func TestGetLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	if err := os.WriteFile(path, []byte("ttf"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := newTestClient(t)
	for _, loc := range []string{path, "file://" + filepath.ToSlash(path)} {
		data, err := c.Get(context.Background(), loc)
		if err != nil || string(data) != "ttf" {
			t.Errorf("Get(%q) = %q, %v", loc, data, err)
		}
	}
	if _, err := c.Get(context.Background(), filepath.Join(t.TempDir(), "missing.ttf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

// --- Classification ---

func TestIsTemporary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"503", &StatusError{StatusCode: 503}, true},
		{"425", &StatusError{StatusCode: 425}, true},
		{"403", &StatusError{StatusCode: 403}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTemporary(tt.err); got != tt.want {
				t.Errorf("IsTemporary(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/a.ttf": true,
		"http://example.com/a.ttf":  true,
		"file:///tmp/a.ttf":         false,
		"/tmp/a.ttf":                false,
		"fonts/a.ttf":               false,
	}
	for loc, want := range tests {
		if got := IsRemote(loc); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", loc, got, want)
		}
	}
}
