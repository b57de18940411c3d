package crawlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

type staticHeaders http.Header

func (h staticHeaders) GetHeaders() (http.Header, error) {
	return http.Header(h), nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html>ua=%s x=%s</html>", r.UserAgent(), r.Header.Get("X-Test"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/br", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		bw.Write([]byte(`<link href="/static/a.css">`))
		bw.Close()
		w.Header().Set("Content-Encoding", "br")
		w.Header().Set("Content-Type", "text/html")
		w.Write(buf.Bytes())
	})
	// /hop/N 依次重定向到 /hop/N-1,/hop/0 返回页面
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/hop/"))
		if err != nil {
			http.Error(w, "bad hop", http.StatusBadRequest)
			return
		}
		if n == 0 {
			w.Write([]byte("arrived"))
			return
		}
		http.Redirect(w, r, "/hop/"+strconv.Itoa(n-1), http.StatusFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.Write([]byte("late"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPageFetcher_Fetch(t *testing.T) {
	srv := newTestServer(t)
	f := NewPageFetcher(FetcherOptions{
		Timeout:      5 * time.Second,
		MaxRedirects: DefaultMaxRedirects,
	})

	res, err := f.Fetch(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
	if !strings.Contains(string(res.Body), "Chrome/120") {
		t.Errorf("应使用桌面浏览器UA, body = %s", res.Body)
	}
	if !strings.HasPrefix(res.ContentType, "text/html") {
		t.Errorf("ContentType = %s", res.ContentType)
	}
}

func TestPageFetcher_Headers(t *testing.T) {
	srv := newTestServer(t)
	f := NewPageFetcher(FetcherOptions{
		Timeout: 5 * time.Second,
		HeaderProvider: staticHeaders{
			"User-Agent": []string{"custom-agent"},
			"X-Test":     []string{"hello"},
		},
	})

	res, err := f.Fetch(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(string(res.Body), "ua=custom-agent x=hello") {
		t.Errorf("自定义头部未生效, body = %s", res.Body)
	}
}

func TestPageFetcher_Non2xx(t *testing.T) {
	srv := newTestServer(t)
	f := NewPageFetcher(FetcherOptions{Timeout: 5 * time.Second})

	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", fe.StatusCode)
	}
	if !IsFetchError(err) {
		t.Error("IsFetchError() 应为 true")
	}
}

func TestPageFetcher_Redirects(t *testing.T) {
	srv := newTestServer(t)
	f := NewPageFetcher(FetcherOptions{Timeout: 5 * time.Second, MaxRedirects: 5})

	tests := []struct {
		name    string
		hops    int
		wantErr bool
	}{
		{"无重定向", 0, false},
		{"3次重定向", 3, false},
		{"5次重定向", 5, false},
		{"6次重定向超限", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.Fetch(context.Background(), fmt.Sprintf("%s/hop/%d", srv.URL, tt.hops))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && string(res.Body) != "arrived" {
				t.Errorf("Body = %s, want arrived", res.Body)
			}
			if err != nil && IsFetchError(err) {
				t.Errorf("重定向超限应是传输错误: %v", err)
			}
		})
	}
}

func TestPageFetcher_Brotli(t *testing.T) {
	srv := newTestServer(t)
	f := NewPageFetcher(FetcherOptions{Timeout: 5 * time.Second})

	res, err := f.Fetch(context.Background(), srv.URL+"/br")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(res.Body) != `<link href="/static/a.css">` {
		t.Errorf("Body = %q", res.Body)
	}
}

func TestPageFetcher_Timeout(t *testing.T) {
	srv := newTestServer(t)
	f := NewPageFetcher(FetcherOptions{Timeout: 200 * time.Millisecond})

	if _, err := f.Fetch(context.Background(), srv.URL+"/slow"); err == nil {
		t.Error("超时应返回错误")
	}
}

func TestPageFetcher_ContextDeadline(t *testing.T) {
	srv := newTestServer(t)
	f := NewPageFetcher(FetcherOptions{Timeout: 30 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := f.Fetch(ctx, srv.URL+"/slow"); err == nil {
		t.Error("截止时间到达后应返回错误")
	}
	if elapsed := time.Since(start); elapsed > 1500*time.Millisecond {
		t.Errorf("Fetch() 耗时 %s, 应在ctx截止时间附近返回", elapsed)
	}
}

func TestRequestTimeout(t *testing.T) {
	deadlineCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		timeout time.Duration
		atMost  time.Duration
		atLeast time.Duration
	}{
		{"无截止时间", context.Background(), 30 * time.Second, 30 * time.Second, 30 * time.Second},
		{"剩余时间更短", deadlineCtx, 30 * time.Second, time.Second, 0},
		{"超时更短", deadlineCtx, 100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requestTimeout(tt.ctx, tt.timeout)
			if got > tt.atMost || got < tt.atLeast {
				t.Errorf("requestTimeout() = %s, want [%s, %s]", got, tt.atLeast, tt.atMost)
			}
		})
	}
}

func TestPageFetcher_CancelledContext(t *testing.T) {
	f := NewPageFetcher(FetcherOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, "http://127.0.0.1:1/")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestDecompressBody(t *testing.T) {
	var br bytes.Buffer
	w := brotli.NewWriter(&br)
	w.Write([]byte("hello"))
	w.Close()

	tests := []struct {
		name     string
		encoding string
		body     []byte
		want     string
		wantErr  bool
	}{
		{"无编码", "", []byte("plain"), "plain", false},
		{"brotli", "br", br.Bytes(), "hello", false},
		{"已解开的gzip", "gzip", []byte("already"), "already", false},
		{"未知编码", "zstd", []byte("raw"), "raw", false},
		{"损坏的gzip", "gzip", []byte{0x1f, 0x8b, 0x00}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decompressBody(tt.encoding, tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decompressBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && string(got) != tt.want {
				t.Errorf("decompressBody() = %q, want %q", got, tt.want)
			}
		})
	}
}
