package crawlers

import (
	"errors"
	"testing"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer("https://shop.example/")
	if err != nil {
		t.Fatalf("NewNormalizer() error = %v", err)
	}
	return n
}

func TestNewNormalizer(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		origin  string
		wantErr bool
	}{
		{"带路径", "https://shop.example/en/", "https://shop.example", false},
		{"带端口", "http://127.0.0.1:8080", "http://127.0.0.1:8080", false},
		{"不支持的协议", "ftp://shop.example/", "", true},
		{"缺少主机", "/static/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNormalizer(tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewNormalizer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, models.ErrInvalidStoreURL) {
					t.Errorf("错误应包装 ErrInvalidStoreURL: %v", err)
				}
				return
			}
			if n.Origin() != tt.origin {
				t.Errorf("Origin() = %v, want %v", n.Origin(), tt.origin)
			}
		})
	}
}

func TestNormalizer_AssetPath(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name    string
		ref     string
		pageURL string
		want    string
		wantOK  bool
	}{
		{"绝对路径", "/static/frontend/a.js", "https://shop.example/", "/static/frontend/a.js", true},
		{"同源绝对URL", "https://shop.example/media/logo.png", "", "/media/logo.png", true},
		{"外域static路径", "https://cdn.other.example/static/x.png", "", "/static/x.png", true},
		{"协议相对", "//cdn.other.example/media/y.jpg", "", "/media/y.jpg", true},
		{"去掉查询串", "/static/a.css?v=123#top", "", "/static/a.css", true},
		{"相对页面目录", "b.js", "https://shop.example/static/frontend/a.js", "/static/frontend/b.js", true},
		{"上级目录", "../fonts/x.woff", "https://shop.example/static/frontend/css/s.css", "/static/frontend/fonts/x.woff", true},
		{"相对但不在资源根", "b.js", "https://shop.example/catalog/item", "", false},
		{"data URI", "data:image/png;base64,AAAA", "", "", false},
		{"大写DATA", "DATA:text/plain,x", "", "", false},
		{"大小写敏感", "/Static/a.js", "", "", false},
		{"非资源路径", "/checkout/cart", "", "", false},
		{"非http协议", "ftp://shop.example/static/a.js", "", "", false},
		{"空引用", "  ", "", "", false},
		{"编码的上级目录", "/static/%2e%2e/%2e%2e/secret/id_rsa.png", "", "", false},
		{"大写编码的上级目录", "https://cdn.other.example/media/%2E%2E/app/etc/env.php", "", "", false},
		{"编码的当前目录", "/static/%2e/a.js", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.AssetPath(tt.ref, tt.pageURL)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("AssetPath(%q) = (%q, %v), want (%q, %v)", tt.ref, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizer_ResolveLink(t *testing.T) {
	n := newTestNormalizer(t)
	page := "https://shop.example/catalog/item.html"

	tests := []struct {
		name   string
		ref    string
		want   string
		wantOK bool
	}{
		{"绝对路径", "/about", "https://shop.example/about", true},
		{"同源绝对URL", "https://shop.example/contact?x=1", "https://shop.example/contact?x=1", true},
		{"相对当前目录", "other.html", "https://shop.example/catalog/other.html", true},
		{"去掉片段", "/faq#shipping", "https://shop.example/faq", true},
		{"空路径补斜杠", "https://shop.example", "https://shop.example/", true},
		{"外域", "https://other.example/about", "", false},
		{"外域资源路径", "https://other.example/static/a.js", "", false},
		{"资源路径", "/static/frontend/a.js", "", false},
		{"媒体路径", "/media/catalog/p.jpg", "", false},
		{"纯片段", "#top", "", false},
		{"javascript", "javascript:void(0)", "", false},
		{"mailto", "mailto:info@shop.example", "", false},
		{"tel", "TEL:+100", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.ResolveLink(tt.ref, page)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ResolveLink(%q) = (%q, %v), want (%q, %v)", tt.ref, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
