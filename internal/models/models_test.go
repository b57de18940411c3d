package models

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTP URL", "http://example.com", false},
		{"有效的HTTPS URL", "https://example.com", false},
		{"带路径的URL", "https://example.com/path/to/resource", false},
		{"无效的协议", "ftp://example.com", true},
		{"无效的URL", "not a url", true},
		{"空URL", "", true},
		{"无协议", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCrawlConfig_Validate(t *testing.T) {
	valid := CrawlConfig{MaxPages: 5, Timeout: 30, MaxRedirects: 5}

	tests := []struct {
		name    string
		mutate  func(c *CrawlConfig)
		wantErr bool
	}{
		{"有效配置", func(c *CrawlConfig) {}, false},
		{"预算为0", func(c *CrawlConfig) { c.MaxPages = 0 }, true},
		{"预算过大", func(c *CrawlConfig) { c.MaxPages = MaxPagesLimit + 1 }, true},
		{"预算上限", func(c *CrawlConfig) { c.MaxPages = MaxPagesLimit }, false},
		{"超时过小", func(c *CrawlConfig) { c.Timeout = 0 }, true},
		{"超时过大", func(c *CrawlConfig) { c.Timeout = 301 }, true},
		{"不允许重定向", func(c *CrawlConfig) { c.MaxRedirects = 0 }, false},
		{"重定向过多", func(c *CrawlConfig) { c.MaxRedirects = 21 }, true},
		{"负限速", func(c *CrawlConfig) { c.RateLimit = -1 }, true},
		{"负时长上限", func(c *CrawlConfig) { c.MaxDuration = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsAssetPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/static/frontend/a.js", true},
		{"/media/logo.png", true},
		{"/Static/a.js", false},
		{"/staticx/a.js", false},
		{"static/a.js", false},
		{"/catalog/product", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsAssetPath(tt.path); got != tt.want {
				t.Errorf("IsAssetPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestContainsDotSegment(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/static/frontend/a.js", false},
		{"/static/../secret", true},
		{"/static/./a.js", true},
		{"/static/a/..", true},
		{"/static/..a/b.js", false},
		{"/static/a.min.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ContainsDotSegment(tt.path); got != tt.want {
				t.Errorf("ContainsDotSegment(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCategorizeAssets(t *testing.T) {
	assets := []string{
		"/static/a.js",
		"/static/b.css",
		"/media/c.png",
		"/media/d.JPG",
		"/static/e.svg",
		"/static/f.woff2",
		"/static/g.otf",
		"/static/h.json",
		"/static/i.js?v=1",
	}

	got := CategorizeAssets(assets)
	want := AssetStats{JS: 2, CSS: 1, Images: 2, Fonts: 2, Other: 2, Total: 9}
	if got != want {
		t.Errorf("CategorizeAssets() = %+v, want %+v", got, want)
	}

	if got.JS+got.CSS+got.Images+got.Fonts+got.Other != got.Total {
		t.Error("分类数量之和应等于总数")
	}
}

func TestCategorizeAssets_Empty(t *testing.T) {
	if got := CategorizeAssets(nil); got != (AssetStats{}) {
		t.Errorf("CategorizeAssets(nil) = %+v, want zero", got)
	}
}

func TestCliHeaders_Parse(t *testing.T) {
	tests := []struct {
		name    string
		input   CliHeaders
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "单个头部",
			input: CliHeaders{"Cookie: a=b"},
			want:  map[string]string{"Cookie": "a=b"},
		},
		{
			name:  "值中含冒号",
			input: CliHeaders{"Referer: https://example.com/"},
			want:  map[string]string{"Referer": "https://example.com/"},
		},
		{
			name:  "后者覆盖前者",
			input: CliHeaders{"X-Test: 1", "X-Test: 2"},
			want:  map[string]string{"X-Test": "2"},
		},
		{
			name:  "前后空格",
			input: CliHeaders{"  User-Agent  :  Mozilla/5.0  "},
			want:  map[string]string{"User-Agent": "Mozilla/5.0"},
		},
		{
			name:  "值中间的空格保留",
			input: CliHeaders{"X-Custom: value with spaces"},
			want:  map[string]string{"X-Custom": "value with spaces"},
		},
		{name: "缺少冒号", input: CliHeaders{"NoColon"}, wantErr: true},
		{name: "空名称", input: CliHeaders{": value"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			for k, v := range tt.want {
				if got.Get(k) != v {
					t.Errorf("Parse()[%s] = %q, want %q", k, got.Get(k), v)
				}
			}
		})
	}
}

func TestAnalysisResult_JSON(t *testing.T) {
	result := NewAnalysisResult("https://shop.example/", 5)
	result.Assets = []string{"/static/a.js", "/media/b.png"}
	result.Stats = CategorizeAssets(result.Assets)
	result.State = StateDone

	if result.ID == "" {
		t.Fatal("分析ID不应为空")
	}

	data, err := result.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(data), `"store_url": "https://shop.example/"`) {
		t.Errorf("JSON缺少store_url字段: %s", data)
	}

	var decoded AnalysisResult
	if err := decoded.FromJSON(data); err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if decoded.ID != result.ID || decoded.State != StateDone || len(decoded.Assets) != 2 {
		t.Errorf("解码结果不匹配: %+v", decoded)
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("bad yaml")
	err := &ConfigError{FilePath: "config.yaml", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("ConfigError 应可展开到底层错误")
	}
}

func TestProgressFunc(t *testing.T) {
	var got []ProgressEvent
	var sink ProgressSink = ProgressFunc(func(e ProgressEvent) { got = append(got, e) })
	sink.Report(ProgressEvent{Status: "Crawling", Percent: 25})
	NopProgressSink{}.Report(ProgressEvent{Percent: 100})

	if len(got) != 1 || got[0].Percent != 25 {
		t.Errorf("ProgressFunc 收到 %+v", got)
	}
}
