package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

const (
	// DefaultFetchTimeout 单页超时
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxRedirects 最大重定向次数
	DefaultMaxRedirects = 5

	// DefaultUserAgent 默认User-Agent(桌面Chrome)
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	fetchResultKey = "fetch_result"
)

// FetchResult 页面获取结果
type FetchResult struct {
	URL         string // 最终URL(跟随重定向之后)
	StatusCode  int
	ContentType string
	Body        []byte
}

// FetchError 非2xx响应
type FetchError struct {
	URL        string
	StatusCode int
}

// Error 实现error接口
func (e *FetchError) Error() string {
	return fmt.Sprintf("HTTP状态码 %d: %s", e.StatusCode, e.URL)
}

// FetcherOptions 页面获取器选项
type FetcherOptions struct {
	Timeout            time.Duration
	MaxRedirects       int
	InsecureSkipVerify bool
	HeaderProvider     models.HeaderProvider
}

// FetcherOptionsFromConfig 从爬取配置生成选项
func FetcherOptionsFromConfig(cfg models.CrawlConfig, headers models.HeaderProvider) FetcherOptions {
	return FetcherOptions{
		Timeout:            time.Duration(cfg.Timeout) * time.Second,
		MaxRedirects:       cfg.MaxRedirects,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		HeaderProvider:     headers,
	}
}

// PageFetcher 基于Colly的页面获取器
// 同步逐页获取,每次调用的结果通过colly.Context带回
type PageFetcher struct {
	// mu 串行化请求,单次请求的超时会按ctx截止时间收紧
	mu        sync.Mutex
	collector *colly.Collector
	opts      FetcherOptions
}

// NewPageFetcher 创建页面获取器
func NewPageFetcher(opts FetcherOptions) *PageFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxRedirects < 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}

	// 自定义HTTP客户端,允许自签名证书(预发布/内网环境)
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: opts.InsecureSkipVerify,
			},
		},
		Timeout: opts.Timeout,
	}

	// 不使用colly的访问记录,去重由CrawlSession负责
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(DefaultUserAgent),
	)
	c.ParseHTTPErrorResponse = true
	c.SetClient(httpClient)
	c.SetRequestTimeout(opts.Timeout)

	maxRedirects := opts.MaxRedirects
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("重定向次数超过限制(%d)", maxRedirects)
		}
		return nil
	})

	f := &PageFetcher{collector: c, opts: opts}
	f.setupCallbacks()

	utils.Debugf("页面获取器: 超时=%s, 最大重定向=%d, 跳过证书验证=%v",
		opts.Timeout, opts.MaxRedirects, opts.InsecureSkipVerify)
	return f
}

// setupCallbacks 设置Colly回调
func (f *PageFetcher) setupCallbacks() {
	f.collector.OnResponse(func(r *colly.Response) {
		body := r.Body
		if encoding := r.Headers.Get("Content-Encoding"); encoding != "" {
			decoded, err := decompressBody(encoding, r.Body)
			if err != nil {
				utils.Warnf("解压响应失败 [%s] (编码=%s): %v", r.Request.URL, encoding, err)
			} else {
				body = decoded
			}
		}

		r.Ctx.Put(fetchResultKey, &FetchResult{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        body,
		})
	})

	f.collector.OnError(func(r *colly.Response, err error) {
		utils.Debugf("请求失败 [%s]: %v", r.Request.URL, err)
	})
}

// Fetch 获取单个页面
// 2xx 返回页面内容;非2xx返回 *FetchError;超时、重定向超限等传输错误原样包装返回
// ctx 带截止时间时,本次请求的超时取 Timeout 和剩余时间中较小的一个
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	timeout := requestTimeout(ctx, f.opts.Timeout)
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	f.collector.SetRequestTimeout(timeout)

	hdr := make(http.Header)
	if f.opts.HeaderProvider != nil {
		headers, err := f.opts.HeaderProvider.GetHeaders()
		if err != nil {
			return nil, fmt.Errorf("获取HTTP头部失败: %w", err)
		}
		for name, values := range headers {
			if len(values) > 0 {
				hdr.Set(name, values[0])
			}
		}
	}

	collyCtx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, pageURL, nil, collyCtx, hdr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("获取页面失败 [%s]: %w", pageURL, ctxErr)
		}
		return nil, fmt.Errorf("获取页面失败 [%s]: %w", pageURL, err)
	}

	result, ok := collyCtx.GetAny(fetchResultKey).(*FetchResult)
	if !ok {
		return nil, fmt.Errorf("获取页面失败 [%s]: 没有响应", pageURL)
	}
	if result.StatusCode < 200 || result.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, StatusCode: result.StatusCode}
	}
	return result, nil
}

// requestTimeout 单次请求超时,不超过ctx的剩余时间
func requestTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return remaining
		}
	}
	return timeout
}

// IsFetchError 判断是否为非2xx响应错误
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// decompressBody 根据Content-Encoding解压响应体
// gzip 通常已由Colly解开,只有仍带gzip魔数时才再解压
func decompressBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip", "x-gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()
		return readAll(reader, "gzip")

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()
		return readAll(reader, "deflate")

	case "br":
		return readAll(brotli.NewReader(bytes.NewReader(body)), "brotli")

	case "", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}

func readAll(r io.Reader, name string) ([]byte, error) {
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s读取失败: %w", name, err)
	}
	return decoded, nil
}
