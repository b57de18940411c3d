package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RecoveryAshes/CdnAssetFind/internal/crawlers"
	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/RecoveryAshes/CdnAssetFind/internal/scanner"
	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"golang.org/x/time/rate"
)

// Fetcher 页面获取接口,由 crawlers.PageFetcher 实现
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*crawlers.FetchResult, error)
}

// LibraryScanner 文件系统库扫描接口,由 scanner.LibraryScanner 实现
type LibraryScanner interface {
	Scan() []string
}

// AnalyzerOption 分析器选项
type AnalyzerOption func(*Analyzer)

// WithProgressSink 设置进度接收者
func WithProgressSink(sink models.ProgressSink) AnalyzerOption {
	return func(a *Analyzer) {
		if sink != nil {
			a.sink = sink
		}
	}
}

// WithImportantURLs 替换合并阶段的重要URL模式
func WithImportantURLs(patterns []string) AnalyzerOption {
	return func(a *Analyzer) {
		a.importantURLs = patterns
	}
}

// WithDefaultStoreURL 未传入起始URL时使用的商店地址
func WithDefaultStoreURL(storeURL string) AnalyzerOption {
	return func(a *Analyzer) {
		a.defaultStoreURL = storeURL
	}
}

// WithRateLimit 限制每秒抓取的页面数,<=0 表示不限速
func WithRateLimit(pagesPerSecond float64) AnalyzerOption {
	return func(a *Analyzer) {
		if pagesPerSecond > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(pagesPerSecond), 1)
		} else {
			a.limiter = nil
		}
	}
}

// WithMaxDuration 爬取阶段的总时长上限,到时停止爬取但仍完成合并
// 截止时间随ctx传给 Fetcher,PageFetcher 会据此收紧进行中请求的超时
func WithMaxDuration(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxDuration = d
	}
}

// Analyzer 资源发现的主协调器
// 流程: 扫描库文件 → 深度优先爬取 → 合并重要URL → 排序输出
// 每次 Analyze 新建一个 CrawlSession,同一个 Analyzer 可以顺序执行多次分析
type Analyzer struct {
	fetcher   Fetcher
	libraries LibraryScanner

	sink            models.ProgressSink
	importantURLs   []string
	defaultStoreURL string
	limiter         *rate.Limiter
	maxDuration     time.Duration
}

// NewAnalyzer 创建分析器,libraries 可以为 nil (跳过文件系统扫描)
func NewAnalyzer(fetcher Fetcher, libraries LibraryScanner, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		fetcher:       fetcher,
		libraries:     libraries,
		sink:          models.NopProgressSink{},
		importantURLs: scanner.DefaultImportantURLs,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze 执行一次完整分析
// 配置错误(缺少或无效的URL、无效的重要URL模式)在任何工作开始前返回,不产生进度事件;
// 单个页面失败只记录日志;ctx 取消或意外错误使分析进入 Error 状态,进度以 100/"Error" 结束
func (a *Analyzer) Analyze(ctx context.Context, startURL string, maxPages int) (result *models.AnalysisResult, err error) {
	startURL, err = a.resolveStartURL(startURL)
	if err != nil {
		return nil, err
	}

	if maxPages <= 0 {
		maxPages = models.DefaultMaxPages
	}
	if maxPages > models.MaxPagesLimit {
		utils.Warnf("页面预算 %d 超过上限,使用 %d", maxPages, models.MaxPagesLimit)
		maxPages = models.MaxPagesLimit
	}

	normalizer, err := crawlers.NewNormalizer(startURL)
	if err != nil {
		return nil, err
	}
	matcher, err := scanner.NewImportantURLMatcher(a.importantURLs)
	if err != nil {
		return nil, &models.ConfigError{FilePath: "analysis.important_urls", Cause: err}
	}

	result = models.NewAnalysisResult(startURL, maxPages)
	result.BaseOrigin = normalizer.Origin()
	progress := newProgressTracker(a.sink)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("分析过程中发生意外错误: %v", r)
		}
		if err != nil {
			a.fail(result, progress, err)
		}
	}()

	utils.Infof("🚀 开始分析: %s (页面预算: %d)", startURL, maxPages)
	progress.report("Starting analysis", percentStart, startURL)

	// 扫描库文件
	result.State = models.StateScanningLibraries
	progress.report("Scanning JavaScript libraries", percentScanning, "")
	assets := make(map[string]struct{})
	if a.libraries != nil {
		for _, asset := range a.libraries.Scan() {
			assets[asset] = struct{}{}
		}
	}
	result.LibraryAssets = len(assets)
	progress.report("Libraries scanned", percentLibrariesEnd, fmt.Sprintf("%d library files", len(assets)))

	// 爬取
	result.State = models.StateCrawling
	progress.report("Crawling pages", percentCrawlStart, startURL)
	session := crawlers.NewCrawlSession(startURL, maxPages)
	if err := a.crawl(ctx, session, normalizer, assets, result, progress); err != nil {
		return result, err
	}
	result.VisitedPages = session.Visited()
	result.PagesVisited = session.VisitedCount()
	progress.report("Crawling complete", percentCrawlEnd, fmt.Sprintf("%d pages visited", result.PagesVisited))

	// 合并
	result.State = models.StateMerging
	if added := matcher.Merge(assets); added > 0 {
		utils.Infof("合并了 %d 个重要URL", added)
	}
	result.Assets = sortedAssets(assets)
	result.Stats = models.CategorizeAssets(result.Assets)

	result.State = models.StateDone
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime).Seconds()
	progress.report("Analysis complete", percentDone, fmt.Sprintf("%d assets found", len(result.Assets)))

	utils.Infof("✅ 分析完成: 访问 %d 个页面, 发现 %d 个资源, 耗时 %.2f秒",
		result.PagesVisited, len(result.Assets), result.Duration)
	return result, nil
}

// resolveStartURL 确定起始URL并补齐结尾的 /
func (a *Analyzer) resolveStartURL(startURL string) (string, error) {
	startURL = strings.TrimSpace(startURL)
	if startURL == "" {
		startURL = strings.TrimSpace(a.defaultStoreURL)
	}
	if startURL == "" {
		return "", models.ErrStoreURLRequired
	}
	if err := models.ValidateURL(startURL); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidStoreURL, err)
	}
	return strings.TrimRight(startURL, "/") + "/", nil
}

// crawl 用显式栈做深度优先遍历
// 返回错误表示分析整体失败,单个页面失败不返回错误
func (a *Analyzer) crawl(ctx context.Context, session *crawlers.CrawlSession, normalizer *crawlers.Normalizer,
	assets map[string]struct{}, result *models.AnalysisResult, progress *progressTracker) error {

	assetExtractor := crawlers.NewAssetExtractor(normalizer)
	linkExtractor := crawlers.NewLinkExtractor(normalizer)
	utils.Infof("🕷️ 开始爬取 (只跟随 %s 下的链接)", normalizer.Host())

	crawlCtx := ctx
	if a.maxDuration > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, a.maxDuration)
		defer cancel()
	}

	// stopped 区分调用方取消(致命)和时长上限(正常结束)
	stopped := func() (bool, error) {
		if err := ctx.Err(); err != nil {
			return true, fmt.Errorf("分析被取消: %w", err)
		}
		if crawlCtx.Err() != nil {
			utils.Warnf("⏰ 达到爬取时长上限 %s,停止爬取", a.maxDuration)
			result.Truncated = true
			return true, nil
		}
		return false, nil
	}

	for {
		if stop, err := stopped(); stop {
			return err
		}

		pageURL, ok := session.Pop()
		if !ok {
			break
		}
		if session.IsVisited(pageURL) {
			continue
		}
		if session.Exhausted() {
			utils.Debugf("页面预算已用完 (%d),停止爬取", session.Budget())
			break
		}

		if a.limiter != nil {
			if err := a.limiter.Wait(crawlCtx); err != nil {
				if stop, err := stopped(); stop {
					return err
				}
				// 等待时间会超过截止时间
				utils.Warnf("⏰ 限速等待将超过时长上限,停止爬取")
				result.Truncated = true
				return nil
			}
		}

		if !session.TryVisit(pageURL) {
			continue
		}

		percent := crawlPercent(session.VisitedCount(), session.Budget())
		progress.report("Crawling", percent, pageURL)
		utils.Infof("[%d/%d] 爬取页面: %s", session.VisitedCount(), session.Budget(), pageURL)

		page, err := a.fetcher.Fetch(crawlCtx, pageURL)
		if err != nil {
			if stop, stopErr := stopped(); stop {
				if stopErr == nil {
					result.FailedPages = append(result.FailedPages, pageURL)
				}
				return stopErr
			}
			if crawlers.IsFetchError(err) {
				utils.Warnf("页面响应异常 [%s]: %v", pageURL, err)
			} else {
				utils.Warnf("获取页面失败 [%s]: %v", pageURL, err)
			}
			result.FailedPages = append(result.FailedPages, pageURL)
			continue
		}

		// 相对引用按重定向后的最终地址解析
		base := page.URL
		if base == "" {
			base = pageURL
		}
		body := string(page.Body)

		added := 0
		for _, asset := range assetExtractor.Extract(body, base) {
			if _, exists := assets[asset]; !exists {
				assets[asset] = struct{}{}
				added++
			}
		}
		result.CrawledAssets += added

		links := linkExtractor.Extract(body, base)
		session.Push(links)

		utils.Debugf("页面 %s: 新增 %d 个资源, %d 个链接, 待爬 %d", pageURL, added, len(links), session.PendingCount())
		progress.report("Processing", percent, pageURL)
	}

	return nil
}

// fail 把结果置为 Error 状态并以 100% 结束进度
func (a *Analyzer) fail(result *models.AnalysisResult, progress *progressTracker, err error) {
	result.State = models.StateError
	result.ErrorMessage = err.Error()
	result.Assets = []string{}
	result.Stats = models.AssetStats{}
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime).Seconds()

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		utils.Warnf("分析中止: %v", err)
	} else {
		utils.Errorf("❌ 分析失败: %v", err)
	}
	progress.report("Error", percentDone, err.Error())
}

func sortedAssets(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for asset := range set {
		result = append(result, asset)
	}
	sort.Strings(result)
	return result
}
