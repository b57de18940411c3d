package core

import (
	"sync"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
)

// 进度里程碑
const (
	percentStart        = 5
	percentScanning     = 10
	percentLibrariesEnd = 20
	percentCrawlStart   = 25
	percentCrawlSpan    = 65
	percentCrawlEnd     = 90
	percentDone         = 100
)

// progressTracker 包装 ProgressSink,保证百分比单调不减且不超过100
type progressTracker struct {
	mu   sync.Mutex
	sink models.ProgressSink
	last int
}

func newProgressTracker(sink models.ProgressSink) *progressTracker {
	if sink == nil {
		sink = models.NopProgressSink{}
	}
	return &progressTracker{sink: sink}
}

// report 发送事件,低于已发送值的百分比会被抬高
func (p *progressTracker) report(status string, percent int, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if percent > percentDone {
		percent = percentDone
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.sink.Report(models.ProgressEvent{Status: status, Percent: percent, Detail: detail})
}

// crawlPercent 爬取阶段的百分比: 25 + 65·visited/max,上限90
func crawlPercent(visited, maxPages int) int {
	if maxPages < 1 {
		maxPages = 1
	}
	percent := percentCrawlStart + percentCrawlSpan*visited/maxPages
	if percent > percentCrawlEnd {
		percent = percentCrawlEnd
	}
	return percent
}
