package utils

import (
	"io"
	"os"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/schollz/progressbar/v3"
)

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// ProgressBarSink 在终端进度条上展示分析进度
type ProgressBarSink struct {
	bar *progressbar.ProgressBar
}

// NewProgressBarSink 创建进度条接收者,刻度为0-100
func NewProgressBarSink(w io.Writer) *ProgressBarSink {
	return &ProgressBarSink{bar: NewProgressBar(100, "Starting", w)}
}

// Report 实现 models.ProgressSink 接口
func (s *ProgressBarSink) Report(event models.ProgressEvent) {
	desc := event.Status
	if event.Detail != "" {
		desc += ": " + event.Detail
	}
	s.bar.Describe(desc)
	if err := s.bar.Set(event.Percent); err != nil {
		Debugf("更新进度条失败: %v", err)
	}
	if event.Percent >= 100 {
		s.bar.Finish()
	}
	Debugf("进度 %d%% [%s] %s", event.Percent, event.Status, event.Detail)
}

var _ models.ProgressSink = (*ProgressBarSink)(nil)
