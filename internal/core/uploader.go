package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// 上传结果消息
const (
	MsgUnsupportedURL = "Unsupported URL format."
	MsgUploaded       = "Successfully uploaded"
)

// DefaultUploadWorkers 默认并行上传数
const DefaultUploadWorkers = 4

// Uploader 单文件上传接口,由 storage.S3Uploader 实现
type Uploader interface {
	Upload(ctx context.Context, localPath, remotePath string) error
}

// BatchUploader 批量上传器
// 把 /static/x 映射到 <staticDir>/x、/media/x 映射到 <mediaDir>/x,远端路径为 x
// 单个文件失败只记入摘要,不中断整批
type BatchUploader struct {
	fs        afero.Fs
	uploader  Uploader
	staticDir string
	mediaDir  string
	workers   int
}

// NewBatchUploader 创建批量上传器
func NewBatchUploader(fs afero.Fs, uploader Uploader, staticDir, mediaDir string, workers int) *BatchUploader {
	if workers < 1 {
		workers = DefaultUploadWorkers
	}
	return &BatchUploader{
		fs:        fs,
		uploader:  uploader,
		staticDir: staticDir,
		mediaDir:  mediaDir,
		workers:   workers,
	}
}

// UploadAll 上传资源列表,Details 与输入顺序一致
func (b *BatchUploader) UploadAll(ctx context.Context, assets []string) *models.UploadSummary {
	utils.Infof("🚀 开始批量上传: %d个资源 (并发: %d)", len(assets), b.workers)
	startTime := time.Now()

	summary := &models.UploadSummary{
		Total:   len(assets),
		Details: make([]models.UploadDetail, len(assets)),
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, assetURL := range assets {
		i, assetURL := i, assetURL
		g.Go(func() error {
			summary.Details[i] = b.uploadOne(gctx, assetURL)
			utils.Debugf("[%d/%d] %s: %s", done.Add(1), len(assets), assetURL, summary.Details[i].Message)
			return nil
		})
	}
	// 各任务从不返回错误
	_ = g.Wait()

	for _, detail := range summary.Details {
		if detail.Success {
			summary.Success++
		} else {
			summary.Failed++
		}
	}
	summary.Duration = time.Since(startTime).Seconds()

	b.printSummary(summary)
	return summary
}

// uploadOne 上传单个资源
func (b *BatchUploader) uploadOne(ctx context.Context, assetURL string) models.UploadDetail {
	detail := models.UploadDetail{URL: assetURL}

	localPath, remotePath, ok := b.mapPath(assetURL)
	if !ok {
		detail.Message = MsgUnsupportedURL
		return detail
	}
	detail.LocalPath = localPath
	detail.RemotePath = remotePath

	if err := ctx.Err(); err != nil {
		detail.Message = fmt.Sprintf("Upload cancelled: %v", err)
		return detail
	}

	exists, err := afero.Exists(b.fs, localPath)
	if err != nil || !exists {
		utils.Errorf("文件不存在: %s", localPath)
		detail.Message = fmt.Sprintf("File not found: %s", localPath)
		return detail
	}

	if err := b.uploader.Upload(ctx, localPath, remotePath); err != nil {
		utils.Errorf("上传失败 [%s]: %v", assetURL, err)
		detail.Message = fmt.Sprintf("Failed to upload: %v", err)
		return detail
	}

	detail.Success = true
	detail.Message = MsgUploaded
	return detail
}

// mapPath 资源路径 → (本地路径, 远端路径)
func (b *BatchUploader) mapPath(assetURL string) (string, string, bool) {
	var root, rel string
	switch {
	case strings.HasPrefix(assetURL, models.StaticRoot):
		root, rel = b.staticDir, strings.TrimPrefix(assetURL, models.StaticRoot)
	case strings.HasPrefix(assetURL, models.MediaRoot):
		root, rel = b.mediaDir, strings.TrimPrefix(assetURL, models.MediaRoot)
	default:
		return "", "", false
	}
	if rel == "" || models.ContainsDotSegment(rel) {
		return "", "", false
	}

	localPath := filepath.Join(root, filepath.FromSlash(rel))
	// 本地路径必须留在根目录内
	inside, err := filepath.Rel(filepath.Clean(root), localPath)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", "", false
	}
	return localPath, rel, true
}

// printSummary 打印上传摘要
func (b *BatchUploader) printSummary(summary *models.UploadSummary) {
	utils.Infof("📊 上传摘要: 总数 %d, ✅ 成功 %d, ❌ 失败 %d, ⏱️ 耗时 %.2f秒",
		summary.Total, summary.Success, summary.Failed, summary.Duration)
	if summary.Failed > 0 {
		utils.Warnf("Upload completed with issues: %d successful, %d failed, %d total.",
			summary.Success, summary.Failed, summary.Total)
	}
}
