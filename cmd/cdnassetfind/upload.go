package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/RecoveryAshes/CdnAssetFind/internal/core"
	"github.com/RecoveryAshes/CdnAssetFind/internal/storage"
	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// uploadFrom 资源列表文件
var uploadFrom string

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "把资源列表中的文件上传到对象存储",
	Long: `读取分析报告(analysis_report.json)、资源数组(assets.json)或每行一个路径的文本,
把 /static/ 与 /media/ 下的资源从本地部署目录上传到 upload.bucket。

示例:
  cdnassetfind upload --from output/shop.example.com/reports/assets.json
  cdnassetfind upload --from assets.txt -c configs/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateUploadFile(uploadFrom); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		assets, err := utils.ReadAssetList(afero.NewOsFs(), uploadFrom)
		if err != nil {
			return err
		}
		return runUpload(ctx, assets, filepath.Dir(uploadFrom))
	},
}

// runUpload 批量上传并把摘要写入 reportDir
func runUpload(ctx context.Context, assets []string, reportDir string) error {
	fs := afero.NewOsFs()
	cfg := appConfig.Upload

	s3Uploader, err := storage.NewS3Uploader(ctx, fs, storage.S3Config{
		Bucket:       cfg.Bucket,
		Prefix:       cfg.Prefix,
		Region:       cfg.Region,
		Endpoint:     cfg.Endpoint,
		AccessKey:    cfg.AccessKey,
		SecretKey:    cfg.SecretKey,
		UsePathStyle: cfg.UsePathStyle,
	})
	if err != nil {
		return fmt.Errorf("创建上传器失败: %w", err)
	}

	batch := core.NewBatchUploader(fs, s3Uploader, appConfig.Store.StaticDir, appConfig.Store.MediaDir, cfg.Workers)
	summary := batch.UploadAll(ctx, assets)

	reporter := utils.NewReporter(fs, appConfig.Output.Dir)
	if err := reporter.SaveUpload(reportDir, summary); err != nil {
		utils.Errorf("保存上传报告失败: %v", err)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("上传完成但有失败: 成功 %d, 失败 %d, 总数 %d", summary.Success, summary.Failed, summary.Total)
	}
	utils.Infof("✨ 全部 %d 个文件上传成功", summary.Success)
	return nil
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadFrom, "from", "f", "", "资源列表文件 (必需)")
}
