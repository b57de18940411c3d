package utils

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/spf13/afero"
)

// 报告文件名
const (
	AnalysisReportFile = "analysis_report.json"
	AssetListFile      = "assets.json"
	UploadReportFile   = "upload_report.json"
)

// Reporter 报告生成器
// 报告写入 <outputDir>/<host>/reports/
type Reporter struct {
	fs        afero.Fs
	outputDir string
}

// NewReporter 创建报告生成器
func NewReporter(fs afero.Fs, outputDir string) *Reporter {
	return &Reporter{fs: fs, outputDir: outputDir}
}

// ReportsDir 返回某个店铺的报告目录
func (r *Reporter) ReportsDir(storeURL string) string {
	return filepath.Join(r.outputDir, hostDirName(storeURL), "reports")
}

// SaveAnalysis 保存分析报告和资源列表,返回报告目录
func (r *Reporter) SaveAnalysis(result *models.AnalysisResult) (string, error) {
	reportsDir := r.ReportsDir(result.StoreURL)
	if err := r.fs.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	if err := r.saveJSONReport(reportsDir, AnalysisReportFile, result); err != nil {
		return "", err
	}
	if err := r.saveJSONReport(reportsDir, AssetListFile, result.Assets); err != nil {
		return "", err
	}

	Infof("✅ 报告已生成: %s", reportsDir)
	return reportsDir, nil
}

// SaveUpload 把上传摘要保存到 dir
func (r *Reporter) SaveUpload(dir string, summary *models.UploadSummary) error {
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}
	if err := r.saveJSONReport(dir, UploadReportFile, summary); err != nil {
		return err
	}
	Infof("✅ 上传报告已生成: %s", filepath.Join(dir, UploadReportFile))
	return nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	path := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}
	if err := afero.WriteFile(r.fs, path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// hostDirName 把店铺URL的主机部分转成目录名,端口的冒号换成下划线
func hostDirName(storeURL string) string {
	host := storeURL
	if parsed, err := url.Parse(storeURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	host = strings.NewReplacer(":", "_", "/", "_").Replace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
