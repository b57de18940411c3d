package utils

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/spf13/afero"
)

// ReadAssetList 读取资源列表
// 支持三种格式: 分析报告(analysis_report.json)、资源数组(assets.json)、每行一个路径的文本
// 文本格式跳过空行和 # 注释,不在资源根下的行保留,由上传阶段报告为失败
func ReadAssetList(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("打开资源列表失败: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	var assets []string
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		var result models.AnalysisResult
		if err := result.FromJSON(trimmed); err != nil {
			return nil, fmt.Errorf("解析分析报告失败: %w", err)
		}
		assets = result.Assets

	case bytes.HasPrefix(trimmed, []byte("[")):
		if err := json.Unmarshal(trimmed, &assets); err != nil {
			return nil, fmt.Errorf("解析资源数组失败: %w", err)
		}

	default:
		scanner := bufio.NewScanner(bytes.NewReader(trimmed))
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if !models.IsAssetPath(line) {
				Warnf("资源路径不在 /static/ 或 /media/ 下 (行 %d): %s", lineNum, line)
			}
			assets = append(assets, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("读取资源列表失败: %w", err)
		}
	}

	if len(assets) == 0 {
		return nil, fmt.Errorf("资源列表为空: %s", path)
	}

	Infof("从 %s 加载了 %d 个资源", path, len(assets))
	return assets, nil
}
