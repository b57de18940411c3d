package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/core"
	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
)

// ValidateURL 验证URL格式
func ValidateURL(urlStr string) error {
	return models.ValidateURL(urlStr)
}

// ValidateFlags 验证命令行标志和合并后的配置
// targetURL 可以为空,此时使用配置中的 store.base_url
func ValidateFlags(targetURL string, pages int, config *core.Config) error {
	if targetURL != "" {
		if err := ValidateURL(targetURL); err != nil {
			return fmt.Errorf("无效的商店URL: %w", err)
		}
	} else if config.Store.BaseURL != "" {
		if err := ValidateURL(config.Store.BaseURL); err != nil {
			return fmt.Errorf("无效的 store.base_url: %w", err)
		}
	}

	if pages < 0 || pages > models.MaxPagesLimit {
		return fmt.Errorf("页面数必须在1-%d之间,当前值: %d", models.MaxPagesLimit, pages)
	}

	if err := config.Crawl.Validate(); err != nil {
		return fmt.Errorf("爬取配置无效: %w", err)
	}

	if config.Upload.Workers < 0 || config.Upload.Workers > 64 {
		return fmt.Errorf("上传并发数必须在1-64之间,当前值: %d", config.Upload.Workers)
	}

	return nil
}

// ValidateUploadFile 验证资源列表文件路径
func ValidateUploadFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("资源列表路径不能为空 (--from)")
	}
	// 文件存在性检查将在读取时进行
	return nil
}

// NormalizeURL 规范化URL
// 没有协议时默认使用https
func NormalizeURL(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}
