package models

import (
	"fmt"
)

const (
	// DefaultMaxPages 默认页面预算
	DefaultMaxPages = 5
	// MaxPagesLimit 页面预算上限
	MaxPagesLimit = 1000
)

// CrawlConfig 爬取配置
type CrawlConfig struct {
	MaxPages           int     `mapstructure:"max_pages" json:"max_pages"`                       // 页面预算 (默认:5)
	Timeout            int     `mapstructure:"timeout" json:"timeout"`                           // 单页超时(秒) (默认:30)
	MaxRedirects       int     `mapstructure:"max_redirects" json:"max_redirects"`               // 最大重定向次数 (默认:5)
	InsecureSkipVerify bool    `mapstructure:"insecure_skip_verify" json:"insecure_skip_verify"` // 跳过TLS证书验证 (默认:true)
	RateLimit          float64 `mapstructure:"rate_limit" json:"rate_limit"`                     // 每秒页面数,0表示不限速
	MaxDuration        int     `mapstructure:"max_duration" json:"max_duration"`                 // 爬取阶段总时长上限(秒),0表示不限
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if c.MaxPages < 1 || c.MaxPages > MaxPagesLimit {
		return fmt.Errorf("页面预算必须在1-%d之间", MaxPagesLimit)
	}
	if c.Timeout < 1 || c.Timeout > 300 {
		return fmt.Errorf("超时时间必须在1-300秒之间")
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 20 {
		return fmt.Errorf("重定向次数必须在0-20之间")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("限速值不能为负数")
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("时长上限不能为负数")
	}
	return nil
}

// StoreConfig 商店与部署目录配置
type StoreConfig struct {
	BaseURL   string `mapstructure:"base_url" json:"base_url"`     // 默认商店URL
	StaticDir string `mapstructure:"static_dir" json:"static_dir"` // 部署后的静态资源目录(pub/static)
	MediaDir  string `mapstructure:"media_dir" json:"media_dir"`   // 媒体目录(pub/media)
}

// AnalysisConfig 资源发现配置
type AnalysisConfig struct {
	ImportantURLs        []string `mapstructure:"important_urls" json:"important_urls"`               // 合并阶段的重要URL模式
	ImportantDirectories []string `mapstructure:"important_directories" json:"important_directories"` // 扫描的重要子目录
	ImportantPatterns    []string `mapstructure:"important_patterns" json:"important_patterns"`       // 主题根目录下的glob模式
	ScanLibraries        bool     `mapstructure:"scan_libraries" json:"scan_libraries"`               // 是否执行文件系统扫描
}
