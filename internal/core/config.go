package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/RecoveryAshes/CdnAssetFind/internal/scanner"
	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀,例如 CDNASSETFIND_CRAWL_MAX_PAGES
const EnvPrefix = "CDNASSETFIND"

// Config 应用程序配置
type Config struct {
	Crawl    models.CrawlConfig    `mapstructure:"crawl"`
	Store    models.StoreConfig    `mapstructure:"store"`
	Analysis models.AnalysisConfig `mapstructure:"analysis"`
	HTTP     HTTPConfig            `mapstructure:"http"`
	Upload   UploadConfig          `mapstructure:"upload"`
	Logging  utils.LogConfig       `mapstructure:"logging"`
	Output   OutputConfig          `mapstructure:"output"`
}

// HTTPConfig 页面请求配置
type HTTPConfig struct {
	Headers map[string]string `mapstructure:"headers"` // 自定义请求头部,覆盖默认值
}

// UploadConfig 上传配置
type UploadConfig struct {
	Workers      int    `mapstructure:"workers"`        // 并行上传数
	Bucket       string `mapstructure:"bucket"`         // 目标存储桶
	Region       string `mapstructure:"region"`         // 区域
	Endpoint     string `mapstructure:"endpoint"`       // 自定义端点(兼容S3的CDN存储)
	AccessKey    string `mapstructure:"access_key"`     // 为空时使用默认凭证链
	SecretKey    string `mapstructure:"secret_key"`     //
	Prefix       string `mapstructure:"prefix"`         // 对象键前缀
	UsePathStyle bool   `mapstructure:"use_path_style"` // 路径风格寻址
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadConfig 加载配置文件
// configPath 为空时依次搜索 ./configs、当前目录和 ~/.cdnassetfind,找不到则使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		// 显式指定的文件必须存在
		if _, err := os.Stat(configPath); err != nil {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".cdnassetfind"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 爬取
	v.SetDefault("crawl.max_pages", models.DefaultMaxPages)
	v.SetDefault("crawl.timeout", 30)
	v.SetDefault("crawl.max_redirects", 5)
	v.SetDefault("crawl.insecure_skip_verify", true)
	v.SetDefault("crawl.rate_limit", 0)
	v.SetDefault("crawl.max_duration", 0)

	// 商店
	v.SetDefault("store.base_url", "")
	v.SetDefault("store.static_dir", "pub/static")
	v.SetDefault("store.media_dir", "pub/media")

	// 资源发现
	v.SetDefault("analysis.scan_libraries", true)
	v.SetDefault("analysis.important_urls", scanner.DefaultImportantURLs)
	v.SetDefault("analysis.important_directories", scanner.DefaultImportantDirectories)
	v.SetDefault("analysis.important_patterns", scanner.DefaultImportantPatterns)

	// 上传
	v.SetDefault("upload.workers", 4)
	v.SetDefault("upload.region", "us-east-1")

	// 日志
	defaults := utils.DefaultLogConfig()
	v.SetDefault("logging.level", defaults.Level)
	v.SetDefault("logging.dir", defaults.LogDir)
	v.SetDefault("logging.max_size", defaults.MaxSize)
	v.SetDefault("logging.max_backups", defaults.MaxBackups)
	v.SetDefault("logging.max_age", defaults.MaxAge)
	v.SetDefault("logging.compress", defaults.Compress)
	v.SetDefault("logging.console", defaults.Console)

	// 输出
	v.SetDefault("output.dir", "output")
}

// MergeCLIFlags 合并命令行参数到配置,命令行优先
func (c *Config) MergeCLIFlags(maxPages int, outputDir string, logLevel string) {
	if maxPages > 0 {
		c.Crawl.MaxPages = maxPages
	}
	if outputDir != "" {
		c.Output.Dir = outputDir
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
}
