package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/RecoveryAshes/CdnAssetFind/internal/core"
	"github.com/RecoveryAshes/CdnAssetFind/internal/crawlers"
	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/RecoveryAshes/CdnAssetFind/internal/scanner"
	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string
	outputDir  string

	// HTTP头部参数
	headers        []string
	validateConfig bool

	// 分析参数
	storeURL    string
	maxPages    int
	listOnly    bool
	uploadAfter bool
)

// appConfig 由 PersistentPreRunE 加载,命令行参数已合并
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "cdnassetfind",
	Short: "商店静态资源发现工具",
	Long: `CdnAssetFind - 发现商店页面引用的全部静态资源,供CDN镜像使用

功能:
  • 深度优先爬取同域页面,提取脚本、样式、图片、字体和媒体
  • 扫描部署后的静态目录,补充重要的JS库和图标字体
  • 输出排序去重的资源列表和分类统计
  • 把资源批量上传到S3兼容的对象存储

示例:
  # 分析商店首页,最多访问10个页面
  cdnassetfind -u https://shop.example.com -p 10

  # 只输出资源列表
  cdnassetfind -u https://shop.example.com --list > assets.txt

  # 自定义HTTP头部(预发布环境)
  cdnassetfind -u https://staging.example.com -H "Authorization: Basic dXNlcjpwYXNz"

  # 上传之前的分析结果
  cdnassetfind upload --from output/shop.example.com/reports/assets.json

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		config.MergeCLIFlags(maxPages, outputDir, logLevel)
		if verbose && logLevel == "" {
			config.Logging.Level = "debug"
		}

		if err := utils.InitLogger(config.Logging); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		appConfig = config
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		headerManager, err := core.NewHeaderManager(appConfig.HTTP.Headers, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		if validateConfig {
			return runValidateConfig(headerManager)
		}

		if storeURL == "" && appConfig.Store.BaseURL == "" {
			if cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}
			return models.ErrStoreURLRequired
		}

		target := storeURL
		if target != "" {
			if target, err = NormalizeURL(target); err != nil {
				return fmt.Errorf("无效的商店URL: %w", err)
			}
		}
		if err := ValidateFlags(target, maxPages, appConfig); err != nil {
			return err
		}

		result, err := runAnalysis(ctx, target, headerManager)
		if err != nil {
			return err
		}

		if listOnly {
			for _, asset := range result.Assets {
				fmt.Println(asset)
			}
		} else {
			printStats(result)
		}

		if uploadAfter {
			reporter := utils.NewReporter(afero.NewOsFs(), appConfig.Output.Dir)
			return runUpload(ctx, result.Assets, reporter.ReportsDir(result.StoreURL))
		}

		utils.Infof("✨ 分析任务完成!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("CdnAssetFind %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

// runValidateConfig 验证头部配置并打印脱敏后的结果
func runValidateConfig(headerManager *core.HeaderManager) error {
	utils.Infof("🔍 验证配置...")
	if err := appConfig.Crawl.Validate(); err != nil {
		return fmt.Errorf("爬取配置无效: %w", err)
	}
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("HTTP头部配置无效: %w", err)
	}
	if _, err := scanner.NewImportantURLMatcher(appConfig.Analysis.ImportantURLs); err != nil {
		return fmt.Errorf("重要URL配置无效: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	names := make([]string, 0, len(safeHeaders))
	for name := range safeHeaders {
		names = append(names, name)
	}
	sort.Strings(names)

	utils.Infof("✅ 配置验证通过!")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for _, name := range names {
		utils.Infof("  %s: %s", name, safeHeaders[name])
	}
	return nil
}

// runAnalysis 组装页面获取器、库扫描器和分析器,执行分析并保存报告
func runAnalysis(ctx context.Context, target string, headerManager *core.HeaderManager) (*models.AnalysisResult, error) {
	fs := afero.NewOsFs()
	fetcher := crawlers.NewPageFetcher(crawlers.FetcherOptionsFromConfig(appConfig.Crawl, headerManager))

	var libraries core.LibraryScanner
	if appConfig.Analysis.ScanLibraries {
		libraries = scanner.NewLibraryScanner(fs, appConfig.Store.StaticDir,
			scanner.WithImportantDirectories(appConfig.Analysis.ImportantDirectories),
			scanner.WithImportantPatterns(appConfig.Analysis.ImportantPatterns),
		)
	}

	analyzer := core.NewAnalyzer(fetcher, libraries,
		core.WithProgressSink(utils.NewProgressBarSink(os.Stderr)),
		core.WithImportantURLs(appConfig.Analysis.ImportantURLs),
		core.WithDefaultStoreURL(appConfig.Store.BaseURL),
		core.WithRateLimit(appConfig.Crawl.RateLimit),
		core.WithMaxDuration(time.Duration(appConfig.Crawl.MaxDuration)*time.Second),
	)

	result, err := analyzer.Analyze(ctx, target, appConfig.Crawl.MaxPages)
	fmt.Fprintln(os.Stderr)

	if result != nil {
		reporter := utils.NewReporter(fs, appConfig.Output.Dir)
		if _, saveErr := reporter.SaveAnalysis(result); saveErr != nil {
			utils.Errorf("保存报告失败: %v", saveErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("分析失败: %w", err)
	}
	return result, nil
}

// printStats 打印分类统计
func printStats(result *models.AnalysisResult) {
	fmt.Println("==================================================")
	fmt.Println("📊 资源统计")
	fmt.Println("==================================================")
	fmt.Printf("🌐 商店: %s\n", result.StoreURL)
	fmt.Printf("✅ 访问页面: %d/%d\n", result.PagesVisited, result.MaxPages)
	if len(result.FailedPages) > 0 {
		fmt.Printf("❌ 失败页面: %d\n", len(result.FailedPages))
	}
	fmt.Printf("📚 库扫描: %d\n", result.LibraryAssets)
	fmt.Printf("📜 JS: %d\n", result.Stats.JS)
	fmt.Printf("🎨 CSS: %d\n", result.Stats.CSS)
	fmt.Printf("🖼️  图片: %d\n", result.Stats.Images)
	fmt.Printf("🔤 字体: %d\n", result.Stats.Fonts)
	fmt.Printf("📦 其他: %d\n", result.Stats.Other)
	fmt.Printf("📦 总计: %d\n", result.Stats.Total)
	if result.Truncated {
		fmt.Println("⏰ 达到时长上限,结果可能不完整")
	}
	fmt.Printf("⏱️  总耗时: %.2f秒\n", result.Duration)
	fmt.Println("==================================================")
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "输出目录 (默认: output)")

	// HTTP头部参数
	rootCmd.Flags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.Flags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	// 分析参数
	rootCmd.Flags().StringVarP(&storeURL, "url", "u", "", "商店URL (未配置 store.base_url 时必需)")
	rootCmd.Flags().IntVarP(&maxPages, "pages", "p", 0, "最多访问的页面数 (默认: 5)")
	rootCmd.Flags().BoolVar(&listOnly, "list", false, "只向标准输出打印资源列表")
	rootCmd.Flags().BoolVar(&uploadAfter, "upload", false, "分析完成后上传资源")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(uploadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
