package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"github.com/spf13/afero"
)

// Areas 主题所在的区域
var Areas = []string{"frontend", "adminhtml"}

// DefaultImportantDirectories 主题根目录下需要完整遍历的重要子目录
var DefaultImportantDirectories = []string{
	// 核心JS库
	"mage/requirejs",
	"mage/utils",
	"mage/translate",
	"jquery",
	"jquery/ui-modules",
	"jquery-ui-modules",
	"underscore",
	"knockoutjs",
	"Magento_Ui/js/lib",
	"Magento_Ui/js/core",
	"Magento_Ui/js/form",
	"Magento_Ui/js/grid",
	"Magento_Ui/js/modal",
	// 常用UI组件
	"Magento_Theme",
	"Magento_Catalog/js",
	"Magento_Checkout/js",
	"Magento_Customer/js",
	"Magento_Search/js",
	// 字体
	"fonts",
	"font-awesome/fonts",
	"simple-line-icons/fonts",
	"icon-fonts/font",
	"css/fonts",
}

// DefaultImportantPatterns 直接在主题根目录下求值的glob模式
var DefaultImportantPatterns = []string{
	"*.min.js",
	"bundle*.js",
	"requirejs-config.js",
	"mage/requirejs/mixins.js",
	"mage/bootstrap.js",
	"*.woff",
	"*.woff2",
	"*.ttf",
	"*.eot",
	"*.otf",
	"knockout.js",
	"jquery*.js",
	"require.js",
}

// collectedExtensions 遍历重要目录时收集的扩展名(区分大小写)
var collectedExtensions = map[string]bool{
	"js": true, "woff": true, "woff2": true, "ttf": true, "eot": true, "otf": true, "svg": true,
}

// Option 扫描器选项
type Option func(*LibraryScanner)

// WithImportantDirectories 替换重要子目录列表
func WithImportantDirectories(dirs []string) Option {
	return func(s *LibraryScanner) {
		if len(dirs) > 0 {
			s.directories = dirs
		}
	}
}

// WithImportantPatterns 替换glob模式列表
func WithImportantPatterns(patterns []string) Option {
	return func(s *LibraryScanner) {
		if len(patterns) > 0 {
			s.patterns = patterns
		}
	}
}

// LibraryScanner 文件系统库扫描器
// 不访问网络,在部署后的静态目录里找出重要库文件和图标字体
type LibraryScanner struct {
	fs          afero.Fs
	staticRoot  string
	directories []string
	patterns    []string
}

// NewLibraryScanner 创建扫描器,staticRoot 为部署后的静态资源目录(pub/static)
func NewLibraryScanner(fs afero.Fs, staticRoot string, opts ...Option) *LibraryScanner {
	s := &LibraryScanner{
		fs:          fs,
		staticRoot:  filepath.Clean(staticRoot),
		directories: DefaultImportantDirectories,
		patterns:    DefaultImportantPatterns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan 扫描并返回排序去重后的 /static/... 路径
// 任何I/O错误都只记录日志并返回空集合,不会中断分析
func (s *LibraryScanner) Scan() []string {
	if s.staticRoot == "" || s.staticRoot == "." {
		utils.Warnf("未配置静态资源目录,跳过库扫描")
		return []string{}
	}

	utils.Infof("🔍 开始扫描静态资源目录: %s", s.staticRoot)
	result, err := s.scan()
	if err != nil {
		utils.Errorf("扫描JS库失败: %v", err)
		return []string{}
	}

	utils.Infof("找到 %d 个重要库文件和字体", len(result))
	return result
}

func (s *LibraryScanner) scan() ([]string, error) {
	exists, err := afero.DirExists(s.fs, s.staticRoot)
	if err != nil {
		return nil, fmt.Errorf("检查静态资源目录失败: %w", err)
	}
	if !exists {
		utils.Warnf("静态资源目录不存在: %s", s.staticRoot)
		return []string{}, nil
	}

	themePaths, err := s.themePaths()
	if err != nil {
		return nil, err
	}
	utils.Debugf("找到 %d 个主题路径", len(themePaths))

	found := make(map[string]struct{})
	for _, themePath := range themePaths {
		// 1. 重要子目录
		for _, dir := range s.directories {
			fullPath := filepath.Join(themePath, filepath.FromSlash(dir))
			ok, err := afero.DirExists(s.fs, fullPath)
			if err != nil {
				return nil, fmt.Errorf("检查目录失败 [%s]: %w", fullPath, err)
			}
			if !ok {
				continue
			}
			if err := s.walk(fullPath, found); err != nil {
				return nil, err
			}
		}

		// 2. 主题根目录下的glob模式
		for _, pattern := range s.patterns {
			matches, err := afero.Glob(s.fs, filepath.Join(themePath, filepath.FromSlash(pattern)))
			if err != nil {
				return nil, fmt.Errorf("glob模式无效 [%s]: %w", pattern, err)
			}
			for _, match := range matches {
				info, err := s.fs.Stat(match)
				if err != nil {
					return nil, fmt.Errorf("读取文件信息失败 [%s]: %w", match, err)
				}
				if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
					continue
				}
				if u, ok := s.toURL(match); ok {
					found[u] = struct{}{}
				}
			}
		}
	}

	result := make([]string, 0, len(found))
	for u := range found {
		result = append(result, u)
	}
	sort.Strings(result)
	return result, nil
}

// themePaths 枚举 区域/厂商/主题/语言 四级目录
func (s *LibraryScanner) themePaths() ([]string, error) {
	var paths []string
	for _, area := range Areas {
		areaPath := filepath.Join(s.staticRoot, area)
		ok, err := afero.DirExists(s.fs, areaPath)
		if err != nil {
			return nil, fmt.Errorf("检查区域目录失败 [%s]: %w", areaPath, err)
		}
		if !ok {
			continue
		}

		vendors, err := s.listDirs(areaPath)
		if err != nil {
			return nil, err
		}
		for _, vendor := range vendors {
			themes, err := s.listDirs(vendor)
			if err != nil {
				return nil, err
			}
			for _, theme := range themes {
				locales, err := s.listDirs(theme)
				if err != nil {
					return nil, err
				}
				paths = append(paths, locales...)
			}
		}
	}
	return paths, nil
}

// listDirs 列出直接子目录,跳过隐藏目录
func (s *LibraryScanner) listDirs(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("读取目录失败 [%s]: %w", dir, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dirs = append(dirs, filepath.Join(dir, entry.Name()))
	}
	return dirs, nil
}

// walk 递归收集目标扩展名的文件
func (s *LibraryScanner) walk(root string, found map[string]struct{}) error {
	return afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("遍历目录失败 [%s]: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !collectedExtensions[ext] {
			return nil
		}
		if u, ok := s.toURL(path); ok {
			found[u] = struct{}{}
		}
		return nil
	})
}

// toURL 文件路径 -> /static/ 开头的URL路径
func (s *LibraryScanner) toURL(path string) (string, bool) {
	rel, err := filepath.Rel(s.staticRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return "/static/" + filepath.ToSlash(rel), true
}
