package scanner

import (
	"fmt"
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"github.com/gobwas/glob"
)

// DefaultImportantURLs 分析结束后合并的重要静态URL模式
// * 可以跨越 / 匹配,所以 frontend/*/*/* 覆盖 厂商/主题/语言
var DefaultImportantURLs = []string{
	// 核心库
	"/static/frontend/*/*/*/mage/requirejs/mixins.js",
	"/static/frontend/*/*/*/requirejs/require.js",
	"/static/frontend/*/*/*/mage/utils/*.js",
	"/static/frontend/*/*/*/jquery.js",
	"/static/frontend/*/*/*/jquery-ui.js",
	"/static/frontend/*/*/*/jquery/*.js",
	"/static/frontend/*/*/*/jquery/ui-modules/*.js",
	"/static/frontend/*/*/*/knockout.js",
	"/static/frontend/*/*/*/mage/translate.js",
	"/static/frontend/*/*/*/mage/menu.js",
	"/static/frontend/*/*/*/mage/tabs.js",
	// UI组件
	"/static/frontend/*/*/*/Magento_Ui/js/lib/*.js",
	"/static/frontend/*/*/*/Magento_Ui/js/core/*.js",
	"/static/frontend/*/*/*/Magento_Ui/js/form/*.js",
	"/static/frontend/*/*/*/Magento_Ui/js/modal/*.js",
	"/static/frontend/*/*/*/Magento_Checkout/js/view/*.js",
	"/static/frontend/*/*/*/Magento_Catalog/js/*.js",
	// 字体
	"/static/frontend/*/*/*/fonts/*.woff2",
	"/static/frontend/*/*/*/fonts/*.woff",
	"/static/frontend/*/*/*/fonts/*.ttf",
	"/static/frontend/*/*/*/fonts/*.eot",
	"/static/frontend/*/*/*/fonts/*.otf",
	"/static/frontend/*/*/*/css/fonts/*.woff2",
	"/static/frontend/*/*/*/css/fonts/*.woff",
	"/static/frontend/*/*/*/css/fonts/*.ttf",
	"/static/frontend/*/*/*/css/fonts/*.eot",
	"/static/frontend/*/*/*/css/fonts/*.otf",
}

// ImportantURLMatcher 重要URL匹配器
// 通配模式只标记已发现的资源,字面量条目无条件加入结果
type ImportantURLMatcher struct {
	globs    []glob.Glob
	literals []string
}

// NewImportantURLMatcher 编译模式列表,匹配不区分大小写
// 字面量条目必须是 /static/ 或 /media/ 下的路径,不能是完整URL,也不能含 . 或 .. 段
func NewImportantURLMatcher(patterns []string) (*ImportantURLMatcher, error) {
	m := &ImportantURLMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !hasWildcard(p) {
			if !models.IsAssetPath(p) || models.ContainsDotSegment(p) {
				return nil, fmt.Errorf("重要URL必须是 %s 或 %s 下的路径 [%s]", models.StaticRoot, models.MediaRoot, p)
			}
			m.literals = append(m.literals, p)
			continue
		}
		// 不传分隔符, * 可以匹配 /
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("重要URL模式无效 [%s]: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Literals 返回字面量条目
func (m *ImportantURLMatcher) Literals() []string {
	return m.literals
}

// Match 资源是否命中任一通配模式
func (m *ImportantURLMatcher) Match(asset string) bool {
	lower := strings.ToLower(asset)
	for _, g := range m.globs {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// Merge 把重要URL合并进资源集合,返回新增数量
// 合并后的集合总是已有集合的超集
func (m *ImportantURLMatcher) Merge(set map[string]struct{}) int {
	matched := 0
	for asset := range set {
		if m.Match(asset) {
			matched++
		}
	}

	added := 0
	for _, lit := range m.literals {
		if _, ok := set[lit]; ok {
			continue
		}
		set[lit] = struct{}{}
		added++
	}

	utils.Debugf("重要URL合并: 命中 %d 个已发现资源, 新增 %d 个字面量", matched, added)
	return added
}

func hasWildcard(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
