package crawlers

import (
	"sort"

	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
)

// AssetExtractor 资源提取器
// 职责: 在页面/样式文本上依次应用规则表,输出 /static/ 与 /media/ 下的资源路径
type AssetExtractor struct {
	normalizer *Normalizer
	rules      []assetRule
}

// NewAssetExtractor 创建资源提取器
func NewAssetExtractor(normalizer *Normalizer) *AssetExtractor {
	return &AssetExtractor{
		normalizer: normalizer,
		rules:      assetRules,
	}
}

// Extract 提取资源路径,返回排序去重后的结果
// 任何规则不匹配都不是错误,畸形文本只会得到更少的结果
func (e *AssetExtractor) Extract(text, pageURL string) []string {
	found := make(map[string]struct{})
	for i := range e.rules {
		e.applyRule(&e.rules[i], text, pageURL, found)
	}
	return sortedKeys(found)
}

// applyRule 应用单条规则,把合法资源路径并入 found,返回新增数量
func (e *AssetExtractor) applyRule(rule *assetRule, text, pageURL string, found map[string]struct{}) int {
	added := 0
	for _, raw := range rule.matches(text) {
		assetPath, ok := e.normalizer.AssetPath(raw, pageURL)
		if !ok {
			continue
		}
		if _, exists := found[assetPath]; !exists {
			found[assetPath] = struct{}{}
			added++
		}
	}
	if added > 0 {
		utils.Debugf("规则 %s/%s 新增 %d 个资源", rule.family, rule.name, added)
	}
	return added
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
