package crawlers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/models"
)

// nonNavigableSchemes 不可导航的链接协议
var nonNavigableSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// Normalizer URL规范化器
// 职责: 把页面中的原始引用解析为资源路径或同源页面链接
type Normalizer struct {
	// 基础源 scheme://host/
	base *url.URL
}

// NewNormalizer 创建规范化器,baseURL 只取 scheme 和 host
func NewNormalizer(baseURL string) (*Normalizer, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidStoreURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: 不支持的协议 %q", models.ErrInvalidStoreURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: 缺少主机名", models.ErrInvalidStoreURL)
	}

	return &Normalizer{
		base: &url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: "/"},
	}, nil
}

// Origin 返回 scheme://host
func (n *Normalizer) Origin() string {
	return n.base.Scheme + "://" + n.base.Host
}

// Host 返回基础主机名(含端口)
func (n *Normalizer) Host() string {
	return n.base.Host
}

// AssetPath 把引用解析为资源路径
// 规则:
//  1. data: 一律拒绝
//  2. 绝对URL不论主机,只要路径位于 /static/ 或 /media/ 下即接受(CDN改写后的地址)
//  3. 协议相对地址沿用基础协议,/ 开头的路径落在基础源上
//  4. 其他相对引用按 pageURL 所在目录解析
//  5. 解码后仍含 . 或 .. 段的路径一律拒绝
//
// 返回的路径去掉了查询串和片段
func (n *Normalizer) AssetPath(ref, pageURL string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || hasPrefixFold(ref, "data:") {
		return "", false
	}

	resolved, ok := n.resolve(ref, pageURL)
	if !ok {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !models.IsAssetPath(resolved.Path) || models.ContainsDotSegment(resolved.Path) {
		return "", false
	}
	return resolved.Path, true
}

// ResolveLink 把引用解析为可爬取的同源页面链接
// 排除 javascript:/mailto:/tel: 和纯片段引用,排除资源路径,结果不带片段
func (n *Normalizer) ResolveLink(ref, pageURL string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	for _, scheme := range nonNavigableSchemes {
		if hasPrefixFold(ref, scheme) {
			return "", false
		}
	}

	resolved, ok := n.resolve(ref, pageURL)
	if !ok {
		return "", false
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(resolved.Host, n.base.Host) {
		return "", false
	}

	resolved.Fragment = ""
	resolved.RawFragment = ""
	if resolved.Path == "" {
		resolved.Path = "/"
	}
	if models.IsAssetPath(resolved.Path) {
		return "", false
	}
	return resolved.String(), true
}

// resolve 以当前页面(缺省为基础源)为基准解析引用
func (n *Normalizer) resolve(ref, pageURL string) (*url.URL, bool) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, false
	}

	base := n.base
	if pageURL != "" {
		if page, err := url.Parse(pageURL); err == nil && page.Host != "" {
			base = page
		}
	}
	return base.ResolveReference(parsed), true
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
