package crawlers

import (
	"strings"

	"github.com/RecoveryAshes/CdnAssetFind/internal/utils"
	"golang.org/x/net/html"
)

// LinkExtractor 链接提取器
// 职责: 从页面中提取同源的可导航链接(仅<a href>)
type LinkExtractor struct {
	normalizer *Normalizer
}

// NewLinkExtractor 创建链接提取器
func NewLinkExtractor(normalizer *Normalizer) *LinkExtractor {
	return &LinkExtractor{normalizer: normalizer}
}

// Extract 按出现顺序返回去重后的同源页面链接
// 使用分词器而不是完整解析,畸形标记不会中断提取
func (e *LinkExtractor) Extract(text, pageURL string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(text))
	seen := make(map[string]bool)
	var links []string
	filtered := 0

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			// io.EOF 或不可恢复的分词错误,已得到的链接照常返回
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, hasAttr := tokenizer.TagName()
		if string(name) != "a" || !hasAttr {
			continue
		}

		for {
			key, val, more := tokenizer.TagAttr()
			if string(key) == "href" {
				link, ok := e.normalizer.ResolveLink(string(val), pageURL)
				if !ok {
					filtered++
				} else if !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
				break
			}
			if !more {
				break
			}
		}
	}

	utils.Debugf("页面 %s 提取到 %d 个链接,过滤 %d 个", pageURL, len(links), filtered)
	return links
}
