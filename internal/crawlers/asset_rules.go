package crawlers

import (
	"regexp"
	"strings"
)

// 规则族
const (
	FamilyTag        = "tag"        // 标签属性引用
	FamilyStylesheet = "stylesheet" // 样式表引用
	FamilyBuild      = "build"      // 构建产物路径
	FamilyInline     = "inline"     // 内联数据
)

// assetRule 资源提取规则
//
// 有 block 时先用 block 切出文本块,再在块内应用 pattern;
// group 为取值的捕获组,0 表示整体匹配;
// rewrite 在规范化之前改写原始匹配
type assetRule struct {
	name    string
	family  string
	block   *regexp.Regexp
	pattern *regexp.Regexp
	group   int
	rewrite func(raw string) string
}

const (
	fontExt  = `woff2|woff|ttf|eot|otf`
	imageExt = `png|jpg|jpeg|gif|svg|webp`
	assetExt = `js|css|` + imageExt + `|` + fontExt
	queryOpt = `(?:\?[^'"]*)?`
)

// assetRules 按顺序求值,结果取并集,顺序不影响最终集合
var assetRules = []assetRule{
	// 标签属性
	{
		name:    "link-css",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)<link[^>]*href=['"]([^'"]+\.css` + queryOpt + `)['"][^>]*>`),
		group:   1,
	},
	{
		name:    "script-src",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)<script[^>]*src=['"]([^'"]+\.js` + queryOpt + `)['"][^>]*>`),
		group:   1,
	},
	{
		name:    "script-requiremodule",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)<script[^>]*data-requiremodule=['"]([^'"]+)['"][^>]*>`),
		group:   1,
	},
	{
		name:    "img-src",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)<img[^>]*src=['"]([^'"]+\.(?:` + imageExt + `)` + queryOpt + `)['"][^>]*>`),
		group:   1,
	},
	{
		name:    "style-background",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)style=['"][^'"]*background(?:-image)?\s*:\s*url\(\s*['"]?([^'")\s]+)['"]?\s*\)`),
		group:   1,
	},
	{
		name:    "media-nested-source",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?is)<(?:video|audio)[^>]*>.*?<source[^>]*src=['"]([^'"]+)['"].*?</(?:video|audio)>`),
		group:   1,
	},
	{
		name:    "media-src",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)<(?:source|video|audio)[^>]*src=['"]([^'"]+\.(?:mp4|webm|ogg|mp3|wav)` + queryOpt + `)['"][^>]*>`),
		group:   1,
	},
	{
		name:    "object-embed",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)<(?:object|embed)[^>]*(?:data|src)=['"]([^'"]+)['"][^>]*>`),
		group:   1,
	},
	{
		name:    "data-attribute",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)\sdata-[\w-]*=['"]([^'"]+\.(?:` + assetExt + `)` + queryOpt + `)['"]`),
		group:   1,
	},
	{
		name:    "any-svg",
		family:  FamilyTag,
		pattern: regexp.MustCompile(`(?i)<[^>]*?(?:href|src)=['"]([^'"]+\.svg` + queryOpt + `)['"][^>]*>`),
		group:   1,
	},
	{
		name:    "preload",
		family:  FamilyTag,
		block:   regexp.MustCompile(`(?i)<link[^>]*\brel=['"]?preload['"]?[^>]*>`),
		pattern: regexp.MustCompile(`(?i)\bhref=['"]([^'"]+)['"]`),
		group:   1,
	},

	// 样式表
	{
		name:    "css-url-font",
		family:  FamilyStylesheet,
		pattern: regexp.MustCompile(`(?i)url\(\s*['"]?([^'")\s]+\.(?:` + fontExt + `)` + queryOpt + `)['"]?\s*\)`),
		group:   1,
	},
	{
		name:    "css-url",
		family:  FamilyStylesheet,
		pattern: regexp.MustCompile(`(?i)url\(\s*['"]?([^'")\s]+)['"]?\s*\)`),
		group:   1,
	},
	{
		name:    "css-import",
		family:  FamilyStylesheet,
		pattern: regexp.MustCompile(`(?i)@import\s+(?:url\(\s*)?['"]([^'"]+)['"]`),
		group:   1,
	},
	{
		name:    "font-face",
		family:  FamilyStylesheet,
		block:   regexp.MustCompile(`(?is)@font-face\s*\{[^}]*\}`),
		pattern: regexp.MustCompile(`(?i)url\(\s*['"]?([^'")\s]+)['"]?\s*\)`),
		group:   1,
	},
	{
		name:    "font-local-fallback",
		family:  FamilyStylesheet,
		pattern: regexp.MustCompile(`(?is)src\s*:\s*local\([^)]+\)\s*,\s*url\(\s*['"]?([^'")\s]+\.(?:` + fontExt + `)` + queryOpt + `)['"]?\s*\)`),
		group:   1,
	},
	{
		name:    "icon-font-vendor",
		family:  FamilyStylesheet,
		pattern: regexp.MustCompile(`(?i)((?:/static/[^"'()\s]*?)?(?:font-awesome/fonts|simple-line-icons/fonts|icon-fonts/font)/[^"'()\s?#]+\.(?:` + fontExt + `))`),
		group:   1,
		rewrite: func(raw string) string {
			if strings.HasPrefix(raw, "/static/") {
				return raw
			}
			return "/static/frontend/" + strings.TrimLeft(raw, "/")
		},
	},

	// 构建产物
	{
		name:    "cache-merged",
		family:  FamilyBuild,
		pattern: regexp.MustCompile(`(?i)/static/_cache/merged/[^"')+\s<>]+`),
	},
	{
		name:    "cache-minified",
		family:  FamilyBuild,
		pattern: regexp.MustCompile(`(?i)/static/_cache/minified/[^"')+\s<>]+`),
	},
	{
		name:    "requirejs-text",
		family:  FamilyBuild,
		pattern: regexp.MustCompile(`(?i)text!(/static/[^!'"\s]+)`),
		group:   1,
	},
	{
		name:    "quoted-static",
		family:  FamilyBuild,
		pattern: regexp.MustCompile(`"(/static/[^"\s]+)"`),
		group:   1,
	},
	{
		name:    "adminhtml-static",
		family:  FamilyBuild,
		pattern: regexp.MustCompile(`(?i)/static/adminhtml/[^"'\s()<>]+`),
	},
	{
		name:    "versioned-css-js",
		family:  FamilyBuild,
		pattern: regexp.MustCompile(`(?i)/static/(?:version\d+/)?(?:frontend|adminhtml)/[^"'\s()<>]+?\.(?:css|js)\b`),
	},
	{
		name:    "versioned-font",
		family:  FamilyBuild,
		pattern: regexp.MustCompile(`(?i)/static/(?:version\d+/)?(?:frontend|adminhtml)/[^"'\s()<>]+?\.(?:` + fontExt + `)\b`),
	},
	{
		name:    "versioned-nested-font",
		family:  FamilyBuild,
		pattern: regexp.MustCompile(`(?i)/static/(?:version\d+/)?(?:frontend|adminhtml)/[^"'\s()<>]+/fonts/[^"'\s()<>]+?\.(?:` + fontExt + `)\b`),
	},

	// 内联数据
	{
		name:    "quoted-asset-literal",
		family:  FamilyInline,
		pattern: regexp.MustCompile(`(?i)"([^"\s]+\.(?:` + assetExt + `))"`),
		group:   1,
	},
	{
		name:    "json-blob",
		family:  FamilyInline,
		block:   regexp.MustCompile(`\{[^}]+\}`),
		pattern: regexp.MustCompile(`(?i)"(/(?:static|media)/[^"]+)"`),
		group:   1,
	},
}

// matches 返回规则在文本中的全部原始匹配
func (r *assetRule) matches(text string) []string {
	blocks := []string{text}
	if r.block != nil {
		blocks = r.block.FindAllString(text, -1)
	}

	var raws []string
	for _, b := range blocks {
		for _, m := range r.pattern.FindAllStringSubmatch(b, -1) {
			if r.group >= len(m) {
				continue
			}
			raw := m[r.group]
			if r.rewrite != nil {
				raw = r.rewrite(raw)
			}
			raws = append(raws, raw)
		}
	}
	return raws
}
