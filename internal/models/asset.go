package models

import (
	"path"
	"strings"
)

// 资源根路径
const (
	StaticRoot = "/static/"
	MediaRoot  = "/media/"
)

// 资源分类
const (
	CategoryJS     = "js"
	CategoryCSS    = "css"
	CategoryImages = "images"
	CategoryFonts  = "fonts"
	CategoryOther  = "other"
)

// ImageExtensions 图片扩展名
var ImageExtensions = []string{"jpg", "jpeg", "png", "gif", "svg", "webp"}

// FontExtensions 字体扩展名
var FontExtensions = []string{"woff", "woff2", "ttf", "eot", "otf"}

// AssetStats 按扩展名统计的资源数量
type AssetStats struct {
	JS     int `json:"js"`
	CSS    int `json:"css"`
	Images int `json:"images"`
	Fonts  int `json:"fonts"`
	Other  int `json:"other"`
	Total  int `json:"total"`
}

// IsAssetPath 判断路径是否位于 /static/ 或 /media/ 下(区分大小写)
func IsAssetPath(p string) bool {
	return strings.HasPrefix(p, StaticRoot) || strings.HasPrefix(p, MediaRoot)
}

// ContainsDotSegment 路径中是否含有 . 或 .. 段
// 用于拦截百分号编码后绕过解析阶段的 %2e%2e
func ContainsDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// AssetExtension 返回资源路径的扩展名(不含点),忽略查询串和片段
func AssetExtension(assetURL string) string {
	if i := strings.IndexAny(assetURL, "?#"); i >= 0 {
		assetURL = assetURL[:i]
	}
	return strings.TrimPrefix(path.Ext(assetURL), ".")
}

// Categorize 返回资源所属分类
func Categorize(assetURL string) string {
	ext := AssetExtension(assetURL)
	switch {
	case ext == "js":
		return CategoryJS
	case ext == "css":
		return CategoryCSS
	case containsString(ImageExtensions, ext):
		return CategoryImages
	case containsString(FontExtensions, ext):
		return CategoryFonts
	default:
		return CategoryOther
	}
}

// CategorizeAssets 统计资源列表的分类数量
func CategorizeAssets(assets []string) AssetStats {
	var stats AssetStats
	for _, a := range assets {
		switch Categorize(a) {
		case CategoryJS:
			stats.JS++
		case CategoryCSS:
			stats.CSS++
		case CategoryImages:
			stats.Images++
		case CategoryFonts:
			stats.Fonts++
		default:
			stats.Other++
		}
	}
	stats.Total = len(assets)
	return stats
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
