// Package scanner 在部署后的静态资源目录中查找重要的JS库和图标字体,
// 并提供分析结束时合并重要URL所用的匹配器。
//
// 目录结构按 <static>/<area>/<vendor>/<theme>/<locale>/ 组织,
// 扫描只读文件系统,不发起网络请求。
package scanner
