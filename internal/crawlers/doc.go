// Package crawlers 提供店铺页面的资源发现原语
//
// # 概述
//
// crawlers包负责单个页面层面的工作:获取页面、提取资源引用、提取同源链接,
// 以及维护一次分析的爬取会话。遍历顺序和进度由core.Analyzer驱动。
//
// # 核心组件
//
// ## Normalizer
//
// 把原始引用(绝对、相对、协议相对)解析到基础源上。
// 资源路径必须以 /static/ 或 /media/ 开头(区分大小写),外域主机上的此类路径也接受;
// 页面链接必须同主机且不在资源根下。
//
//	n, err := NewNormalizer("https://shop.example/")
//	p, ok := n.AssetPath("css/styles.css", "https://shop.example/static/frontend/")
//	link, ok := n.ResolveLink("../checkout", "https://shop.example/catalog/item")
//
// ## AssetExtractor
//
// 规则表驱动的资源提取。每条规则由(块匹配, 匹配, 捕获组, 改写)组成,统一求值,
// 规则族包括标签属性、样式表、构建产物和内联数据。
//
//	assets := NewAssetExtractor(n).Extract(body, pageURL)
//
// ## LinkExtractor
//
// 基于 golang.org/x/net/html 分词器提取 <a href>,保持出现顺序并去重。
//
// ## CrawlSession
//
// 一次分析独占的会话:已访问集合、LIFO待爬栈、页面预算。
// TryVisit 把"检查已访问"和"标记已访问"合成一个原子操作。
//
//	s := NewCrawlSession(startURL, 5)
//	for u, ok := s.Pop(); ok; u, ok = s.Pop() {
//	    if !s.TryVisit(u) { continue }
//	    s.Push(links)
//	}
//
// ## PageFetcher
//
// 基于Colly的同步页面获取器:桌面浏览器UA、最多5次重定向、30秒超时、
// 可选跳过证书验证;非2xx返回 *FetchError。
//
// # 配置参数
//
//	crawl:
//	  timeout: 30                # 单页超时(秒)
//	  max_redirects: 5           # 最大重定向次数
//	  insecure_skip_verify: true # 跳过证书验证
//
// # 错误处理
//
//   - 提取只有"没匹配到"一种失败,不会返回错误
//   - 单页获取失败只影响该分支,由调用方记录后继续
package crawlers
