package crawlers

import (
	"sync"
)

// CrawlSession 单次分析的爬取会话
// 职责: 管理已访问集合、LIFO待爬栈和页面预算,每次分析新建一个,不跨分析共享
type CrawlSession struct {
	// 起始URL
	startURL string

	// 页面预算
	budget int

	// 已访问URL标记集合及访问顺序
	visited map[string]bool
	order   []string

	// 待爬栈,栈顶在末尾
	stack []string

	// 保护以上状态,TryVisit 的检查和标记是一个原子操作
	mu sync.Mutex
}

// NewCrawlSession 创建爬取会话,起始URL先入栈
func NewCrawlSession(startURL string, budget int) *CrawlSession {
	if budget < 1 {
		budget = 1
	}
	return &CrawlSession{
		startURL: startURL,
		budget:   budget,
		visited:  make(map[string]bool),
		stack:    []string{startURL},
	}
}

// StartURL 返回起始URL
func (s *CrawlSession) StartURL() string {
	return s.startURL
}

// Budget 返回页面预算
func (s *CrawlSession) Budget() int {
	return s.budget
}

// Push 把一个页面的链接压栈
// 逆序压入,使第一个链接最先弹出,从而先深入第一个链接的子树
func (s *CrawlSession) Push(links []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(links) - 1; i >= 0; i-- {
		if s.visited[links[i]] {
			continue
		}
		s.stack = append(s.stack, links[i])
	}
}

// Pop 弹出栈顶URL,栈空时返回false
func (s *CrawlSession) Pop() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.stack) == 0 {
		return "", false
	}
	last := len(s.stack) - 1
	u := s.stack[last]
	s.stack = s.stack[:last]
	return u, true
}

// TryVisit 检查并标记访问
// 已访问或预算耗尽时返回false,否则标记已访问并计数
func (s *CrawlSession) TryVisit(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.visited[u] || len(s.order) >= s.budget {
		return false
	}
	s.visited[u] = true
	s.order = append(s.order, u)
	return true
}

// IsVisited 检查URL是否已访问
func (s *CrawlSession) IsVisited(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited[u]
}

// VisitedCount 已访问页面数
func (s *CrawlSession) VisitedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Visited 按访问顺序返回已访问URL
func (s *CrawlSession) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Exhausted 预算是否耗尽
func (s *CrawlSession) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order) >= s.budget
}

// PendingCount 待爬栈长度
func (s *CrawlSession) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}
