package crawlers

import (
	"reflect"
	"testing"
)

func TestCrawlSession_DepthFirstOrder(t *testing.T) {
	// 链接图: / -> a, b ; a -> a1, a2 ; b -> b1
	graph := map[string][]string{
		"/":  {"a", "b"},
		"a":  {"a1", "a2"},
		"b":  {"b1"},
		"a1": {"/"},
	}

	s := NewCrawlSession("/", 10)
	for u, ok := s.Pop(); ok; u, ok = s.Pop() {
		if !s.TryVisit(u) {
			continue
		}
		s.Push(graph[u])
	}

	want := []string{"/", "a", "a1", "a2", "b", "b1"}
	if got := s.Visited(); !reflect.DeepEqual(got, want) {
		t.Errorf("Visited() = %v, want %v", got, want)
	}
}

func TestCrawlSession_Budget(t *testing.T) {
	tests := []struct {
		name   string
		budget int
		want   int
	}{
		{"预算1", 1, 1},
		{"预算3", 3, 3},
		{"预算大于页面数", 100, 11},
		{"预算0按1处理", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCrawlSession("home", tt.budget)
			links := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10"}
			for u, ok := s.Pop(); ok; u, ok = s.Pop() {
				if !s.TryVisit(u) {
					continue
				}
				if u == "home" {
					s.Push(links)
				} else {
					s.Push([]string{"home"})
				}
			}

			if s.VisitedCount() != tt.want {
				t.Errorf("VisitedCount() = %d, want %d", s.VisitedCount(), tt.want)
			}
			seen := map[string]bool{}
			for _, u := range s.Visited() {
				if seen[u] {
					t.Errorf("重复访问: %s", u)
				}
				seen[u] = true
			}
		})
	}
}

func TestCrawlSession_TryVisit(t *testing.T) {
	s := NewCrawlSession("home", 2)

	if !s.TryVisit("home") {
		t.Fatal("首次访问应成功")
	}
	if s.TryVisit("home") {
		t.Error("重复访问应失败")
	}
	if !s.TryVisit("other") {
		t.Error("预算内的新页面应成功")
	}
	if s.TryVisit("third") {
		t.Error("预算耗尽后应失败")
	}
	if !s.Exhausted() {
		t.Error("Exhausted() 应为 true")
	}
	if !s.IsVisited("other") || s.IsVisited("third") {
		t.Error("IsVisited 结果不正确")
	}
}

func TestCrawlSession_PushSkipsVisited(t *testing.T) {
	s := NewCrawlSession("home", 5)
	s.Pop()
	s.TryVisit("home")

	s.Push([]string{"home", "a", "b"})
	if s.PendingCount() != 2 {
		t.Errorf("PendingCount() = %d, want 2", s.PendingCount())
	}
	if u, _ := s.Pop(); u != "a" {
		t.Errorf("Pop() = %s, want a", u)
	}
}
