package models

import (
	"encoding/json"
	"time"
)

// AnalysisResult 单次分析结果
type AnalysisResult struct {
	// 任务信息
	ID         string        `json:"id"`          // 分析ID (UUID)
	StoreURL   string        `json:"store_url"`   // 起始URL(以/结尾)
	BaseOrigin string        `json:"base_origin"` // scheme://host
	State      AnalysisState `json:"state"`       // 最终状态

	// 结果
	Assets []string   `json:"assets"` // 排序去重后的资源路径
	Stats  AssetStats `json:"stats"`  // 分类统计

	// 爬取信息
	VisitedPages  []string `json:"visited_pages"`  // 按访问顺序
	FailedPages   []string `json:"failed_pages"`   // 获取失败的页面
	PagesVisited  int      `json:"pages_visited"`  // 已访问页面数
	MaxPages      int      `json:"max_pages"`      // 页面预算
	LibraryAssets int      `json:"library_assets"` // 文件系统扫描发现数
	CrawledAssets int      `json:"crawled_assets"` // 爬取发现的新增数
	Truncated     bool     `json:"truncated"`      // 是否因时间上限提前结束

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 错误信息
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewAnalysisResult 创建分析结果
func NewAnalysisResult(storeURL string, maxPages int) *AnalysisResult {
	return &AnalysisResult{
		ID:           generateID(),
		StoreURL:     storeURL,
		State:        StateIdle,
		Assets:       []string{},
		VisitedPages: []string{},
		FailedPages:  []string{},
		MaxPages:     maxPages,
		StartTime:    time.Now(),
	}
}

// ToJSON 序列化为JSON
func (r *AnalysisResult) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *AnalysisResult) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}

// UploadDetail 单个文件的上传结果
type UploadDetail struct {
	URL        string `json:"url"`
	LocalPath  string `json:"local_path,omitempty"`
	RemotePath string `json:"remote_path,omitempty"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
}

// UploadSummary 批量上传摘要
type UploadSummary struct {
	Total    int            `json:"total"`
	Success  int            `json:"success"`
	Failed   int            `json:"failed"`
	Details  []UploadDetail `json:"details"`
	Duration float64        `json:"duration"` // 秒
}

// ToJSON 序列化为JSON
func (s *UploadSummary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
