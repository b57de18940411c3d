package models

// AnalysisState 分析状态机的状态
type AnalysisState string

const (
	StateIdle              AnalysisState = "idle"
	StateScanningLibraries AnalysisState = "scanning_libraries"
	StateCrawling          AnalysisState = "crawling"
	StateMerging           AnalysisState = "merging"
	StateDone              AnalysisState = "done"
	StateError             AnalysisState = "error"
)

// ProgressEvent 进度事件
// 同一次分析内 Percent 单调不减,终值总是100
type ProgressEvent struct {
	Status  string `json:"status"`
	Percent int    `json:"percent"`
	Detail  string `json:"detail"`
}

// ProgressSink 进度接收者
// 分析器在各个里程碑同步调用 Report,实现不应长时间阻塞
type ProgressSink interface {
	Report(event ProgressEvent)
}

// ProgressFunc 函数适配器
type ProgressFunc func(event ProgressEvent)

// Report 实现 ProgressSink 接口
func (f ProgressFunc) Report(event ProgressEvent) {
	f(event)
}

// NopProgressSink 丢弃所有事件
type NopProgressSink struct{}

// Report 实现 ProgressSink 接口
func (NopProgressSink) Report(ProgressEvent) {}
