package timeline

import "github.com/decker502/camtimeline/pkg/pose"

// AnimationSource 外部相机片段
//
// 未就绪时查询必须是安全的空操作，不能阻塞。
type AnimationSource interface {
	// IsReady 片段是否可以采样
	IsReady() bool

	// Duration 片段总时长（秒）
	Duration() float64

	// SampleAt 返回片段局部时间 localSeconds 处的采样，无采样时 ok 为 false
	SampleAt(localSeconds float64) (sample pose.Sample, ok bool)
}
