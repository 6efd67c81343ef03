package timeline

import (
	"errors"

	"github.com/decker502/camtimeline/pkg/pose"
)

// 单次查询的失败类型，均为非致命：调用方保持上一帧位姿，下一帧重新计算。
var (
	// ErrSourceNotReady 动画源尚未就绪
	ErrSourceNotReady = errors.New("animation source not ready")

	// ErrMissingSample 动画源就绪但在请求时间没有采样
	ErrMissingSample = errors.New("animation source returned no sample")

	// ErrMalformedOrientation 采样朝向无效
	ErrMalformedOrientation = pose.ErrMalformedOrientation

	// ErrNoBaselineState 漂移阶段没有提供基线状态
	ErrNoBaselineState = errors.New("drift baseline state is nil")
)
