package utils

import "math"

// Easing Functions (缓动函数)
//
// 所有缓动函数接受进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 输入范围由调用方保证（需要时先调用 Clamp01）。
//
// 参考：https://easings.net/

// EaseInOutCubic 三次方缓入缓出
// 特点：开始慢，中间快，结束慢
// 用于等待→播放的过渡阶段，以及播放结尾调整的分段进度
// 公式：
//
//	t < 0.5: f(t) = 4t³
//	t >= 0.5: f(t) = 1 - (-2t + 2)³ / 2
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseOutQuint 五次方缓出
// 特点：起步很快，收尾非常平缓（漂移阶段的整体进度）
// 公式：f(t) = 1 - (1-t)⁵
func EaseOutQuint(t float64) float64 {
	return 1 - math.Pow(1-t, 5)
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b，不对 t 做限制
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 将 t 限制在 [0, 1]
// NaN 视为 0
func Clamp01(t float64) float64 {
	if t > 1 {
		return 1
	}
	if t > 0 {
		return t
	}
	return 0
}

// StaggeredProgress 计算分段进度
// 在 [start, end] 区间内把整体进度 t 重新映射到 [0, 1]：
// t <= start 返回 0，t >= end 返回 1
//
// 例如播放结尾调整中：位置在前 70% 完成 → StaggeredProgress(f, 0, 0.7)；
// 旋转从 30% 开始 → StaggeredProgress(f, 0.3, 1)
func StaggeredProgress(t, start, end float64) float64 {
	if end <= start {
		if t >= end {
			return 1
		}
		return 0
	}
	if t <= start {
		return 0
	}
	return Clamp01((t - start) / (end - start))
}
