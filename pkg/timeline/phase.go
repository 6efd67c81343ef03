package timeline

import "fmt"

// Phase 时间线阶段
type Phase int

const (
	// PhaseWait 静止等待机位
	PhaseWait Phase = iota
	// PhaseTransition 从等待机位平滑过渡到片段第一帧
	PhaseTransition
	// PhasePlayback 播放外部相机片段（含结尾构图修正）
	PhasePlayback
	// PhaseDrift 片段结束后的开放式漂移，终态
	PhaseDrift
)

// String 返回阶段名称
func (p Phase) String() string {
	switch p {
	case PhaseWait:
		return "WAIT"
	case PhaseTransition:
		return "TRANSITION"
	case PhasePlayback:
		return "PLAYBACK"
	case PhaseDrift:
		return "DRIFT"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// PhaseState 某一全局时间对应的阶段与阶段局部时间
type PhaseState struct {
	Phase     Phase
	PhaseTime float64
}

// Boundaries 阶段边界
//
// WAIT 覆盖 [0, Wait)，TRANSITION 覆盖 [Wait, Wait+Transition)，
// PLAYBACK 覆盖 [Wait+Transition, Wait+Transition+Clip)，其后为 DRIFT。
// DriftEnabled 为 false 时 PLAYBACK 没有终点（三阶段模式）。
type Boundaries struct {
	Wait         float64
	Transition   float64
	Clip         float64
	DriftEnabled bool
}

// PhaseStart 返回阶段起始的全局时间
func (b Boundaries) PhaseStart(p Phase) float64 {
	switch p {
	case PhaseTransition:
		return b.Wait
	case PhasePlayback:
		return b.Wait + b.Transition
	case PhaseDrift:
		return b.Wait + b.Transition + b.Clip
	default:
		return 0
	}
}

// PlaybackEnd 片段播放结束的全局时间
func (b Boundaries) PlaybackEnd() float64 {
	return b.PhaseStart(PhaseDrift)
}

// Phases 当前边界下存在的阶段
func (b Boundaries) Phases() []Phase {
	if b.DriftEnabled {
		return []Phase{PhaseWait, PhaseTransition, PhasePlayback, PhaseDrift}
	}
	return []Phase{PhaseWait, PhaseTransition, PhasePlayback}
}

// Resolve 将全局时间映射为 (阶段, 阶段局部时间)
//
// 依次与累计边界比较；负数和 NaN 按 0 处理，超过最后边界的时间一直停留在 DRIFT。
func Resolve(elapsed float64, b Boundaries) PhaseState {
	t := elapsed
	if !(t > 0) {
		t = 0
	}

	if t < b.Wait {
		return PhaseState{Phase: PhaseWait, PhaseTime: t}
	}

	playbackStart := b.PhaseStart(PhasePlayback)
	if t < playbackStart {
		return PhaseState{Phase: PhaseTransition, PhaseTime: t - b.Wait}
	}

	driftStart := b.PhaseStart(PhaseDrift)
	if !b.DriftEnabled || t < driftStart {
		return PhaseState{Phase: PhasePlayback, PhaseTime: t - playbackStart}
	}

	return PhaseState{Phase: PhaseDrift, PhaseTime: t - driftStart}
}
