// Package timeline 实现相机动画时间线：
// 等待 → 过渡 → 播放 → 漂移 四个阶段的状态机，以及每个阶段的位姿计算。
//
// 时间线本身不保存帧间状态。唯一的跨帧状态是漂移基线（DriftBaseline），
// 由调用方持有并在每次查询时传入。
package timeline

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/camtimeline/pkg/config"
	"github.com/decker502/camtimeline/pkg/pose"
	"github.com/decker502/camtimeline/pkg/utils"
)

// Frame 一次查询的结果
type Frame struct {
	Pose      pose.CameraPose
	Phase     Phase
	PhaseTime float64
}

// Timeline 相机动画时间线
type Timeline struct {
	cfg    *config.TimelineConfig
	source AnimationSource
	logger *slog.Logger
}

// New 创建时间线
//
// 参数:
//   - cfg: 已校验的时间线配置
//   - source: 相机片段，可以尚未就绪，也可以为 nil（只能计算等待阶段）
//   - logger: 日志，nil 时丢弃输出
func New(cfg *config.TimelineConfig, source AnimationSource, logger *slog.Logger) *Timeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Timeline{
		cfg:    cfg,
		source: source,
		logger: logger,
	}
}

// Config 返回时间线配置
func (tl *Timeline) Config() *config.TimelineConfig {
	return tl.cfg
}

// Source 返回动画源
func (tl *Timeline) Source() AnimationSource {
	return tl.source
}

// Boundaries 返回当前的阶段边界
// 片段时长每次重新读取；动画源未就绪时使用配置的后备时长
func (tl *Timeline) Boundaries() Boundaries {
	clip := tl.cfg.FallbackClipDuration
	if tl.sourceReady() {
		if d := tl.source.Duration(); d >= 0 && !math.IsInf(d, 0) && !math.IsNaN(d) {
			clip = d
		}
	}
	return Boundaries{
		Wait:         tl.cfg.WaitDuration,
		Transition:   tl.cfg.TransitionDuration,
		Clip:         clip,
		DriftEnabled: tl.cfg.Drift.Enabled,
	}
}

// Resolve 将全局时间映射为阶段
func (tl *Timeline) Resolve(elapsed float64) PhaseState {
	return Resolve(elapsed, tl.Boundaries())
}

// Evaluate 计算全局时间 elapsed 对应的相机位姿
//
// current 是相机当前已应用的位姿：播放阶段缺省的通道沿用它，
// 进入漂移阶段时它被记录为基线。baseline 由调用方持有，
// 解析出的阶段不是 DRIFT 时会被清空。
//
// 返回错误时 Frame.Pose 无意义，调用方应保持上一帧位姿；
// Frame.Phase 和 Frame.PhaseTime 始终有效。
// 相同的 elapsed、current 与 baseline 总是得到相同结果。
func (tl *Timeline) Evaluate(elapsed float64, current pose.CameraPose, baseline *DriftBaseline) (frame Frame, err error) {
	bounds := tl.Boundaries()
	state := Resolve(elapsed, bounds)
	frame.Phase = state.Phase
	frame.PhaseTime = state.PhaseTime

	if state.Phase != PhaseDrift && baseline != nil {
		baseline.Clear()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("phase %s at %.3fs: panic: %v", state.Phase, state.PhaseTime, r)
		}
	}()

	var p pose.CameraPose
	switch state.Phase {
	case PhaseWait:
		p = tl.waitPose()
	case PhaseTransition:
		p, err = tl.transitionPose(state.PhaseTime)
	case PhasePlayback:
		p, err = tl.playbackPose(state.PhaseTime, bounds.Clip, current)
	case PhaseDrift:
		p, err = tl.driftPose(state.PhaseTime, current, baseline)
	}
	if err != nil {
		return frame, fmt.Errorf("phase %s at %.3fs: %w", state.Phase, state.PhaseTime, err)
	}

	frame.Pose = p
	return frame, nil
}

// waitPose 等待阶段：固定位置、look-at 目标、固定视场角
func (tl *Timeline) waitPose() pose.CameraPose {
	wc := tl.cfg.WaitCamera
	eye := config.Vec3(wc.Position)
	return pose.CameraPose{
		Position:    eye,
		Orientation: pose.FromEuler(pose.LookAt(eye, config.Vec3(wc.Target))),
		FOV:         wc.FOV,
	}
}

// transitionPose 过渡阶段：三个通道共用同一个缓动进度，从等待机位插值到片段第一帧
func (tl *Timeline) transitionPose(pt float64) (pose.CameraPose, error) {
	start, err := tl.sampleAt(0)
	if err != nil {
		return pose.CameraPose{}, err
	}
	if start.Position == nil || start.Orientation == nil {
		return pose.CameraPose{}, fmt.Errorf("%w: clip start lacks position or orientation", ErrMissingSample)
	}

	// 进度不截断，由阶段解析保证 pt < TransitionDuration
	progress := pt / tl.cfg.TransitionDuration
	eased := utils.EaseInOutCubic(progress)

	wait := tl.waitPose()

	endFOV := tl.cfg.DefaultCamera.FOV
	if start.FOV != nil && *start.FOV != 0 {
		endFOV = *start.FOV
	}

	return pose.CameraPose{
		Position:    pose.LerpVec3(wait.Position, *start.Position, eased),
		Orientation: pose.FromEuler(pose.LerpEuler(wait.Orientation.Euler(), start.Orientation.Euler(), eased)),
		FOV:         utils.Lerp(wait.FOV, endFOV, eased),
	}, nil
}

// playbackPose 播放阶段：原始采样 + 结尾构图修正
//
// 修正只叠加在采样之上：位置偏移在调整窗口前段完成，
// 旋转偏移在窗口后段完成。四元数采样在自身旋转之后再绕 Y 轴旋转，
// 欧拉角采样直接加到 Y 分量。视场角原样透传。
func (tl *Timeline) playbackPose(pt, clipDuration float64, current pose.CameraPose) (pose.CameraPose, error) {
	sample, err := tl.sampleAt(pt)
	if err != nil {
		return pose.CameraPose{}, err
	}

	ea := tl.cfg.EndAdjust
	factor := EndAdjustFactor(pt, clipDuration, ea.Window)

	out := current

	if sample.Position != nil {
		p := *sample.Position
		if factor > 0 {
			s := utils.EaseInOutCubic(utils.StaggeredProgress(factor, 0, ea.PositionEnd))
			p = p.Add(config.Vec3(ea.PositionOffset).Mul(s))
		}
		out.Position = p
	}

	if sample.Orientation != nil {
		var yaw float64
		if factor > 0 {
			yaw = ea.YawOffset * utils.EaseInOutCubic(utils.StaggeredProgress(factor, ea.RotationStart, 1))
		}
		o := *sample.Orientation
		if o.IsQuat() {
			q := o.Quat()
			if yaw != 0 {
				q = q.Mul(pose.YawRotation(yaw))
			}
			out.Orientation = pose.FromQuat(q)
		} else {
			e := o.Euler()
			e.Y += yaw
			out.Orientation = pose.FromEuler(e)
		}
	}

	if sample.FOV != nil {
		out.FOV = *sample.FOV
	}

	return out, nil
}

// EndAdjustFactor 结尾调整因子 ∈ [0, 1]
// 片段最后 window 秒内线性增长，之前为 0
func EndAdjustFactor(pt, clipDuration, window float64) float64 {
	start := clipDuration - window
	if pt < start || window <= 0 {
		return 0
	}
	return math.Min(1, (pt-start)/window)
}

// sampleAt 查询动画源并在入口处规范化朝向
func (tl *Timeline) sampleAt(localSeconds float64) (pose.Sample, error) {
	if !tl.sourceReady() {
		return pose.Sample{}, ErrSourceNotReady
	}
	sample, ok := tl.source.SampleAt(localSeconds)
	if !ok {
		return pose.Sample{}, fmt.Errorf("%w at %.3fs", ErrMissingSample, localSeconds)
	}
	return normalizeSample(sample)
}

func (tl *Timeline) sourceReady() bool {
	return tl.source != nil && tl.source.IsReady()
}

// normalizeSample 校验采样：朝向规范化，位置和视场角必须是有限值
func normalizeSample(s pose.Sample) (pose.Sample, error) {
	out := s
	if s.Orientation != nil {
		o, err := s.Orientation.Normalize()
		if err != nil {
			return pose.Sample{}, err
		}
		out.Orientation = &o
	}
	if s.Position != nil && !finiteVec3(*s.Position) {
		return pose.Sample{}, fmt.Errorf("%w: non-finite position %v", ErrMissingSample, *s.Position)
	}
	if s.FOV != nil && (math.IsNaN(*s.FOV) || math.IsInf(*s.FOV, 0)) {
		return pose.Sample{}, fmt.Errorf("%w: non-finite fov", ErrMissingSample)
	}
	return out, nil
}

func finiteVec3(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
