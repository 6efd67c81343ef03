package timeline

import (
	"github.com/decker502/camtimeline/pkg/config"
	"github.com/decker502/camtimeline/pkg/pose"
	"github.com/decker502/camtimeline/pkg/utils"
)

// DriftBaseline 进入漂移阶段那一刻相机已应用的位姿
//
// 零值表示尚未记录。每次进入漂移阶段只记录一次；
// 解析到其他阶段时被清空，再次进入会重新记录。
type DriftBaseline struct {
	pose     pose.CameraPose
	captured bool
}

// Captured 是否已记录基线
func (b *DriftBaseline) Captured() bool {
	return b.captured
}

// Pose 返回记录的基线
func (b *DriftBaseline) Pose() (pose.CameraPose, bool) {
	return b.pose, b.captured
}

// Clear 清空基线
func (b *DriftBaseline) Clear() {
	b.pose = pose.CameraPose{}
	b.captured = false
}

func (b *DriftBaseline) capture(p pose.CameraPose) {
	b.pose = p
	b.captured = true
}

// driftPose 漂移阶段：从冻结的基线向目标构图混合
//
// 整体进度 = EaseOutQuint(min(1, pt/AdjustDuration))，位置与视场角直接使用整体进度，
// 旋转在整体进度超过 RotationStart 后才开始。目标朝向由插值后的位置
// look-at 构图目标点得到，所以相机在漂移过程中持续重新瞄准。
func (tl *Timeline) driftPose(pt float64, current pose.CameraPose, baseline *DriftBaseline) (pose.CameraPose, error) {
	if !tl.sourceReady() {
		return pose.CameraPose{}, ErrSourceNotReady
	}
	if baseline == nil {
		return pose.CameraPose{}, ErrNoBaselineState
	}

	dc := tl.cfg.Drift

	if !baseline.Captured() {
		if pt > dc.CaptureEpsilon {
			// 跳帧或直接跳转到漂移阶段中途
			tl.logger.Warn("drift baseline captured late", "phaseTime", pt, "epsilon", dc.CaptureEpsilon)
		}
		baseline.capture(current)
		tl.logger.Debug("drift baseline captured",
			"phaseTime", pt,
			"position", current.Position,
			"fov", current.FOV)
	}
	base, _ := baseline.Pose()

	overall := utils.EaseOutQuint(utils.Clamp01(pt / dc.AdjustDuration))
	rotation := utils.StaggeredProgress(overall, dc.RotationStart, 1)

	targetPos := base.Position.Add(config.Vec3(dc.PositionOffset))
	pos := pose.LerpVec3(base.Position, targetPos, overall)

	targetRot := pose.LookAt(pos, config.Vec3(dc.FramingTarget))
	rot := pose.LerpEuler(base.Orientation.Euler(), targetRot, rotation)

	return pose.CameraPose{
		Position:    pos,
		Orientation: pose.FromEuler(rot),
		FOV:         utils.Lerp(base.FOV, base.FOV+dc.FOVOffset, overall),
	}, nil
}
