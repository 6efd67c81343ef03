package systems

import (
	"errors"
	"log/slog"

	"github.com/decker502/camtimeline/internal/logging"
	"github.com/decker502/camtimeline/pkg/components"
	"github.com/decker502/camtimeline/pkg/ecs"
	"github.com/decker502/camtimeline/pkg/pose"
	"github.com/decker502/camtimeline/pkg/timeline"
)

// PoseUpdate 每次成功应用位姿后发给监听者的数据
type PoseUpdate struct {
	Elapsed   float64
	Phase     timeline.Phase
	PhaseTime float64
	Pose      pose.CameraPose
	Near      float64
	Far       float64
}

// CameraSystem 每帧驱动时间线并把结果写回相机组件
//
// 系统持有漂移基线，时间线查询失败的帧不修改相机，
// 错误保存在 LastError 中。
type CameraSystem struct {
	entityManager *ecs.EntityManager
	cameraEntity  ecs.EntityID
	timeline      *timeline.Timeline
	baseline      timeline.DriftBaseline
	listeners     []func(PoseUpdate)
	logger        *slog.Logger

	lastPhase timeline.Phase
	hasPhase  bool
	lastErr   error
}

// NewCameraSystem 创建相机系统，并创建带默认参数的相机实体。
//
// 参数:
//   - em: 实体管理器
//   - tl: 相机时间线
//   - logger: 日志，nil 时丢弃
func NewCameraSystem(em *ecs.EntityManager, tl *timeline.Timeline, logger *slog.Logger) *CameraSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	cs := &CameraSystem{
		entityManager: em,
		timeline:      tl,
		logger:        logging.WithComponent(logger, "camera"),
	}

	cs.cameraEntity = em.CreateEntity()
	ecs.AddComponent(em, cs.cameraEntity, components.NewCameraComponent(tl.Config().DefaultCamera))

	return cs
}

// OnPoseUpdate 注册位姿更新回调
func (cs *CameraSystem) OnPoseUpdate(fn func(PoseUpdate)) {
	cs.listeners = append(cs.listeners, fn)
}

// Update 以全局时间 elapsed 驱动相机。
//
// 返回本次查询的帧以及是否已应用到相机。
// 未应用时 Frame.Phase 仍然有效，可用于界面显示。
func (cs *CameraSystem) Update(elapsed float64) (timeline.Frame, bool) {
	cam, ok := ecs.GetComponent[*components.CameraComponent](cs.entityManager, cs.cameraEntity)
	if !ok {
		return timeline.Frame{}, false
	}

	frame, err := cs.timeline.Evaluate(elapsed, cam.Pose(), &cs.baseline)

	if !cs.hasPhase {
		cs.logger.Debug("phase entered", "to", frame.Phase, "elapsed", elapsed)
	} else if frame.Phase != cs.lastPhase {
		cs.logger.Debug("phase changed",
			"from", cs.lastPhase,
			"to", frame.Phase,
			"elapsed", elapsed)
	}
	cs.lastPhase = frame.Phase
	cs.hasPhase = true

	if err != nil {
		// 未就绪和缺少采样只是本帧没有更新
		if cs.lastErr != nil || errors.Is(err, timeline.ErrSourceNotReady) || errors.Is(err, timeline.ErrMissingSample) {
			cs.logger.Debug("camera update skipped", "elapsed", elapsed, "error", err)
		} else {
			cs.logger.Warn("camera update failed", "elapsed", elapsed, "error", err)
		}
		cs.lastErr = err
		return frame, false
	}
	if cs.lastErr != nil {
		cs.logger.Info("camera updates resumed", "elapsed", elapsed, "phase", frame.Phase)
		cs.lastErr = nil
	}

	cam.Apply(frame.Pose)

	update := PoseUpdate{
		Elapsed:   elapsed,
		Phase:     frame.Phase,
		PhaseTime: frame.PhaseTime,
		Pose:      frame.Pose,
		Near:      cam.Near,
		Far:       cam.Far,
	}
	for _, fn := range cs.listeners {
		fn(update)
	}

	return frame, true
}

// Reset 恢复默认相机并清空漂移基线，用于回到时间线起点
func (cs *CameraSystem) Reset() {
	cs.baseline.Clear()
	cs.hasPhase = false
	cs.lastErr = nil
	ecs.AddComponent(cs.entityManager, cs.cameraEntity, components.NewCameraComponent(cs.timeline.Config().DefaultCamera))
}

// Camera 返回相机组件
func (cs *CameraSystem) Camera() *components.CameraComponent {
	cam, _ := ecs.GetComponent[*components.CameraComponent](cs.entityManager, cs.cameraEntity)
	return cam
}

// CameraEntity 返回相机实体 ID
func (cs *CameraSystem) CameraEntity() ecs.EntityID {
	return cs.cameraEntity
}

// Timeline 返回驱动的时间线
func (cs *CameraSystem) Timeline() *timeline.Timeline {
	return cs.timeline
}

// Baseline 返回当前漂移基线
func (cs *CameraSystem) Baseline() (pose.CameraPose, bool) {
	return cs.baseline.Pose()
}

// LastError 最近一次失败的查询错误，成功应用后清空
func (cs *CameraSystem) LastError() error {
	return cs.lastErr
}
