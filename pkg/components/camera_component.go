package components

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/camtimeline/pkg/config"
	"github.com/decker502/camtimeline/pkg/pose"
)

// CameraComponent 场景相机当前已应用的状态
//
// 时间线每帧计算出新位姿后写回这里；查询失败的帧保持上一帧的值。
// Rotation 始终以 XYZ 欧拉角保存，四元数输入在 Apply 时转换。
type CameraComponent struct {
	// Position 相机世界坐标
	Position mgl64.Vec3

	// Rotation XYZ 欧拉角（弧度）
	Rotation pose.Euler

	// FOV 垂直视场角（度）
	FOV float64

	// Near / Far 裁剪面，只用于投影，不参与动画
	Near float64
	Far  float64

	// Quat 最近一次应用的朝向是否来自四元数
	Quat bool
}

// NewCameraComponent 以配置中的默认相机创建组件
func NewCameraComponent(dc config.DefaultCameraConfig) *CameraComponent {
	return &CameraComponent{
		Position: config.Vec3(dc.Position),
		Rotation: pose.Euler{X: dc.Rotation[0], Y: dc.Rotation[1], Z: dc.Rotation[2]},
		FOV:      dc.FOV,
		Near:     dc.Near,
		Far:      dc.Far,
	}
}

// Pose 返回当前位姿
func (c *CameraComponent) Pose() pose.CameraPose {
	o := pose.FromEuler(c.Rotation)
	if c.Quat {
		o = pose.FromQuat(pose.EulerToQuat(c.Rotation))
	}
	return pose.CameraPose{
		Position:    c.Position,
		Orientation: o,
		FOV:         c.FOV,
	}
}

// Apply 写入新的位姿
func (c *CameraComponent) Apply(p pose.CameraPose) {
	c.Position = p.Position
	c.Rotation = p.Orientation.Euler()
	c.Quat = p.Orientation.IsQuat()
	c.FOV = p.FOV
}

// Forward 相机朝向的单位向量
func (c *CameraComponent) Forward() mgl64.Vec3 {
	return pose.FromEuler(c.Rotation).Forward()
}
