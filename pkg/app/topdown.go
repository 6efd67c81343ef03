package app

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/camtimeline/internal/camclip"
	"github.com/decker502/camtimeline/pkg/components"
	"github.com/decker502/camtimeline/pkg/config"
	"github.com/decker502/camtimeline/pkg/systems"
	"github.com/decker502/camtimeline/pkg/timeline"
)

const (
	// maxTrail 轨迹最多保留的点数
	maxTrail = 1200
	// pathStep 片段路径采样间隔（秒）
	pathStep = 0.1
	// viewMargin 视图边缘留白（像素）
	viewMargin = 24
	// forwardLength 朝向指示线长度（世界单位）
	forwardLength = 3.0
)

var (
	viewBorder   = color.RGBA{60, 64, 72, 255}
	pathColor    = color.RGBA{90, 90, 140, 255}
	trailColor   = color.RGBA{0, 200, 255, 255}
	cameraColor  = color.RGBA{255, 255, 255, 255}
	waitColor    = color.RGBA{255, 102, 0, 255}
	targetColor  = color.RGBA{255, 60, 60, 255}
	forwardColor = color.RGBA{255, 255, 0, 255}
)

// TopDownView 场景俯视图：X 轴向右，Z 轴向下
type TopDownView struct {
	x, y, w, h float64

	waitPos, waitTarget, framing mgl64.Vec3

	// 世界坐标包围盒（XZ 平面）
	minX, maxX, minZ, maxZ float64

	path    []mgl64.Vec3
	hasPath bool
	trail   []mgl64.Vec3
}

// NewTopDownView 创建俯视图，初始包围盒包含等待机位、目标点和默认相机
func NewTopDownView(cfg *config.TimelineConfig, x, y, w, h float64) *TopDownView {
	v := &TopDownView{
		x: x, y: y, w: w, h: h,
		waitPos:    config.Vec3(cfg.WaitCamera.Position),
		waitTarget: config.Vec3(cfg.WaitCamera.Target),
		framing:    config.Vec3(cfg.Drift.FramingTarget),
		minX:       math.Inf(1),
		maxX:       math.Inf(-1),
		minZ:       math.Inf(1),
		maxZ:       math.Inf(-1),
	}
	v.include(v.waitPos)
	v.include(v.waitTarget)
	v.include(v.framing)
	v.include(config.Vec3(cfg.DefaultCamera.Position))
	return v
}

func (v *TopDownView) include(p mgl64.Vec3) {
	v.minX = math.Min(v.minX, p.X())
	v.maxX = math.Max(v.maxX, p.X())
	v.minZ = math.Min(v.minZ, p.Z())
	v.maxZ = math.Max(v.maxZ, p.Z())
}

// SetPath 采样片段位置作为路径预览
func (v *TopDownView) SetPath(clip *camclip.Clip) {
	v.path = v.path[:0]
	d := clip.Duration()
	n := int(math.Ceil(d / pathStep))
	for i := 0; i <= n; i++ {
		t := math.Min(float64(i)*pathStep, d)
		if s, ok := clip.SampleAt(t); ok && s.Position != nil {
			v.path = append(v.path, *s.Position)
			v.include(*s.Position)
		}
	}
	v.hasPath = true
}

// HasPath 是否已设置路径
func (v *TopDownView) HasPath() bool {
	return v.hasPath
}

// Track 记录相机轨迹，作为 CameraSystem 的位姿监听者
func (v *TopDownView) Track(u systems.PoseUpdate) {
	v.trail = append(v.trail, u.Pose.Position)
	if len(v.trail) > maxTrail {
		v.trail = v.trail[len(v.trail)-maxTrail:]
	}
	v.include(u.Pose.Position)
}

// ClearTrail 清空轨迹
func (v *TopDownView) ClearTrail() {
	v.trail = v.trail[:0]
}

// Project 世界坐标投影到屏幕，XZ 平面等比缩放并居中
func (v *TopDownView) Project(p mgl64.Vec3) (float32, float32) {
	spanX := math.Max(v.maxX-v.minX, 1e-6)
	spanZ := math.Max(v.maxZ-v.minZ, 1e-6)
	innerW := v.w - 2*viewMargin
	innerH := v.h - 2*viewMargin
	scale := math.Min(innerW/spanX, innerH/spanZ)

	offX := v.x + viewMargin + (innerW-spanX*scale)/2
	offY := v.y + viewMargin + (innerH-spanZ*scale)/2
	return float32(offX + (p.X()-v.minX)*scale), float32(offY + (p.Z()-v.minZ)*scale)
}

// Draw 绘制俯视图
func (v *TopDownView) Draw(screen *ebiten.Image, cam *components.CameraComponent, frame timeline.Frame, showPath bool) {
	vector.StrokeRect(screen, float32(v.x), float32(v.y), float32(v.w), float32(v.h), 1, viewBorder, false)

	if showPath {
		v.drawPolyline(screen, v.path, pathColor)
	}
	v.drawPolyline(screen, v.trail, trailColor)

	v.drawMarker(screen, v.waitPos, waitColor)
	v.drawMarker(screen, v.waitTarget, targetColor)
	v.drawMarker(screen, v.framing, targetColor)

	if cam == nil {
		return
	}
	cx, cy := v.Project(cam.Position)
	fx, fy := v.Project(cam.Position.Add(cam.Forward().Mul(forwardLength)))
	vector.StrokeLine(screen, cx, cy, fx, fy, 2, forwardColor, true)
	vector.DrawFilledCircle(screen, cx, cy, 5, cameraColor, true)

	info := fmt.Sprintf("%s %.2fs\npos (%.2f, %.2f, %.2f)\nrot (%.3f, %.3f, %.3f)\nfov %.2f",
		frame.Phase, frame.PhaseTime,
		cam.Position.X(), cam.Position.Y(), cam.Position.Z(),
		cam.Rotation.X, cam.Rotation.Y, cam.Rotation.Z,
		cam.FOV)
	ebitenutil.DebugPrintAt(screen, info, int(v.x)+8, int(v.y)+8)
}

func (v *TopDownView) drawPolyline(screen *ebiten.Image, pts []mgl64.Vec3, clr color.Color) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := v.Project(pts[i-1])
		x1, y1 := v.Project(pts[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, clr, true)
	}
}

func (v *TopDownView) drawMarker(screen *ebiten.Image, p mgl64.Vec3, clr color.Color) {
	x, y := v.Project(p)
	vector.StrokeRect(screen, x-3, y-3, 6, 6, 1, clr, false)
}
