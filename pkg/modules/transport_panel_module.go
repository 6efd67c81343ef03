package modules

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/camtimeline/pkg/timeline"
)

// CompletedThreshold 进度达到该百分比视为播放完成
const CompletedThreshold = 99.9

// PanelStatus 面板状态栏
type PanelStatus int

const (
	StatusStopped PanelStatus = iota
	StatusPlaying
	StatusCompleted
)

func (s PanelStatus) String() string {
	switch s {
	case StatusPlaying:
		return "Playing"
	case StatusCompleted:
		return "Completed"
	default:
		return "Stopped"
	}
}

// Segment 进度条上的一个阶段
type Segment struct {
	Phase  timeline.Phase
	Start  float64 // 占总时长的比例
	Width  float64 // 占总时长的比例
	Active bool
}

// ClipInfo 面板显示的片段信息
type ClipInfo struct {
	Name     string
	Duration float64
	Tracks   int
	Loaded   bool
}

// TotalDuration 面板显示的总时长
// 漂移阶段没有终点，开启时按调整时长计入
func TotalDuration(b timeline.Boundaries, driftAdjust float64) float64 {
	total := b.PlaybackEnd()
	if b.DriftEnabled {
		total += driftAdjust
	}
	return total
}

// Progress 播放进度百分比 ∈ [0, 100]
func Progress(elapsed, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Max(0, math.Min(100, elapsed/total*100))
}

// Status 计算状态栏：播放中优先，否则进度达到阈值为完成
func Status(playing bool, progress float64) PanelStatus {
	if playing {
		return StatusPlaying
	}
	if progress >= CompletedThreshold {
		return StatusCompleted
	}
	return StatusStopped
}

// Segments 按阶段划分进度条，当前阶段高亮
func Segments(b timeline.Boundaries, total float64, current timeline.Phase) []Segment {
	if total <= 0 {
		return nil
	}
	phases := b.Phases()
	segs := make([]Segment, 0, len(phases))
	for i, p := range phases {
		start := b.PhaseStart(p)
		end := total
		if i+1 < len(phases) {
			end = b.PhaseStart(phases[i+1])
		}
		segs = append(segs, Segment{
			Phase:  p,
			Start:  start / total,
			Width:  math.Max(0, end-start) / total,
			Active: p == current,
		})
	}
	return segs
}

// TransportPanelModule 播放控制面板
//
// 显示时间、分阶段进度条、片段信息和状态；不处理输入，
// 按键由 App 转交给 Transport。
type TransportPanelModule struct {
	x, y, width float64

	elapsed  float64
	total    float64
	phase    timeline.Phase
	segments []Segment
	status   PanelStatus
	speed    float64
	clip     ClipInfo
	lastErr  error
}

// NewTransportPanelModule 创建面板
//
// 参数:
//   - x, y: 面板左上角屏幕坐标
//   - width: 面板宽度
func NewTransportPanelModule(x, y, width float64) *TransportPanelModule {
	return &TransportPanelModule{x: x, y: y, width: width, speed: 1}
}

// Update 刷新面板显示的数据
func (m *TransportPanelModule) Update(tr *Transport, b timeline.Boundaries, driftAdjust float64, phase timeline.Phase, clip ClipInfo, lastErr error) {
	m.elapsed = tr.Elapsed()
	m.speed = tr.Speed()
	m.total = TotalDuration(b, driftAdjust)
	m.phase = phase
	m.segments = Segments(b, m.total, phase)
	m.status = Status(tr.IsPlaying(), Progress(m.elapsed, m.total))
	m.clip = clip
	m.lastErr = lastErr
}

// Status 返回当前状态栏
func (m *TransportPanelModule) Status() PanelStatus {
	return m.status
}

// Lines 面板文本行
func (m *TransportPanelModule) Lines() []string {
	lines := []string{
		"Animation Controls  [Space] play/pause  [S] stop",
		fmt.Sprintf("Time: %.2fs / %.2fs  x%.2f", m.elapsed, m.total, m.speed),
		fmt.Sprintf("Phase: %s", m.phase),
		fmt.Sprintf("Progress: %.1f%%", Progress(m.elapsed, m.total)),
	}
	if m.clip.Loaded {
		lines = append(lines,
			fmt.Sprintf("Camera: %s", m.clip.Name),
			fmt.Sprintf("  Duration: %.2fs  Tracks: %d", m.clip.Duration, m.clip.Tracks))
	} else {
		lines = append(lines, "Camera: loading...")
	}
	lines = append(lines, fmt.Sprintf("Status: %s", m.status))
	if m.lastErr != nil {
		lines = append(lines, fmt.Sprintf("Skipped: %v", m.lastErr))
	}
	return lines
}

var (
	panelBackground = color.RGBA{0, 0, 0, 230}
	panelBorder     = color.RGBA{0, 255, 0, 255}
	segmentIdle     = color.RGBA{68, 68, 68, 255}
	cursorColor     = color.RGBA{255, 255, 255, 255}

	phaseColors = map[timeline.Phase]color.RGBA{
		timeline.PhaseWait:       {255, 102, 0, 255},
		timeline.PhaseTransition: {255, 255, 0, 255},
		timeline.PhasePlayback:   {0, 255, 0, 255},
		timeline.PhaseDrift:      {0, 255, 255, 255},
	}
)

const (
	panelPadding = 10
	lineHeight   = 16
	barHeight    = 8
)

// Draw 绘制面板
func (m *TransportPanelModule) Draw(screen *ebiten.Image) {
	lines := m.Lines()
	height := float64(panelPadding*3 + barHeight + len(lines)*lineHeight)

	x, y, w := float32(m.x), float32(m.y), float32(m.width)
	vector.DrawFilledRect(screen, x, y, w, float32(height), panelBackground, false)
	vector.StrokeRect(screen, x, y, w, float32(height), 1, panelBorder, false)

	cy := m.y + panelPadding
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, int(m.x)+panelPadding, int(cy))
		cy += lineHeight
		// 进度条紧跟时间行
		if i == 1 {
			m.drawBar(screen, float32(m.x+panelPadding), float32(cy))
			cy += barHeight + panelPadding
		}
	}
}

func (m *TransportPanelModule) drawBar(screen *ebiten.Image, x, y float32) {
	w := float32(m.width - 2*panelPadding)
	vector.DrawFilledRect(screen, x, y, w, barHeight, segmentIdle, false)

	for _, s := range m.segments {
		c := segmentIdle
		if s.Active {
			c = phaseColors[s.Phase]
		}
		vector.DrawFilledRect(screen, x+float32(s.Start)*w, y, float32(s.Width)*w, barHeight, c, false)
		vector.StrokeLine(screen, x+float32(s.Start)*w, y, x+float32(s.Start)*w, y+barHeight, 1, color.Black, false)
	}

	cursor := x + float32(Progress(m.elapsed, m.total)/100)*w
	vector.DrawFilledRect(screen, cursor-1, y, 2, barHeight, cursorColor, false)
}
