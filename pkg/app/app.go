// Package app 提供查看器应用的核心包装器
//
// App 实现 ebiten.Game：维护全局播放时钟，每帧驱动相机系统，
// 绘制俯视图和播放控制面板。
package app

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/camtimeline/internal/camclip"
	"github.com/decker502/camtimeline/internal/logging"
	"github.com/decker502/camtimeline/pkg/config"
	"github.com/decker502/camtimeline/pkg/ecs"
	"github.com/decker502/camtimeline/pkg/embedded"
	"github.com/decker502/camtimeline/pkg/game"
	"github.com/decker502/camtimeline/pkg/modules"
	"github.com/decker502/camtimeline/pkg/systems"
	"github.com/decker502/camtimeline/pkg/timeline"
)

// 逻辑屏幕尺寸
const (
	ScreenWidth  = 960
	ScreenHeight = 600
)

// 嵌入的默认资源
const (
	DefaultConfigPath = "data/timeline.yaml"
	DefaultClipPath   = "data/clips/opening.clip"
)

// seekStep 方向键一次跳转的秒数
const seekStep = 1.0

// Config 定义应用启动配置
type Config struct {
	// Verbose 输出 debug 日志，覆盖配置文件中的级别
	Verbose bool
	// ConfigPath 时间线配置文件，为空使用嵌入的默认配置
	ConfigPath string
	// ClipPath 相机片段文件，为空时依次尝试上次打开的片段和嵌入的示例片段
	ClipPath string
	// Track 片段中要播放的轨道，为空自动选择
	Track string
	// Speed 播放速度，<= 0 时使用保存的设置
	Speed float64
	// AppName gdata 存储目录名
	AppName string
}

// App 查看器应用，实现 ebiten.Game 接口
type App struct {
	logger   *slog.Logger
	settings *game.SettingsManager

	cfg          *config.TimelineConfig
	source       *camclip.Source
	cancelLoad   context.CancelFunc
	cameraSystem *systems.CameraSystem
	transport    *modules.Transport
	panel        *modules.TransportPanelModule
	view         *TopDownView

	lastFrame timeline.Frame
}

// NewApp 创建并初始化查看器
//
// 使用嵌入资源时，调用前必须先调用 embedded.Init()。
func NewApp(cfg Config) (*App, error) {
	tcfg, err := loadTimelineConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("时间线配置加载失败: %w", err)
	}

	level := tcfg.Logging.Level
	if cfg.Verbose {
		level = "debug"
	}
	logger := logging.NewLogger(level, nil)

	settings := game.NewSettingsManager(openGdata(cfg.AppName, logger), logger)
	if cfg.Speed > 0 {
		settings.SetPlaybackSpeed(cfg.Speed)
	}

	loader, clipName, err := clipLoader(cfg.ClipPath, settings.GetSettings().LastClip, cfg.Track)
	if err != nil {
		return nil, fmt.Errorf("相机片段加载失败: %w", err)
	}
	settings.SetLastClip(clipName)

	ctx, cancel := context.WithCancel(context.Background())
	source := camclip.LoadAsync(ctx, loader, logging.WithClip(logger, clipName))

	tl := timeline.New(tcfg, source, logging.WithComponent(logger, "timeline"))
	cameraSystem := systems.NewCameraSystem(ecs.NewEntityManager(), tl, logger)

	a := &App{
		logger:       logger,
		settings:     settings,
		cfg:          tcfg,
		source:       source,
		cancelLoad:   cancel,
		cameraSystem: cameraSystem,
		transport:    modules.NewTransport(settings.GetSettings().PlaybackSpeed),
		panel:        modules.NewTransportPanelModule(ScreenWidth-340, 10, 330),
		view:         NewTopDownView(tcfg, 10, 10, ScreenWidth-360, ScreenHeight-20),
	}
	cameraSystem.OnPoseUpdate(a.view.Track)
	a.transport.Play()

	logger.Info("viewer started",
		"clip", clipName,
		"wait", tcfg.WaitDuration,
		"transition", tcfg.TransitionDuration,
		"drift", tcfg.Drift.Enabled)
	return a, nil
}

func loadTimelineConfig(path string) (*config.TimelineConfig, error) {
	if path != "" {
		return config.LoadTimelineConfig(path)
	}
	data, err := embedded.ReadFile(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return config.ParseTimelineConfig(data, "yaml")
}

// clipLoader 选择片段来源：命令行路径优先，其次是上次打开且仍然存在的片段
// （嵌入资源或磁盘文件），最后是嵌入的示例片段
func clipLoader(path, last, track string) (camclip.Loader, string, error) {
	if path != "" {
		return camclip.FileLoader(path, track), path, nil
	}
	if last != "" {
		if embedded.Exists(last) {
			return embeddedLoader(last, track)
		}
		if _, err := os.Stat(last); err == nil {
			return camclip.FileLoader(last, track), last, nil
		}
	}
	return embeddedLoader(DefaultClipPath, track)
}

func embeddedLoader(name, track string) (camclip.Loader, string, error) {
	data, err := embedded.ReadFile(name)
	if err != nil {
		return nil, "", err
	}
	return camclip.BytesLoader(data, track), name, nil
}

// openGdata 打开设置存储，失败时返回 nil（降级为仅内存设置）
func openGdata(appName string, logger *slog.Logger) *gdata.Manager {
	if appName == "" {
		appName = "camtimeline"
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		logger.Warn("settings storage unavailable", "error", err)
		return nil
	}
	return m
}

// Update 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	a.handleInput()

	deltaTime := 1.0 / 60.0
	a.step(deltaTime)
	return nil
}

// step 推进播放时钟并刷新相机与面板
// 只有播放中才查询时间线，暂停或停止时相机保持当前位姿
func (a *App) step(dt float64) {
	a.transport.Advance(dt)

	tl := a.cameraSystem.Timeline()
	if a.transport.IsPlaying() {
		frame, _ := a.cameraSystem.Update(a.transport.Elapsed())
		a.lastFrame = frame
	} else {
		st := tl.Resolve(a.transport.Elapsed())
		a.lastFrame.Phase, a.lastFrame.PhaseTime = st.Phase, st.PhaseTime
	}

	a.panel.Update(a.transport, tl.Boundaries(), a.cfg.Drift.AdjustDuration, a.lastFrame.Phase, a.clipInfo(), a.cameraSystem.LastError())

	if !a.view.HasPath() {
		select {
		case <-a.source.Done():
			if clip := a.source.Clip(); clip != nil {
				a.view.SetPath(clip)
			}
		default:
		}
	}
}

func (a *App) handleInput() {
	s := a.settings

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		a.transport.Toggle()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		a.transport.Stop()
		a.cameraSystem.Reset()
		a.view.ClearTrail()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		a.transport.Seek(a.transport.Elapsed() + seekStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		a.transport.Seek(a.transport.Elapsed() - seekStep)
		a.view.ClearTrail()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		s.SetPlaybackSpeed(s.GetSettings().PlaybackSpeed * 2)
		a.transport.SetSpeed(s.GetSettings().PlaybackSpeed)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		s.SetPlaybackSpeed(s.GetSettings().PlaybackSpeed / 2)
		a.transport.SetSpeed(s.GetSettings().PlaybackSpeed)
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		s.SetShowPanel(!s.GetSettings().ShowPanel)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		s.SetShowPath(!s.GetSettings().ShowPath)
	}
}

func (a *App) clipInfo() modules.ClipInfo {
	clip := a.source.Clip()
	if clip == nil {
		return modules.ClipInfo{}
	}
	return modules.ClipInfo{
		Name:     clip.Name,
		Duration: clip.Duration(),
		Tracks:   clip.TrackCount,
		Loaded:   true,
	}
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 16, G: 18, B: 24, A: 255})

	st := a.settings.GetSettings()
	a.view.Draw(screen, a.cameraSystem.Camera(), a.lastFrame, st.ShowPath)
	if st.ShowPanel {
		a.panel.Draw(screen)
	}
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Close 停止加载并保存设置
func (a *App) Close() error {
	a.cancelLoad()
	if err := a.settings.Save(); err != nil {
		return fmt.Errorf("保存设置失败: %w", err)
	}
	return nil
}
