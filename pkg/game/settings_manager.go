// Package game 查看器运行期状态：持久化的用户设置
package game

import (
	"fmt"
	"log/slog"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/camtimeline/internal/logging"
)

// 播放速度范围
const (
	MinPlaybackSpeed = 0.25
	MaxPlaybackSpeed = 4.0
)

// ViewerSettings 查看器设置，跨次运行保存
type ViewerSettings struct {
	ShowPanel     bool    `yaml:"showPanel"`     // 是否显示播放控制面板
	ShowPath      bool    `yaml:"showPath"`      // 是否绘制片段路径
	PlaybackSpeed float64 `yaml:"playbackSpeed"` // 播放速度倍率
	LastClip      string  `yaml:"lastClip"`      // 上次打开的片段
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		ShowPanel:     true,
		ShowPath:      true,
		PlaybackSpeed: 1.0,
	}
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存设置）
	settings     *ViewerSettings
	logger       *slog.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式）
//   - logger: 日志，可为 nil
//
// 加载失败不是致命错误，记录警告后使用默认设置。
func NewSettingsManager(gdataManager *gdata.Manager, logger *slog.Logger) *SettingsManager {
	if logger == nil {
		logger = logging.Discard()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		logger:       logging.WithComponent(logger, "settings"),
	}

	if err := sm.Load(); err != nil {
		sm.logger.Warn("failed to load settings, using defaults", "error", err)
	}
	return sm
}

// Load 从 gdata 加载设置
//
// gdataManager 为 nil 或文件不存在时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// 在默认值之上解码，旧版本缺少的字段保持默认
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.PlaybackSpeed = clampSpeed(loaded.PlaybackSpeed)

	sm.settings = loaded
	sm.logger.Debug("settings loaded")
	return nil
}

// Save 保存设置到 gdata
//
// gdataManager 为 nil 时直接返回 nil
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.logger.Debug("settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetShowPanel 设置面板可见性
// 仅修改内存中的设置，需调用 Save() 持久化
func (sm *SettingsManager) SetShowPanel(show bool) {
	sm.settings.ShowPanel = show
}

// SetShowPath 设置路径预览可见性
func (sm *SettingsManager) SetShowPath(show bool) {
	sm.settings.ShowPath = show
}

// SetPlaybackSpeed 设置播放速度，限制在 [MinPlaybackSpeed, MaxPlaybackSpeed]
func (sm *SettingsManager) SetPlaybackSpeed(speed float64) {
	sm.settings.PlaybackSpeed = clampSpeed(speed)
}

// SetLastClip 记录最近打开的片段
func (sm *SettingsManager) SetLastClip(name string) {
	sm.settings.LastClip = name
}

func clampSpeed(speed float64) float64 {
	if !(speed >= MinPlaybackSpeed) {
		return MinPlaybackSpeed
	}
	if speed > MaxPlaybackSpeed {
		return MaxPlaybackSpeed
	}
	return speed
}
