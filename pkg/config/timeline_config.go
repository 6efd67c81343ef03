package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// TimelineConfig 相机动画时间线配置
//
// 所有值都是静态常量，在构造时间线时读取一次。
// 配置文件位置: data/timeline.yaml（也支持 .toml）
type TimelineConfig struct {
	// WaitDuration 等待阶段时长（秒）
	WaitDuration float64 `yaml:"waitDuration" toml:"waitDuration"`

	// TransitionDuration 过渡阶段时长（秒）
	TransitionDuration float64 `yaml:"transitionDuration" toml:"transitionDuration"`

	// FallbackClipDuration 动画源未就绪时用于阶段划分的片段时长（秒）
	FallbackClipDuration float64 `yaml:"fallbackClipDuration" toml:"fallbackClipDuration"`

	// WaitCamera 等待阶段的静止机位
	WaitCamera WaitCameraConfig `yaml:"waitCamera" toml:"waitCamera"`

	// DefaultCamera 宿主相机的初始参数，FOV 同时作为采样缺省视场角
	DefaultCamera DefaultCameraConfig `yaml:"defaultCamera" toml:"defaultCamera"`

	// EndAdjust 播放阶段结尾的构图修正
	EndAdjust EndAdjustConfig `yaml:"endAdjust" toml:"endAdjust"`

	// Drift 片段结束后的漂移阶段
	Drift DriftConfig `yaml:"drift" toml:"drift"`

	// Logging 日志配置
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// WaitCameraConfig 等待机位
type WaitCameraConfig struct {
	Position [3]float64 `yaml:"position" toml:"position"`
	Target   [3]float64 `yaml:"target" toml:"target"`
	FOV      float64    `yaml:"fov" toml:"fov"`
}

// DefaultCameraConfig 宿主相机默认参数
type DefaultCameraConfig struct {
	Position [3]float64 `yaml:"position" toml:"position"`
	Rotation [3]float64 `yaml:"rotation" toml:"rotation"` // XYZ 欧拉角（弧度）
	FOV      float64    `yaml:"fov" toml:"fov"`
	Near     float64    `yaml:"near" toml:"near"`
	Far      float64    `yaml:"far" toml:"far"`
}

// EndAdjustConfig 播放结尾调整
//
// 调整窗口为片段最后 Window 秒。位置偏移在窗口的前 PositionEnd 比例内完成，
// 旋转偏移从 RotationStart 比例开始、到窗口结束时完成，两者都叠加在原始采样之上。
type EndAdjustConfig struct {
	Window         float64    `yaml:"window" toml:"window"`
	PositionOffset [3]float64 `yaml:"positionOffset" toml:"positionOffset"`
	YawOffset      float64    `yaml:"yawOffset" toml:"yawOffset"` // 弧度
	PositionEnd    float64    `yaml:"positionEnd" toml:"positionEnd"`
	RotationStart  float64    `yaml:"rotationStart" toml:"rotationStart"`
}

// DriftConfig 漂移阶段
//
// 关闭时时间线退化为三阶段：片段结束后播放阶段持续（保持最后一帧与完整的结尾调整）。
type DriftConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// AdjustDuration 整体进度从 0 到 1 所需时间（秒）
	AdjustDuration float64 `yaml:"adjustDuration" toml:"adjustDuration"`

	// PositionOffset 相对基线位置的目标位移
	PositionOffset [3]float64 `yaml:"positionOffset" toml:"positionOffset"`

	// FOVOffset 相对基线视场角的目标变化（度）
	FOVOffset float64 `yaml:"fovOffset" toml:"fovOffset"`

	// FramingTarget 构图目标点，朝向由插值位置 look-at 此点得到
	FramingTarget [3]float64 `yaml:"framingTarget" toml:"framingTarget"`

	// RotationStart 旋转开始时的整体进度比例
	RotationStart float64 `yaml:"rotationStart" toml:"rotationStart"`

	// CaptureEpsilon 阶段局部时间小于此值时视为刚进入漂移阶段（秒）
	CaptureEpsilon float64 `yaml:"captureEpsilon" toml:"captureEpsilon"`
}

// LoggingConfig 日志级别：debug, info, warn, error, off
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// DefaultTimelineConfig 返回默认配置
// 数值来自原始动画的调校结果
func DefaultTimelineConfig() *TimelineConfig {
	return &TimelineConfig{
		WaitDuration:         2.0,
		TransitionDuration:   1.0,
		FallbackClipDuration: 0,
		WaitCamera: WaitCameraConfig{
			Position: [3]float64{-18.43, 14.48, 16.30},
			Target:   [3]float64{-1.40, 15.30, -1.33},
			FOV:      35.0,
		},
		DefaultCamera: DefaultCameraConfig{
			Position: [3]float64{13.037, 2.624, 23.379},
			Rotation: [3]float64{0.318, 0.562, -0.051},
			FOV:      25.361,
			Near:     0.1,
			Far:      10000,
		},
		EndAdjust: EndAdjustConfig{
			Window:         1.5,
			PositionOffset: [3]float64{1.5, -0.7, 0},
			YawOffset:      -0.15,
			PositionEnd:    0.7,
			RotationStart:  0.3,
		},
		Drift: DriftConfig{
			Enabled:        true,
			AdjustDuration: 2.5,
			PositionOffset: [3]float64{-0.8, 0.6, 2.0},
			FOVOffset:      3.0,
			FramingTarget:  [3]float64{-1.40, 15.30, -1.33},
			RotationStart:  0.2,
			CaptureEpsilon: 0.1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadTimelineConfig 加载时间线配置
//
// 根据扩展名选择解码器（.yaml/.yml 或 .toml），未出现的字段保留默认值。
//
// 参数:
//   - path: 配置文件路径（如 "data/timeline.yaml"）
//
// 返回:
//   - *TimelineConfig: 校验通过的配置
//   - error: 读取、解析或校验失败
func LoadTimelineConfig(path string) (*TimelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline config: %w", err)
	}
	return ParseTimelineConfig(data, filepath.Ext(path))
}

// ParseTimelineConfig 从内存数据解析时间线配置
// format 为 "yaml"/"yml"/"toml"（可带前导点），空字符串按 YAML 处理
func ParseTimelineConfig(data []byte, format string) (*TimelineConfig, error) {
	cfg := DefaultTimelineConfig()

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse timeline config: %w", err)
		}
	case "toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse timeline config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported timeline config format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timeline config: %w", err)
	}
	return cfg, nil
}

// Validate 验证配置有效性
//
// 检查：
//   - 时长非负，过渡时长为正（过渡进度以它为分母）
//   - 比例参数在 [0, 1] 内
//   - 视场角在 (0, 180) 内
//   - 日志级别可识别
func (c *TimelineConfig) Validate() error {
	if c.WaitDuration < 0 || !finite(c.WaitDuration) {
		return fmt.Errorf("waitDuration must be >= 0, got %v", c.WaitDuration)
	}
	if c.TransitionDuration <= 0 || !finite(c.TransitionDuration) {
		return fmt.Errorf("transitionDuration must be > 0, got %v", c.TransitionDuration)
	}
	if c.FallbackClipDuration < 0 || !finite(c.FallbackClipDuration) {
		return fmt.Errorf("fallbackClipDuration must be >= 0, got %v", c.FallbackClipDuration)
	}
	if err := validateFOV("waitCamera.fov", c.WaitCamera.FOV); err != nil {
		return err
	}
	if err := validateFOV("defaultCamera.fov", c.DefaultCamera.FOV); err != nil {
		return err
	}

	if c.EndAdjust.Window <= 0 {
		return fmt.Errorf("endAdjust.window must be > 0, got %v", c.EndAdjust.Window)
	}
	if err := validateFraction("endAdjust.positionEnd", c.EndAdjust.PositionEnd); err != nil {
		return err
	}
	if err := validateFraction("endAdjust.rotationStart", c.EndAdjust.RotationStart); err != nil {
		return err
	}

	if c.Drift.Enabled {
		if c.Drift.AdjustDuration <= 0 {
			return fmt.Errorf("drift.adjustDuration must be > 0, got %v", c.Drift.AdjustDuration)
		}
		if err := validateFraction("drift.rotationStart", c.Drift.RotationStart); err != nil {
			return err
		}
		if c.Drift.CaptureEpsilon < 0 {
			return fmt.Errorf("drift.captureEpsilon must be >= 0, got %v", c.Drift.CaptureEpsilon)
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error", "off":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}

	return nil
}

// Vec3 将配置中的三元组转换为向量
func Vec3(v [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}

func validateFOV(name string, fov float64) error {
	if fov <= 0 || fov >= 180 || !finite(fov) {
		return fmt.Errorf("%s must be in (0, 180), got %v", name, fov)
	}
	return nil
}

func validateFraction(name string, v float64) error {
	if v < 0 || v > 1 || !finite(v) {
		return fmt.Errorf("%s must be in [0, 1], got %v", name, v)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
