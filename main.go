package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/camtimeline/pkg/app"
	"github.com/decker502/camtimeline/pkg/embedded"
)

var (
	verbose    = flag.Bool("verbose", false, "输出 debug 日志")
	configPath = flag.String("config", "", "时间线配置文件（.yaml/.toml），默认使用内置配置")
	clipPath   = flag.String("clip", "", "相机片段文件，默认使用内置示例片段")
	track      = flag.String("track", "", "片段中要播放的轨道")
	speed      = flag.Float64("speed", 0, "播放速度倍率，默认使用保存的设置")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	viewer, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		ClipPath:   *clipPath,
		Track:      *track,
		Speed:      *speed,
	})
	if err != nil {
		log.Fatalf("查看器初始化失败: %v", err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Camera Timeline Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(viewer)
	if err := viewer.Close(); err != nil {
		log.Printf("[Main] %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
