package main

import (
	"context"
	"log/slog"
	"math"

	"github.com/decker502/camtimeline/internal/camclip"
	"github.com/decker502/camtimeline/pkg/config"
	"github.com/decker502/camtimeline/pkg/ecs"
	"github.com/decker502/camtimeline/pkg/systems"
	"github.com/decker502/camtimeline/pkg/timeline"
)

// Track is the baked output of one clip.
type Track struct {
	Clip     string        `yaml:"clip"`
	Rate     float64       `yaml:"rate"`
	Duration float64       `yaml:"duration"`
	Samples  []TrackSample `yaml:"samples"`
}

// TrackSample is the applied camera state at one global time.
type TrackSample struct {
	Time      float64    `yaml:"t"`
	Phase     string     `yaml:"phase"`
	PhaseTime float64    `yaml:"phaseTime"`
	Position  [3]float64 `yaml:"position,flow"`
	Rotation  [3]float64 `yaml:"rotation,flow"`
	FOV       float64    `yaml:"fov"`
	Skipped   string     `yaml:"skipped,omitempty"`
}

// bakeDuration covers every phase; drift runs until its adjustment settles.
func bakeDuration(cfg *config.TimelineConfig, b timeline.Boundaries) float64 {
	d := b.PlaybackEnd()
	if cfg.Drift.Enabled {
		d += cfg.Drift.AdjustDuration
	}
	return d
}

// bakeClip drives a camera system over the whole timeline at a fixed rate.
func bakeClip(ctx context.Context, cfg *config.TimelineConfig, clip *camclip.Clip, rate float64, logger *slog.Logger) (*Track, error) {
	tl := timeline.New(cfg, camclip.NewSource(clip), logger)
	cs := systems.NewCameraSystem(ecs.NewEntityManager(), tl, logger)

	duration := bakeDuration(cfg, tl.Boundaries())
	n := int(math.Floor(duration*rate + 1e-9))

	track := &Track{
		Clip:     clip.Name,
		Rate:     rate,
		Duration: duration,
		Samples:  make([]TrackSample, 0, n+1),
	}

	for i := 0; i <= n; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		elapsed := float64(i) / rate
		frame, applied := cs.Update(elapsed)
		cam := cs.Camera()

		s := TrackSample{
			Time:      elapsed,
			Phase:     frame.Phase.String(),
			PhaseTime: frame.PhaseTime,
			Position:  [3]float64{cam.Position.X(), cam.Position.Y(), cam.Position.Z()},
			Rotation:  cam.Rotation.Array(),
			FOV:       cam.FOV,
		}
		if !applied {
			if err := cs.LastError(); err != nil {
				s.Skipped = err.Error()
			}
		}
		track.Samples = append(track.Samples, s)
	}
	return track, nil
}
