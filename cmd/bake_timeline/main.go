// Package main bakes camera timelines into YAML pose tracks for offline
// inspection and regression diffs.
//
// Usage:
//
//	go run ./cmd/bake_timeline [flags] <clip files...>
//
// Flags:
//
//	--config <path>   Timeline config (.yaml/.toml), default: built-in defaults
//	--out <dir>       Output directory (default: "baked")
//	--rate <hz>       Samples per second (default: 30)
//	--track <name>    Track to sample (default: auto)
//	--jobs <n>        Clips baked in parallel (default: 4)
//	--verbose         Enable debug logging
//
// Each clip produces <out>/<clip name>.track.yaml.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/decker502/camtimeline/internal/camclip"
	"github.com/decker502/camtimeline/internal/logging"
	"github.com/decker502/camtimeline/pkg/config"
)

var (
	configFlag  = flag.String("config", "", "Timeline config file (.yaml/.toml)")
	outFlag     = flag.String("out", "baked", "Output directory")
	rateFlag    = flag.Float64("rate", 30, "Samples per second")
	trackFlag   = flag.String("track", "", "Track to sample")
	jobsFlag    = flag.Int("jobs", 4, "Clips baked in parallel")
	verboseFlag = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := "info"
	if *verboseFlag {
		level = "debug"
	}
	logger := logging.WithComponent(logging.NewLogger(level, nil), "bake")

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: bake_timeline [flags] <clip files...>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.DefaultTimelineConfig()
	if *configFlag != "" {
		var err error
		if cfg, err = config.LoadTimelineConfig(*configFlag); err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := bakeOptions{
		OutDir: *outFlag,
		Rate:   *rateFlag,
		Track:  *trackFlag,
		Jobs:   *jobsFlag,
	}
	if err := run(ctx, cfg, opts, flag.Args(), logger); err != nil {
		logger.Error("bake failed", "error", err)
		os.Exit(1)
	}
}

type bakeOptions struct {
	OutDir string
	Rate   float64
	Track  string
	Jobs   int
}

// run bakes every clip; the first failure cancels the rest.
func run(ctx context.Context, cfg *config.TimelineConfig, opts bakeOptions, paths []string, logger *slog.Logger) error {
	if opts.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %v", opts.Rate)
	}
	outputs, err := outputPaths(opts.OutDir, paths)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}

	for i, path := range paths {
		g.Go(func() error {
			src := camclip.LoadAsync(ctx, camclip.FileLoader(path, opts.Track), logging.WithClip(logger, path))
			if err := src.Wait(ctx); err != nil {
				return err
			}
			clip := src.Clip()

			track, err := bakeClip(ctx, cfg, clip, opts.Rate, logging.WithClip(logger, clip.Name))
			if err != nil {
				return fmt.Errorf("'%s': %w", path, err)
			}

			out := outputs[i]
			if err := writeTrack(out, track); err != nil {
				return err
			}
			logger.Info("baked", "clip", path, "samples", len(track.Samples), "out", out)
			return nil
		})
	}
	return g.Wait()
}

// outputPaths maps every clip to its track file and rejects clips that
// would write the same file.
func outputPaths(outDir string, paths []string) ([]string, error) {
	out := make([]string, len(paths))
	owner := make(map[string]string, len(paths))
	for i, path := range paths {
		name := outputName(path)
		if prev, ok := owner[name]; ok {
			return nil, fmt.Errorf("clips '%s' and '%s' both write %s", prev, path, name)
		}
		owner[name] = path
		out[i] = filepath.Join(outDir, name)
	}
	return out, nil
}

func outputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".track.yaml"
}

func writeTrack(path string, track *Track) error {
	data, err := yaml.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to marshal track: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
