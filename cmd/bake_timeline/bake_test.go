package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/decker502/camtimeline/internal/camclip"
	"github.com/decker502/camtimeline/internal/logging"
	"github.com/decker502/camtimeline/pkg/config"
)

const sampleClip = "../../data/clips/opening.clip"

func TestBakeClip(t *testing.T) {
	clip, err := camclip.LoadClip(sampleClip, "")
	if err != nil {
		t.Fatalf("LoadClip error: %v", err)
	}
	cfg := config.DefaultTimelineConfig()

	track, err := bakeClip(context.Background(), cfg, clip, 10, nil)
	if err != nil {
		t.Fatalf("bakeClip error: %v", err)
	}

	// 2 + 1 + 7 + 2.5 秒，每秒 10 个采样，含终点
	if len(track.Samples) != 126 {
		t.Fatalf("expected 126 samples, got %d", len(track.Samples))
	}
	if math.Abs(track.Duration-12.5) > 1e-9 {
		t.Errorf("Duration = %v, want 12.5", track.Duration)
	}

	want := map[int]string{0: "WAIT", 25: "TRANSITION", 30: "PLAYBACK", 99: "PLAYBACK", 100: "DRIFT", 125: "DRIFT"}
	for i, phase := range want {
		if got := track.Samples[i].Phase; got != phase {
			t.Errorf("sample %d phase = %s, want %s", i, got, phase)
		}
	}
	for i, s := range track.Samples {
		if s.Skipped != "" {
			t.Errorf("sample %d skipped: %s", i, s.Skipped)
		}
	}

	// 等待阶段机位固定
	if track.Samples[0].Position != track.Samples[19].Position {
		t.Error("wait samples should share the same position")
	}
}

func TestBakeClip_Cancelled(t *testing.T) {
	clip, err := camclip.LoadClip(sampleClip, "")
	if err != nil {
		t.Fatalf("LoadClip error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := bakeClip(ctx, config.DefaultTimelineConfig(), clip, 10, nil); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestRun_WritesTracks(t *testing.T) {
	dir := t.TempDir()
	clipPath := filepath.Join(dir, "second.clip")
	if err := os.WriteFile(clipPath, []byte(`<name>second</name><fps>1</fps><track><name>camera</name>
		<t><x>0</x><y>10</y><z>20</z><ry>0.2</ry><fov>30</fov></t>
		<t><x>4</x></t>
	</track>`), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	out := filepath.Join(dir, "out")
	opts := bakeOptions{OutDir: out, Rate: 5, Jobs: 2}
	if err := run(context.Background(), config.DefaultTimelineConfig(), opts, []string{sampleClip, clipPath}, logging.Discard()); err != nil {
		t.Fatalf("run error: %v", err)
	}

	for _, name := range []string{"opening.track.yaml", "second.track.yaml"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
		var track Track
		if err := yaml.Unmarshal(data, &track); err != nil {
			t.Fatalf("invalid YAML in %s: %v", name, err)
		}
		if len(track.Samples) == 0 || track.Rate != 5 {
			t.Errorf("%s: unexpected track header %+v", name, track.Clip)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultTimelineConfig()

	if err := run(context.Background(), cfg, bakeOptions{OutDir: dir, Rate: 0}, []string{sampleClip}, logging.Discard()); err == nil {
		t.Error("expected error for zero rate")
	}
	if err := run(context.Background(), cfg, bakeOptions{OutDir: dir, Rate: 10}, []string{filepath.Join(dir, "missing.clip")}, logging.Discard()); err == nil {
		t.Error("expected error for missing clip")
	}
}

func TestRun_DuplicateOutputNames(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "clips", "opening.clip")
	if err := os.MkdirAll(filepath.Dir(other), 0o755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	data, err := os.ReadFile(sampleClip)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if err := os.WriteFile(other, data, 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	out := filepath.Join(dir, "out")
	opts := bakeOptions{OutDir: out, Rate: 5, Jobs: 2}
	err = run(context.Background(), config.DefaultTimelineConfig(), opts, []string{sampleClip, other}, logging.Discard())
	if err == nil || !strings.Contains(err.Error(), "opening.track.yaml") {
		t.Fatalf("expected duplicate output error, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("nothing should be written when outputs collide")
	}
}

func TestOutputPaths(t *testing.T) {
	got, err := outputPaths("baked", []string{"a/first.clip", "b/second.clip"})
	if err != nil {
		t.Fatalf("outputPaths error: %v", err)
	}
	want := []string{filepath.Join("baked", "first.track.yaml"), filepath.Join("baked", "second.track.yaml")}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("outputPaths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if _, err := outputPaths("baked", []string{"a/x.clip", "b/x.clip"}); err == nil {
		t.Error("expected error for clips sharing a base name")
	}
}

func TestOutputName(t *testing.T) {
	if got := outputName("data/clips/opening.clip"); got != "opening.track.yaml" {
		t.Errorf("outputName = %q", got)
	}
}
