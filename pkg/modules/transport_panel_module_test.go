package modules

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/decker502/camtimeline/pkg/timeline"
)

func TestTotalDuration(t *testing.T) {
	b := timeline.Boundaries{Wait: 2, Transition: 1, Clip: 7, DriftEnabled: true}
	if got := TotalDuration(b, 2.5); got != 12.5 {
		t.Errorf("TotalDuration with drift = %v, want 12.5", got)
	}
	b.DriftEnabled = false
	if got := TotalDuration(b, 2.5); got != 10 {
		t.Errorf("TotalDuration without drift = %v, want 10", got)
	}
}

func TestProgressAndStatus(t *testing.T) {
	tests := []struct {
		name         string
		elapsed      float64
		total        float64
		playing      bool
		wantProgress float64
		wantStatus   PanelStatus
	}{
		{"未开始", 0, 10, false, 0, StatusStopped},
		{"播放中", 5, 10, true, 50, StatusPlaying},
		{"中途暂停", 5, 10, false, 50, StatusStopped},
		{"接近结尾", 9.995, 10, false, 99.95, StatusCompleted},
		{"播放中到达结尾", 10, 10, true, 100, StatusPlaying},
		{"超出总时长", 30, 10, false, 100, StatusCompleted},
		{"总时长为零", 3, 0, false, 0, StatusStopped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Progress(tt.elapsed, tt.total)
			if math.Abs(p-tt.wantProgress) > 1e-9 {
				t.Errorf("Progress = %v, want %v", p, tt.wantProgress)
			}
			if s := Status(tt.playing, p); s != tt.wantStatus {
				t.Errorf("Status = %v, want %v", s, tt.wantStatus)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	b := timeline.Boundaries{Wait: 2, Transition: 1, Clip: 7, DriftEnabled: true}
	segs := Segments(b, 12.5, timeline.PhasePlayback)
	if len(segs) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(segs))
	}

	want := []struct {
		phase        timeline.Phase
		start, width float64
	}{
		{timeline.PhaseWait, 0, 2 / 12.5},
		{timeline.PhaseTransition, 2 / 12.5, 1 / 12.5},
		{timeline.PhasePlayback, 3 / 12.5, 7 / 12.5},
		{timeline.PhaseDrift, 10 / 12.5, 2.5 / 12.5},
	}
	sum := 0.0
	for i, w := range want {
		s := segs[i]
		if s.Phase != w.phase || math.Abs(s.Start-w.start) > 1e-12 || math.Abs(s.Width-w.width) > 1e-12 {
			t.Errorf("segment %d = %+v, want %+v", i, s, w)
		}
		if s.Active != (w.phase == timeline.PhasePlayback) {
			t.Errorf("segment %v active = %v", s.Phase, s.Active)
		}
		sum += s.Width
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("segments should cover the bar, sum = %v", sum)
	}
}

// TestSegments_ThreePhase 关闭漂移时只有三段
func TestSegments_ThreePhase(t *testing.T) {
	b := timeline.Boundaries{Wait: 2, Transition: 1, Clip: 7}
	segs := Segments(b, TotalDuration(b, 2.5), timeline.PhaseWait)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if !segs[0].Active || segs[2].Phase != timeline.PhasePlayback {
		t.Errorf("unexpected segments %+v", segs)
	}
	if Segments(b, 0, timeline.PhaseWait) != nil {
		t.Error("zero total should yield no segments")
	}
}

func TestTransportPanelModule_Lines(t *testing.T) {
	m := NewTransportPanelModule(10, 10, 320)
	tr := NewTransport(1)
	tr.Seek(4)
	tr.Play()
	b := timeline.Boundaries{Wait: 2, Transition: 1, Clip: 7, DriftEnabled: true}

	m.Update(tr, b, 2.5, timeline.PhasePlayback, ClipInfo{Name: "opening", Duration: 7, Tracks: 2, Loaded: true}, nil)
	text := strings.Join(m.Lines(), "\n")
	for _, want := range []string{"Time: 4.00s / 12.50s", "Phase: PLAYBACK", "Camera: opening", "Tracks: 2", "Status: Playing"} {
		if !strings.Contains(text, want) {
			t.Errorf("panel text missing %q:\n%s", want, text)
		}
	}

	tr.Pause()
	m.Update(tr, b, 2.5, timeline.PhaseTransition, ClipInfo{}, errors.New("source not ready"))
	text = strings.Join(m.Lines(), "\n")
	if !strings.Contains(text, "loading") || !strings.Contains(text, "Skipped: source not ready") {
		t.Errorf("unexpected panel text:\n%s", text)
	}
	if m.Status() != StatusStopped {
		t.Errorf("Status = %v, want Stopped", m.Status())
	}
}
