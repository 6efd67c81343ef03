package camclip

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/camtimeline/pkg/pose"
)

const testClipXML = `
<name>test</name>
<fps>2</fps>
<track>
	<name>camera</name>
	<t><x>0</x><y>1</y><z>2</z><rx>0</rx><ry>0.5</ry><rz>0</rz><fov>30</fov></t>
	<t><x>2</x></t>
	<t><fov>40</fov></t>
</track>
<track>
	<name>target</name>
	<t><x>5</x></t>
</track>`

func mustClip(t *testing.T, data, track string) *Clip {
	t.Helper()
	x, err := ParseClip([]byte(data))
	if err != nil {
		t.Fatalf("ParseClip error: %v", err)
	}
	c, err := NewClip(x, track)
	if err != nil {
		t.Fatalf("NewClip error: %v", err)
	}
	return c
}

func TestParseClip(t *testing.T) {
	x, err := ParseClip([]byte(testClipXML))
	if err != nil {
		t.Fatalf("ParseClip error: %v", err)
	}
	if x.Name != "test" || x.FPS != 2 {
		t.Errorf("Expected name=test fps=2, got %q %d", x.Name, x.FPS)
	}
	if len(x.Tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(x.Tracks))
	}
	f := x.Tracks[0].Frames[1]
	if f.X == nil || *f.X != 2 {
		t.Errorf("Expected x=2 in frame 1, got %v", f.X)
	}
	if f.Y != nil || f.RX != nil || f.FOV != nil {
		t.Error("omitted fields should be nil")
	}
}

func TestParseClip_Malformed(t *testing.T) {
	if _, err := ParseClip([]byte("<fps>2</fps><track>")); err == nil {
		t.Error("expected error for unterminated element")
	}
}

// TestNewClip_Inheritance 省略的字段沿用上一帧
func TestNewClip_Inheritance(t *testing.T) {
	c := mustClip(t, testClipXML, "")

	if c.Track != "camera" || c.TrackCount != 2 {
		t.Errorf("Expected camera track of 2, got %q of %d", c.Track, c.TrackCount)
	}
	if c.FrameCount() != 3 {
		t.Fatalf("Expected 3 frames, got %d", c.FrameCount())
	}
	if c.Duration() != 1 {
		t.Errorf("Expected duration 1, got %v", c.Duration())
	}

	tests := []struct {
		name    string
		t       float64
		wantPos mgl64.Vec3
		wantFOV float64
	}{
		{"第一帧", 0, mgl64.Vec3{0, 1, 2}, 30},
		{"只改 x", 0.5, mgl64.Vec3{2, 1, 2}, 30},
		{"只改视场角", 1, mgl64.Vec3{2, 1, 2}, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := c.SampleAt(tt.t)
			if !ok || s.Position == nil || s.Orientation == nil || s.FOV == nil {
				t.Fatalf("expected full sample, got %+v ok=%v", s, ok)
			}
			if !s.Position.ApproxEqualThreshold(tt.wantPos, 1e-12) {
				t.Errorf("position = %v, want %v", *s.Position, tt.wantPos)
			}
			if *s.FOV != tt.wantFOV {
				t.Errorf("fov = %v, want %v", *s.FOV, tt.wantFOV)
			}
			if got := s.Orientation.Euler().Y; got != 0.5 {
				t.Errorf("rotation y = %v, want 0.5", got)
			}
		})
	}
}

// TestNewClip_LateChannel 通道在首次出现之前缺省
func TestNewClip_LateChannel(t *testing.T) {
	c := mustClip(t, `<fps>1</fps><track><name>camera</name>
		<t><fov>20</fov></t>
		<t><x>1</x><y>2</y><z>3</z></t>
	</track>`, "")

	s, ok := c.SampleAt(0)
	if !ok {
		t.Fatal("fov-only frame should still produce a sample")
	}
	if s.Position != nil || s.Orientation != nil {
		t.Errorf("position/orientation should be absent at frame 0: %+v", s)
	}

	s, _ = c.SampleAt(1)
	if s.Position == nil || !s.Position.ApproxEqualThreshold(mgl64.Vec3{1, 2, 3}, 1e-12) {
		t.Errorf("position at frame 1 = %v", s.Position)
	}
	if s.FOV == nil || *s.FOV != 20 {
		t.Errorf("fov should be inherited, got %v", s.FOV)
	}
}

func TestNewClip_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		track   string
		wantErr error
	}{
		{"帧率为零", `<fps>0</fps><track><name>camera</name><t><x>1</x></t></track>`, "", ErrInvalidClip},
		{"轨道不存在", `<fps>2</fps><track><name>a</name><t/></track><track><name>b</name><t/></track>`, "", ErrTrackNotFound},
		{"指定轨道不存在", testClipXML, "missing", ErrTrackNotFound},
		{"没有帧", `<fps>2</fps><track><name>camera</name></track>`, "", ErrInvalidClip},
		{"同一帧混用", `<fps>2</fps><track><name>camera</name><t><rx>1</rx><qw>1</qw></t></track>`, "", ErrInvalidClip},
		{"切换旋转类型", `<fps>2</fps><track><name>camera</name><t><rx>1</rx></t><t><qw>1</qw></t></track>`, "", ErrInvalidClip},
		{"零四元数", `<fps>2</fps><track><name>camera</name><t><qw>0</qw></t></track>`, "", pose.ErrMalformedOrientation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := ParseClip([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseClip error: %v", err)
			}
			if _, err := NewClip(x, tt.track); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClip_SampleInterpolation(t *testing.T) {
	c := mustClip(t, testClipXML, "camera")

	s, ok := c.SampleAt(0.25)
	if !ok {
		t.Fatal("expected sample")
	}
	if !s.Position.ApproxEqualThreshold(mgl64.Vec3{1, 1, 2}, 1e-12) {
		t.Errorf("midpoint position = %v", *s.Position)
	}

	s, _ = c.SampleAt(0.75)
	if math.Abs(*s.FOV-35) > 1e-12 {
		t.Errorf("midpoint fov = %v, want 35", *s.FOV)
	}
}

// TestClip_SampleClamped 超出片段范围时取首尾帧
func TestClip_SampleClamped(t *testing.T) {
	c := mustClip(t, testClipXML, "camera")

	first, _ := c.SampleAt(-3)
	if !first.Position.ApproxEqualThreshold(mgl64.Vec3{0, 1, 2}, 1e-12) || *first.FOV != 30 {
		t.Errorf("negative time should clamp to first frame: %v %v", *first.Position, *first.FOV)
	}
	last, _ := c.SampleAt(99)
	if !last.Position.ApproxEqualThreshold(mgl64.Vec3{2, 1, 2}, 1e-12) || *last.FOV != 40 {
		t.Errorf("late time should clamp to last frame: %v %v", *last.Position, *last.FOV)
	}
	nan, _ := c.SampleAt(math.NaN())
	if !nan.Position.ApproxEqualThreshold(mgl64.Vec3{0, 1, 2}, 1e-12) {
		t.Errorf("NaN should clamp to first frame: %v", *nan.Position)
	}
}

// TestNewClip_OrientationKind 帧内旋转字段决定朝向表示，缺省的 qw 为 1
func TestNewClip_OrientationKind(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		wantKind pose.OrientationKind
		wantQuat mgl64.Quat
		wantY    float64
	}{
		{"欧拉角", `<t><ry>0.25</ry></t>`, pose.KindEuler, mgl64.Quat{}, 0.25},
		{"四元数缺省 w", `<t><qx>0</qx></t>`, pose.KindQuat, mgl64.QuatIdent(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustClip(t, `<fps>1</fps><track><name>camera</name>`+tt.frame+`</track>`, "")
			s, ok := c.SampleAt(0)
			if !ok || s.Orientation == nil {
				t.Fatalf("expected orientation, got %+v ok=%v", s, ok)
			}
			if s.Orientation.Kind() != tt.wantKind {
				t.Fatalf("kind = %v, want %v", s.Orientation.Kind(), tt.wantKind)
			}
			if tt.wantKind == pose.KindQuat {
				if got := s.Orientation.Quat(); !got.ApproxEqualThreshold(tt.wantQuat, 1e-12) {
					t.Errorf("quat = %v, want %v", got, tt.wantQuat)
				}
				return
			}
			if got := s.Orientation.Euler().Y; got != tt.wantY {
				t.Errorf("rotation y = %v, want %v", got, tt.wantY)
			}
		})
	}
}

// TestClip_QuatSlerp 四元数轨道按球面插值
func TestClip_QuatSlerp(t *testing.T) {
	h := math.Sqrt(0.5)
	c := mustClip(t, `<fps>1</fps><track><name>camera</name>
		<t><qx>0</qx><qy>0</qy><qz>0</qz><qw>1</qw></t>
		<t><qy>`+formatFloat(h)+`</qy><qw>`+formatFloat(h)+`</qw></t>
	</track>`, "")

	s, _ := c.SampleAt(0.5)
	if !s.Orientation.IsQuat() {
		t.Fatal("expected quaternion orientation")
	}
	want := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})
	if got := s.Orientation.Quat(); math.Abs(got.Dot(want)) < 1-1e-9 {
		t.Errorf("slerp midpoint = %v, want %v", got, want)
	}
}

// TestClip_QuatShortestPath 相反符号的四元数走最短路径
func TestClip_QuatShortestPath(t *testing.T) {
	c := mustClip(t, `<fps>1</fps><track><name>camera</name>
		<t><qw>1</qw></t>
		<t><qw>-1</qw></t>
	</track>`, "")

	s, _ := c.SampleAt(0.5)
	if got := s.Orientation.Quat(); math.Abs(math.Abs(got.W)-1) > 1e-9 {
		t.Errorf("q and -q should interpolate to identity, got %v", got)
	}
}

func TestLoadClip_DataFile(t *testing.T) {
	c, err := LoadClip("../../data/clips/opening.clip", "")
	if err != nil {
		t.Fatalf("Failed to load opening.clip: %v", err)
	}
	if math.Abs(c.Duration()-7) > 1e-9 {
		t.Errorf("Expected 7s clip, got %v", c.Duration())
	}
	for i := 0; i <= 70; i++ {
		s, ok := c.SampleAt(float64(i) * 0.1)
		if !ok || s.Position == nil || s.Orientation == nil || s.FOV == nil {
			t.Fatalf("incomplete sample at %v: %+v", float64(i)*0.1, s)
		}
	}
}

func TestLoadClip_MissingFile(t *testing.T) {
	if _, err := LoadClip("does/not/exist.clip", ""); err == nil {
		t.Error("expected error for missing file")
	}
}
