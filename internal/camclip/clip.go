package camclip

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/camtimeline/pkg/pose"
)

// DefaultTrack is the track sampled when no track name is given.
const DefaultTrack = "camera"

var (
	// ErrInvalidClip reports a clip that cannot be sampled.
	ErrInvalidClip = errors.New("invalid clip")

	// ErrTrackNotFound reports a missing track name.
	ErrTrackNotFound = errors.New("track not found")
)

// keyframe is a frame with inheritance applied.
type keyframe struct {
	position    mgl64.Vec3
	hasPosition bool

	orientation    pose.Orientation
	hasOrientation bool

	fov    float64
	hasFOV bool
}

// Clip is a resolved camera track ready for sampling.
type Clip struct {
	Name       string
	FPS        int
	Track      string
	TrackCount int

	keys []keyframe
}

// NewClip resolves a track of x into sampleable keyframes.
//
// An empty track name selects DefaultTrack, or the only track when the clip
// has exactly one.
func NewClip(x *ClipXML, track string) (*Clip, error) {
	if x.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidClip, x.FPS)
	}

	t, err := findTrack(x, track)
	if err != nil {
		return nil, err
	}
	if len(t.Frames) == 0 {
		return nil, fmt.Errorf("%w: track '%s' has no frames", ErrInvalidClip, t.Name)
	}

	keys, err := resolveFrames(t.Frames)
	if err != nil {
		return nil, fmt.Errorf("track '%s': %w", t.Name, err)
	}

	name := x.Name
	if name == "" {
		name = t.Name
	}
	return &Clip{
		Name:       name,
		FPS:        x.FPS,
		Track:      t.Name,
		TrackCount: len(x.Tracks),
		keys:       keys,
	}, nil
}

func findTrack(x *ClipXML, name string) (*Track, error) {
	if name == "" {
		if len(x.Tracks) == 1 {
			return &x.Tracks[0], nil
		}
		name = DefaultTrack
	}
	for i := range x.Tracks {
		if x.Tracks[i].Name == name {
			return &x.Tracks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrTrackNotFound, name)
}

// resolveFrames applies cumulative inheritance. A channel becomes present at
// the first frame that sets any of its fields; unset components start at
// zero (quaternion W at one).
func resolveFrames(frames []Frame) ([]keyframe, error) {
	keys := make([]keyframe, len(frames))

	var (
		pos    [3]float64
		euler  [3]float64
		quat   = [4]float64{0, 0, 0, 1}
		fov    float64
		hasPos bool
		kind   pose.OrientationKind
		hasRot bool
		hasFOV bool
	)

	for i, f := range frames {
		if f.hasEuler() && f.hasQuat() {
			return nil, fmt.Errorf("%w: frame %d mixes euler and quaternion fields", ErrInvalidClip, i)
		}

		px := inherit(&pos[0], f.X)
		py := inherit(&pos[1], f.Y)
		pz := inherit(&pos[2], f.Z)
		if px || py || pz {
			hasPos = true
		}

		switch {
		case f.hasEuler():
			if hasRot && kind != pose.KindEuler {
				return nil, fmt.Errorf("%w: frame %d switches to euler rotation", ErrInvalidClip, i)
			}
			inherit(&euler[0], f.RX)
			inherit(&euler[1], f.RY)
			inherit(&euler[2], f.RZ)
			kind, hasRot = pose.KindEuler, true
		case f.hasQuat():
			if hasRot && kind != pose.KindQuat {
				return nil, fmt.Errorf("%w: frame %d switches to quaternion rotation", ErrInvalidClip, i)
			}
			inherit(&quat[0], f.QX)
			inherit(&quat[1], f.QY)
			inherit(&quat[2], f.QZ)
			inherit(&quat[3], f.QW)
			kind, hasRot = pose.KindQuat, true
		}

		if inherit(&fov, f.FOV) {
			hasFOV = true
		}

		k := keyframe{
			position:    mgl64.Vec3{pos[0], pos[1], pos[2]},
			hasPosition: hasPos,
			fov:         fov,
			hasFOV:      hasFOV,
		}
		if hasRot {
			components := euler[:]
			if kind == pose.KindQuat {
				components = quat[:]
			}
			o, err := pose.FromComponents(components)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			n, err := o.Normalize()
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			k.orientation, k.hasOrientation = n, true
		}
		keys[i] = k
	}
	return keys, nil
}

// inherit overwrites dst when v is set and reports whether it did.
func inherit(dst *float64, v *float64) bool {
	if v == nil {
		return false
	}
	*dst = *v
	return true
}

// Duration is the time of the last frame in seconds.
func (c *Clip) Duration() float64 {
	return float64(len(c.keys)-1) / float64(c.FPS)
}

// FrameCount returns the number of keyframes.
func (c *Clip) FrameCount() int {
	return len(c.keys)
}

// SampleAt interpolates the clip at local time t. Times outside
// [0, Duration] clamp to the first or last frame. ok is false only when no
// channel is present at t.
func (c *Clip) SampleAt(t float64) (pose.Sample, bool) {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	pos := t * float64(c.FPS)
	last := len(c.keys) - 1
	if pos >= float64(last) {
		return c.keys[last].sample(), c.keys[last].present()
	}

	i0 := int(math.Floor(pos))
	frac := pos - float64(i0)
	a, b := c.keys[i0], c.keys[i0+1]
	if frac == 0 {
		return a.sample(), a.present()
	}

	var s pose.Sample
	if a.hasPosition {
		p := pose.LerpVec3(a.position, b.position, frac)
		s.Position = &p
	}
	if a.hasOrientation {
		o := lerpOrientation(a.orientation, b.orientation, frac)
		s.Orientation = &o
	}
	if a.hasFOV {
		f := a.fov + (b.fov-a.fov)*frac
		s.FOV = &f
	}
	return s, a.present()
}

func lerpOrientation(a, b pose.Orientation, t float64) pose.Orientation {
	if a.IsQuat() {
		qa, qb := a.Quat(), b.Quat()
		if qa.Dot(qb) < 0 {
			qb = qb.Scale(-1)
		}
		return pose.FromQuat(mgl64.QuatSlerp(qa, qb, t))
	}
	return pose.FromEuler(pose.LerpEuler(a.Euler(), b.Euler(), t))
}

func (k keyframe) present() bool {
	return k.hasPosition || k.hasOrientation || k.hasFOV
}

func (k keyframe) sample() pose.Sample {
	var s pose.Sample
	if k.hasPosition {
		p := k.position
		s.Position = &p
	}
	if k.hasOrientation {
		o := k.orientation
		s.Orientation = &o
	}
	if k.hasFOV {
		f := k.fov
		s.FOV = &f
	}
	return s
}
