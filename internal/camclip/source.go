package camclip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/decker502/camtimeline/internal/logging"
	"github.com/decker502/camtimeline/pkg/pose"
)

// Loader produces a clip; it runs on the loading goroutine.
type Loader func() (*Clip, error)

// FileLoader loads track from the clip file at path.
func FileLoader(path, track string) Loader {
	return func() (*Clip, error) {
		return LoadClip(path, track)
	}
}

// BytesLoader parses clip data that is already in memory, e.g. embedded.
func BytesLoader(data []byte, track string) Loader {
	return func() (*Clip, error) {
		x, err := ParseClip(data)
		if err != nil {
			return nil, err
		}
		return NewClip(x, track)
	}
}

// Source samples a clip for the camera timeline. It is safe to query from
// the frame loop while the clip is still loading: until then IsReady is
// false, Duration is 0 and SampleAt reports no sample.
type Source struct {
	clip  atomic.Pointer[Clip]
	ready atomic.Bool

	mu   sync.Mutex
	err  error
	done chan struct{}
}

// NewSource returns a ready source for an already loaded clip.
func NewSource(clip *Clip) *Source {
	s := &Source{done: make(chan struct{})}
	s.clip.Store(clip)
	s.ready.Store(true)
	close(s.done)
	return s
}

// LoadAsync starts load on a new goroutine and returns immediately.
// If ctx is cancelled first the result is discarded and Err reports the
// cancellation.
func LoadAsync(ctx context.Context, load Loader, logger *slog.Logger) *Source {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Source{done: make(chan struct{})}

	go func() {
		defer close(s.done)

		result := make(chan struct{})
		var (
			clip *Clip
			err  error
		)
		go func() {
			defer close(result)
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("clip loader panic: %v", r)
				}
			}()
			clip, err = load()
		}()

		select {
		case <-ctx.Done():
			s.setErr(ctx.Err())
			logger.Warn("clip load cancelled", "error", ctx.Err())
			return
		case <-result:
		}

		if err != nil {
			s.setErr(err)
			logger.Error("clip load failed", "error", err)
			return
		}
		s.clip.Store(clip)
		s.ready.Store(true)
		logger.Info("clip loaded",
			"name", clip.Name,
			"track", clip.Track,
			"frames", clip.FrameCount(),
			"duration", clip.Duration())
	}()

	return s
}

func (s *Source) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// IsReady reports whether the clip can be sampled.
func (s *Source) IsReady() bool {
	return s.ready.Load()
}

// Duration returns the clip length, 0 while loading.
func (s *Source) Duration() float64 {
	if c := s.clip.Load(); c != nil {
		return c.Duration()
	}
	return 0
}

// SampleAt samples the clip at local time t.
func (s *Source) SampleAt(t float64) (pose.Sample, bool) {
	c := s.clip.Load()
	if c == nil {
		return pose.Sample{}, false
	}
	return c.SampleAt(t)
}

// Clip returns the loaded clip, or nil while loading.
func (s *Source) Clip() *Clip {
	return s.clip.Load()
}

// Done is closed when loading has finished, successfully or not.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until loading finishes or ctx is done and returns the load error.
func (s *Source) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the load error, if any.
func (s *Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
