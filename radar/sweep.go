package radar

import (
	"context"
	"time"

	"github.com/a-bouts/radar-server/latlon"
)

const (
	DefaultSweepStep     = 3.0
	DefaultSweepInterval = 50 * time.Millisecond
)

// Sweep is the rotating highlight sector of the display. It is not safe for
// concurrent use; each display drives its own.
type Sweep struct {
	Step  float64
	angle float64
}

func NewSweep(step float64) *Sweep {
	if step == 0 {
		step = DefaultSweepStep
	}
	return &Sweep{Step: step}
}

func (s *Sweep) Angle() float64 {
	return s.angle
}

// Tick advances the sweep by Step degrees and returns the new angle.
func (s *Sweep) Tick() float64 {
	s.angle = latlon.Wrap360(s.angle + s.Step)
	return s.angle
}

// Run ticks the sweep every interval and hands each angle to fn until ctx is
// done or fn returns an error.
func (s *Sweep) Run(ctx context.Context, interval time.Duration, fn func(angle float64) error) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(s.Tick()); err != nil {
				return err
			}
		}
	}
}
