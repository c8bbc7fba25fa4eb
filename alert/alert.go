// Package alert raises closest-point-of-approach warnings for radar tracks.
package alert

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/radar-server/target"
	"github.com/a-bouts/radar-server/telemetry"
)

type Notifier interface {
	Send(message string) error
}

// Watch holds the alarm thresholds: a track alarms when its CPA is at most
// CPA nautical miles and it is reached within TCPA minutes.
type Watch struct {
	CPA  float64
	TCPA float64
}

// Watcher alarms once per track until the track clears the thresholds
// again.
type Watcher struct {
	Watch    Watch
	notifier Notifier

	lock   sync.Mutex
	active map[target.Key]bool
}

func NewWatcher(w Watch, n Notifier) *Watcher {
	return &Watcher{
		Watch:    w,
		notifier: n,
		active:   make(map[target.Key]bool),
	}
}

// Dangerous reports whether t breaches the watch thresholds. Tracks without
// CPA or TCPA never do.
func (w Watch) Dangerous(t *target.RelativeTarget) bool {
	if t == nil || t.ClosestApproachNM == nil || t.TimeToClosestApproachMin == nil {
		return false
	}
	cpa := *t.ClosestApproachNM
	tcpa := *t.TimeToClosestApproachMin
	return cpa <= w.CPA && tcpa >= 0 && tcpa <= w.TCPA
}

func message(t *target.RelativeTarget) string {
	return fmt.Sprintf("CPA alarm: target %d at %.2f nm brg %.0f°, CPA %.2f nm in %.1f min",
		t.ID, t.DistanceNM, t.BearingDeg, *t.ClosestApproachNM, *t.TimeToClosestApproachMin)
}

// Check evaluates a snapshot and returns the messages sent for new alarms.
func (w *Watcher) Check(s *telemetry.Snapshot) []string {
	if s == nil {
		return nil
	}

	w.lock.Lock()
	seen := make(map[target.Key]bool)
	var fresh []*target.RelativeTarget
	for _, t := range s.Relative {
		if !w.Watch.Dangerous(t) {
			continue
		}
		k := t.Key()
		seen[k] = true
		if !w.active[k] {
			fresh = append(fresh, t)
		}
	}
	w.active = seen
	w.lock.Unlock()

	var sent []string
	for _, t := range fresh {
		m := message(t)
		log.WithField("target", t.ID).Warn(m)
		if w.notifier == nil {
			continue
		}
		if err := w.notifier.Send(m); err != nil {
			log.WithError(err).Errorf("Error sending alarm for target %d", t.ID)
			continue
		}
		sent = append(sent, m)
	}
	return sent
}
