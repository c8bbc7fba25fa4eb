package alert

import (
	"errors"
	"testing"

	"github.com/a-bouts/radar-server/target"
	"github.com/a-bouts/radar-server/telemetry"
)

type recorder struct {
	messages []string
	err      error
}

func (r *recorder) Send(m string) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, m)
	return nil
}

func float(v float64) *float64 {
	return &v
}

func track(id int, cpa, tcpa float64) *target.RelativeTarget {
	return &target.RelativeTarget{ID: id, DistanceNM: 1, BearingDeg: 45, ClosestApproachNM: float(cpa), TimeToClosestApproachMin: float(tcpa)}
}

func TestDangerous(t *testing.T) {
	w := Watch{CPA: 0.5, TCPA: 10}
	tests := []struct {
		name string
		t    *target.RelativeTarget
		want bool
	}{
		{"close and soon", track(1, 0.2, 3), true},
		{"on thresholds", track(1, 0.5, 10), true},
		{"too far", track(1, 0.8, 3), false},
		{"too late", track(1, 0.2, 30), false},
		{"already past", track(1, 0.2, -1), false},
		{"no cpa", &target.RelativeTarget{ID: 1}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Dangerous(tt.t); got != tt.want {
				t.Errorf("Dangerous() = %t; want %t", got, tt.want)
			}
		})
	}
}

func TestWatcherAlarmsOnce(t *testing.T) {
	r := &recorder{}
	w := NewWatcher(Watch{CPA: 0.5, TCPA: 10}, r)

	s := &telemetry.Snapshot{Relative: []*target.RelativeTarget{track(1, 0.2, 3), track(2, 2, 3)}}
	if sent := w.Check(s); len(sent) != 1 {
		t.Errorf("Check() sent %v; want one alarm", sent)
	}
	if sent := w.Check(s); len(sent) != 0 {
		t.Errorf("Check() again sent %v; want none", sent)
	}

	// track 1 clears then comes back
	w.Check(&telemetry.Snapshot{Relative: []*target.RelativeTarget{track(1, 2, 3)}})
	if sent := w.Check(s); len(sent) != 1 {
		t.Errorf("Check() after clearing sent %v; want one alarm", sent)
	}
	if len(r.messages) != 2 {
		t.Errorf("notifier got %d messages; want 2", len(r.messages))
	}

	if sent := w.Check(nil); sent != nil {
		t.Errorf("Check(nil) = %v; want nil", sent)
	}
}

func TestWatcherNotifierError(t *testing.T) {
	w := NewWatcher(Watch{CPA: 0.5, TCPA: 10}, &recorder{err: errors.New("offline")})
	s := &telemetry.Snapshot{Relative: []*target.RelativeTarget{track(1, 0.2, 3)}}
	if sent := w.Check(s); len(sent) != 0 {
		t.Errorf("Check() with failing notifier sent %v; want none", sent)
	}
}
