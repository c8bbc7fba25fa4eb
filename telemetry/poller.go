package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jasonlvhit/gocron"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/a-bouts/radar-server/target"
)

const DefaultPollInterval = 15 * time.Second

// Snapshot is one complete poll of the telemetry source. It is never
// modified once published.
type Snapshot struct {
	Own      target.OwnVessel         `json:"own"`
	Relative []*target.RelativeTarget `json:"relative"`
	Absolute []*target.AbsoluteTarget `json:"absolute"`
	Sequence uint64                   `json:"sequence"`
	Fetched  time.Time                `json:"fetched"`
}

func (s *Snapshot) Targets() []target.Target {
	if s == nil {
		return nil
	}
	return target.Merge(s.Relative, s.Absolute)
}

type Status struct {
	Sequence    uint64    `json:"sequence"`
	Fetched     time.Time `json:"fetched"`
	LastAttempt time.Time `json:"lastAttempt"`
	LastError   string    `json:"lastError,omitempty"`
}

// Poller owns the refresh timer. Every poll takes a sequence number when it
// starts and its result is applied only if no later poll has been applied
// already, so a slow response cannot overwrite a newer one. A failed poll
// keeps the last good snapshot.
type Poller struct {
	source   Source
	interval time.Duration
	timeout  time.Duration

	seq uint64

	lock        sync.RWMutex
	snapshot    *Snapshot
	lastAttempt time.Time
	lastError   string
	subscribers []func(*Snapshot)

	scheduler *gocron.Scheduler
	stop      chan bool
}

func NewPoller(source Source, interval, timeout time.Duration) *Poller {
	if interval < time.Second {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = interval
	}
	return &Poller{
		source:   source,
		interval: interval,
		timeout:  timeout,
	}
}

// OnUpdate registers fn to be called with every applied snapshot.
func (p *Poller) OnUpdate(fn func(*Snapshot)) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Snapshot returns the latest applied snapshot, or nil before the first
// successful poll.
func (p *Poller) Snapshot() *Snapshot {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.snapshot
}

func (p *Poller) Status() Status {
	p.lock.RLock()
	defer p.lock.RUnlock()
	st := Status{LastAttempt: p.lastAttempt, LastError: p.lastError}
	if p.snapshot != nil {
		st.Sequence = p.snapshot.Sequence
		st.Fetched = p.snapshot.Fetched
	}
	return st
}

// Refresh polls the source once.
func (p *Poller) Refresh(ctx context.Context) error {
	seq := atomic.AddUint64(&p.seq, 1)
	start := time.Now()

	s := &Snapshot{Sequence: seq}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		own, err := p.source.OwnVessel(gctx)
		s.Own = own
		return err
	})
	g.Go(func() error {
		rel, err := p.source.RelativeTargets(gctx)
		s.Relative = rel
		return err
	})
	g.Go(func() error {
		abs, err := p.source.AbsoluteTargets(gctx)
		s.Absolute = abs
		return err
	})
	err := g.Wait()
	s.Fetched = time.Now()

	if err != nil {
		p.lock.Lock()
		p.lastAttempt = s.Fetched
		// an older poll failing says nothing about the applied snapshot
		if p.snapshot == nil || p.snapshot.Sequence < seq {
			p.lastError = err.Error()
		}
		p.lock.Unlock()

		log.WithError(err).WithField("sequence", seq).Error("Telemetry poll failed, keeping last snapshot")
		return err
	}

	if !p.apply(s) {
		log.WithField("sequence", seq).Debug("Discard stale telemetry response")
		return nil
	}

	log.WithFields(log.Fields{
		"sequence": seq,
		"ttm":      len(s.Relative),
		"tll":      len(s.Absolute),
		"fix":      s.Own.Fix() != nil,
	}).Debugf("Telemetry refreshed in %s", s.Fetched.Sub(start))

	return nil
}

func (p *Poller) apply(s *Snapshot) bool {
	p.lock.Lock()
	p.lastAttempt = s.Fetched
	if p.snapshot != nil && p.snapshot.Sequence >= s.Sequence {
		p.lock.Unlock()
		return false
	}
	p.snapshot = s
	p.lastError = ""
	subscribers := append([]func(*Snapshot){}, p.subscribers...)
	p.lock.Unlock()

	for _, fn := range subscribers {
		fn(s)
	}
	return true
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	p.Refresh(ctx)
}

// Start polls once and then every interval until Stop.
func (p *Poller) Start() error {
	p.poll()

	p.scheduler = gocron.NewScheduler()
	secs := uint64(p.interval / time.Second)
	if err := p.scheduler.Every(secs).Seconds().Do(p.poll); err != nil {
		return err
	}
	p.stop = p.scheduler.Start()

	log.Infof("Polling telemetry every %s", p.interval)
	return nil
}

// Stop ends the scheduler goroutine. A poll already running completes.
func (p *Poller) Stop() {
	if p.scheduler == nil {
		return
	}
	close(p.stop)
	p.scheduler = nil
}
