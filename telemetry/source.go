// Package telemetry fetches own-ship and target snapshots from the vessel
// telemetry API and keeps the latest one.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/radar-server/target"
)

// Source supplies the current own-ship fix and target lists.
type Source interface {
	OwnVessel(ctx context.Context) (target.OwnVessel, error)
	RelativeTargets(ctx context.Context) ([]*target.RelativeTarget, error)
	AbsoluteTargets(ctx context.Context) ([]*target.AbsoluteTarget, error)
}

type Config struct {
	BaseURL      string
	OwnShipPath  string
	RelativePath string
	AbsolutePath string
	Timeout      time.Duration
}

var DefaultConfig = Config{
	OwnShipPath:  "/ownship",
	RelativePath: "/ttm",
	AbsolutePath: "/tll",
	Timeout:      10 * time.Second,
}

type HTTPSource struct {
	cfg    Config
	client *http.Client
}

func NewHTTPSource(cfg Config) *HTTPSource {
	if cfg.OwnShipPath == "" {
		cfg.OwnShipPath = DefaultConfig.OwnShipPath
	}
	if cfg.RelativePath == "" {
		cfg.RelativePath = DefaultConfig.RelativePath
	}
	if cfg.AbsolutePath == "" {
		cfg.AbsolutePath = DefaultConfig.AbsolutePath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &HTTPSource{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (s *HTTPSource) get(ctx context.Context, path string, v interface{}) error {
	url := s.cfg.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("get %s: unexpected status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (s *HTTPSource) OwnVessel(ctx context.Context) (target.OwnVessel, error) {
	var o *OwnShip
	if err := s.get(ctx, s.cfg.OwnShipPath, &o); err != nil {
		return target.OwnVessel{}, err
	}
	if o == nil {
		return target.OwnVessel{}, nil
	}
	return o.Vessel(), nil
}

func (s *HTTPSource) RelativeTargets(ctx context.Context) ([]*target.RelativeTarget, error) {
	var tracks []TrackedTarget
	if err := s.get(ctx, s.cfg.RelativePath, &tracks); err != nil {
		return nil, err
	}

	targets := make([]*target.RelativeTarget, 0, len(tracks))
	for _, tr := range tracks {
		t, ok := tr.Target()
		if !ok {
			log.Debugf("Skip TTM track without target number")
			continue
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (s *HTTPSource) AbsoluteTargets(ctx context.Context) ([]*target.AbsoluteTarget, error) {
	var reports []PositionReport
	if err := s.get(ctx, s.cfg.AbsolutePath, &reports); err != nil {
		return nil, err
	}

	targets := make([]*target.AbsoluteTarget, 0, len(reports))
	for _, r := range reports {
		t, ok := r.Target()
		if !ok {
			log.Debugf("Skip TLL report %v without number or fix", r.TargetNumber.Value)
			continue
		}
		targets = append(targets, t)
	}
	return targets, nil
}
