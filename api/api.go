package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/radar-server/api/model"
	"github.com/a-bouts/radar-server/latlon"
	"github.com/a-bouts/radar-server/radar"
	"github.com/a-bouts/radar-server/target"
	"github.com/a-bouts/radar-server/telemetry"
)

// Snapshots gives the handlers the latest telemetry. *telemetry.Poller
// implements it.
type Snapshots interface {
	Snapshot() *telemetry.Snapshot
	Status() telemetry.Status
}

type Options struct {
	CPUProfile     bool
	Style          target.Style
	SweepStep      float64
	SweepInterval  time.Duration
	AllowedOrigins []string
}

type server struct {
	cpuprofile bool
	profiling  int32

	snapshots Snapshots
	selection *target.Selection
	style     target.Style

	sweepStep     float64
	sweepInterval time.Duration
	upgrader      websocket.Upgrader
}

func InitServer(snapshots Snapshots, opts Options) http.Handler {

	router := mux.NewRouter().StrictSlash(true)

	style := opts.Style
	if style.CanvasPx <= 0 {
		style = target.DefaultStyle
	}

	s := server{
		cpuprofile:    opts.CPUProfile,
		snapshots:     snapshots,
		selection:     &target.Selection{},
		style:         style,
		sweepStep:     opts.SweepStep,
		sweepInterval: opts.SweepInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	router.HandleFunc("/radar/-/healthz", s.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/radar/api/v1").Subrouter()
	apiV1.HandleFunc("/status", s.status).Methods(http.MethodGet)
	apiV1.HandleFunc("/ownship", s.ownship).Methods(http.MethodGet)
	apiV1.HandleFunc("/targets", s.targets).Methods(http.MethodGet)
	apiV1.HandleFunc("/targets/visible", s.visible).Methods(http.MethodGet)
	apiV1.HandleFunc("/targets/groups", s.groups).Methods(http.MethodGet)
	apiV1.HandleFunc("/plot", s.plot).Methods(http.MethodGet)
	apiV1.HandleFunc("/hit", s.hit).Methods(http.MethodPost)
	apiV1.HandleFunc("/selection", s.getSelection).Methods(http.MethodGet)
	apiV1.HandleFunc("/selection", s.toggleSelection).Methods(http.MethodPost)
	apiV1.HandleFunc("/selection", s.clearSelection).Methods(http.MethodDelete)
	apiV1.HandleFunc("/sweep", s.sweep).Methods(http.MethodGet)
	apiV1.HandleFunc("/dms/{lat}/{lon}", s.dms).Methods(http.MethodGet)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	var h http.Handler = router
	h = handlers.CombinedLoggingHandler(log.StandardLogger().WriterLevel(log.DebugLevel), h)
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(log.StandardLogger()), handlers.PrintRecoveryStack(true))(h)

	return h
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Errorf("Error encoding %T", v)
		http.Error(w, "encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func (s *server) requestLogger(action string, req *http.Request) *log.Entry {
	fields := log.Fields{
		"action":  action,
		"request": uuid.NewString(),
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	return log.WithFields(fields)
}

// startProfile profiles the request when -cpuprofile is set. pkg/profile
// allows one profile at a time, concurrent requests run unprofiled.
func (s *server) startProfile() func() {
	if !s.cpuprofile || !atomic.CompareAndSwapInt32(&s.profiling, 0, 1) {
		return func() {}
	}
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	return func() {
		p.Stop()
		atomic.StoreInt32(&s.profiling, 0)
	}
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}

	if s.snapshots.Snapshot() == nil {
		writeJSON(w, http.StatusServiceUnavailable, health{Status: "Waiting for telemetry"})
		return
	}
	writeJSON(w, http.StatusOK, health{Status: "Ok"})
}

func (s *server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshots.Status())
}

// current returns the latest snapshot's targets and own fix, refreshing the
// held selection against them.
func (s *server) current() (*telemetry.Snapshot, []target.Target, *latlon.LatLon, target.Target) {
	snap := s.snapshots.Snapshot()
	if snap == nil {
		return nil, nil, nil, s.selection.Get()
	}
	all := snap.Targets()
	return snap, all, snap.Own.Fix(), s.selection.Refresh(all)
}

func (s *server) ownship(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Snapshot()
	if snap == nil {
		writeJSON(w, http.StatusOK, model.OwnShip{})
		return
	}
	writeJSON(w, http.StatusOK, model.NewOwnShip(snap.Own))
}

func contacts(all []target.Target, own *latlon.LatLon, selection target.Target) []model.Contact {
	res := make([]model.Contact, 0, len(all))
	for _, t := range all {
		c := model.Contact{
			Key:      t.Key(),
			Target:   t,
			Color:    target.ColorFor(t, selection),
			Selected: target.Same(t, selection),
		}
		if p, ok := target.Resolve(t, own); ok {
			c.Polar = &p
		}
		if pos, ok := target.Locate(t, own); ok {
			c.Position = &pos
		}
		res = append(res, c)
	}
	return res
}

func (s *server) targets(w http.ResponseWriter, r *http.Request) {
	_, all, own, sel := s.current()
	writeJSON(w, http.StatusOK, contacts(all, own, sel))
}

func (s *server) groups(w http.ResponseWriter, r *http.Request) {
	_, all, _, _ := s.current()
	groups := target.GroupByID(all)
	if groups == nil {
		groups = []target.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// parsePositive reads an optional positive float query parameter. A missing
// parameter returns def.
func parsePositive(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !(f > 0) || f > 1e9 {
		return 0, fmt.Errorf("invalid %s '%s'", name, v)
	}
	return f, nil
}

func (s *server) rangeOf(r *http.Request, all []target.Target, own *latlon.LatLon) (float64, error) {
	return parsePositive(r, "range", radar.MaxRange(target.Ranges(all, own)))
}

func (s *server) visible(w http.ResponseWriter, r *http.Request) {
	_, all, own, sel := s.current()

	maxRange, err := s.rangeOf(r, all, own)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, contacts(target.Visible(all, own, maxRange), own, sel))
}

func (s *server) buildPlot(r *http.Request) (model.Plot, []target.Target, *latlon.LatLon, error) {
	snap, all, own, sel := s.current()

	maxRange, err := s.rangeOf(r, all, own)
	if err != nil {
		return model.Plot{}, nil, nil, err
	}
	size, err := parsePositive(r, "size", s.style.CanvasPx)
	if err != nil {
		return model.Plot{}, nil, nil, err
	}

	style := s.style
	style.CanvasPx = size

	p := model.Plot{
		RangeNM:  maxRange,
		CanvasPx: size,
		Fix:      own != nil,
		Rings:    radar.RangeRings(maxRange, size, style.RangeRingCount),
		Blips:    target.Plot(all, own, sel, maxRange, style),
	}
	if snap != nil {
		p.Sequence = snap.Sequence
	}
	return p, all, own, nil
}

func (s *server) plot(w http.ResponseWriter, r *http.Request) {
	defer s.startProfile()()

	requestLogger := s.requestLogger("plot", r)
	start := time.Now()

	p, _, _, err := s.buildPlot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	requestLogger.Debugf("Plot %d blips at %.2f nm took %s", len(p.Blips), p.RangeNM, time.Since(start))

	writeJSON(w, http.StatusOK, p)
}

func selectionOf(t target.Target, own *latlon.LatLon) model.Selection {
	if t == nil {
		return model.Selection{}
	}
	k := t.Key()
	return model.Selection{Selected: &k, Tooltip: target.Tooltip(t, own)}
}

func (s *server) getSelection(w http.ResponseWriter, r *http.Request) {
	_, _, own, sel := s.current()
	writeJSON(w, http.StatusOK, selectionOf(sel, own))
}

func (s *server) toggleSelection(w http.ResponseWriter, r *http.Request) {
	var req model.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid selection", http.StatusBadRequest)
		return
	}

	_, all, own, _ := s.current()
	t, found := target.Find(all, target.Key{Source: target.Source(strings.ToUpper(string(req.Source))), ID: req.ID})
	if !found {
		http.Error(w, "unknown target", http.StatusNotFound)
		return
	}

	sel := s.selection.Toggle(t)
	s.requestLogger("select", r).Infof("Toggle %s %d", t.Key().Source, t.Key().ID)

	writeJSON(w, http.StatusOK, selectionOf(sel, own))
}

func (s *server) clearSelection(w http.ResponseWriter, r *http.Request) {
	s.selection.Clear()
	writeJSON(w, http.StatusOK, model.Selection{})
}

func (s *server) hit(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "invalid click position", http.StatusBadRequest)
		return
	}

	p, all, own, err := s.buildPlot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, hit := target.HitTest(p.Blips, radar.Point{X: x, Y: y}, s.style.HitRadiusPx)
	sel := s.selection.Get()
	if hit {
		if t, found := target.Find(all, b.Key); found {
			sel = s.selection.Toggle(t)
		}
	}

	res := selectionOf(sel, own)
	res.Hit = &hit
	writeJSON(w, http.StatusOK, res)
}

func (s *server) dms(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(mux.Vars(r)["lat"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(mux.Vars(r)["lon"], 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, model.DMS{
		Latitude:  latlon.ToDMS(lat, latlon.Latitude).String(),
		Longitude: latlon.ToDMS(lon, latlon.Longitude).String(),
	})
}

func (s *server) sweep(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Sweep upgrade failed")
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	requestLogger := s.requestLogger("sweep", r).WithField("session", session)
	requestLogger.Info("Sweep started")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// the client only ever closes; reading is how we notice
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	sw := radar.NewSweep(s.sweepStep)
	err = sw.Run(ctx, s.sweepInterval, func(angle float64) error {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		return conn.WriteJSON(model.Sweep{Angle: angle})
	})
	requestLogger.WithError(err).Info("Sweep stopped")
}

// getIp returns the client address, preferring the proxy headers the
// bridge display is usually served behind.
func getIp(r *http.Request) (string, error) {
	if ip := r.Header.Get("X-Real-Ip"); net.ParseIP(ip) != nil {
		return ip, nil
	}

	for _, ip := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip = strings.TrimSpace(ip); net.ParseIP(ip) != nil {
			return ip, nil
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if net.ParseIP(host) == nil {
		return "", fmt.Errorf("no valid ip in %q", r.RemoteAddr)
	}
	return host, nil
}
