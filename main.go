package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/a-bouts/radar-server/alert"
	"github.com/a-bouts/radar-server/api"
	"github.com/a-bouts/radar-server/radar"
	"github.com/a-bouts/radar-server/target"
	"github.com/a-bouts/radar-server/telemetry"
	"github.com/a-bouts/radar-server/xmpp"
)

func main() {

	fs := flag.NewFlagSet("radar-server", flag.ExitOnError)
	var (
		listen         = fs.String("listen", ":8888", "HTTP listen address")
		upstreamURL    = fs.String("upstream-url", "http://localhost:5000/api", "vessel telemetry API base URL")
		ownshipPath    = fs.String("ownship-path", telemetry.DefaultConfig.OwnShipPath, "own ship fix path")
		ttmPath        = fs.String("ttm-path", telemetry.DefaultConfig.RelativePath, "radar (TTM) targets path")
		tllPath        = fs.String("tll-path", telemetry.DefaultConfig.AbsolutePath, "AIS (TLL) targets path")
		pollInterval   = fs.Duration("poll-interval", telemetry.DefaultPollInterval, "telemetry poll interval")
		requestTimeout = fs.Duration("request-timeout", telemetry.DefaultConfig.Timeout, "telemetry request timeout")
		canvasSize     = fs.Float64("canvas-size", target.DefaultStyle.CanvasPx, "default radar canvas size in pixels")
		sweepStep      = fs.Float64("sweep-step", radar.DefaultSweepStep, "sweep advance per tick in degrees")
		sweepInterval  = fs.Duration("sweep-interval", radar.DefaultSweepInterval, "sweep tick interval")
		cpaAlert       = fs.Float64("cpa-alert", 0.5, "CPA alarm threshold in nautical miles, 0 disables")
		tcpaAlert      = fs.Float64("tcpa-alert", 12, "TCPA alarm threshold in minutes")
		origins        = fs.String("allowed-origins", "*", "comma separated CORS origins")
		xmppHost       = fs.String("xmpp-host", "", "")
		xmppJid        = fs.String("xmpp-jid", "", "")
		xmppPassword   = fs.String("xmpp-password", "", "")
		xmppTo         = fs.String("xmpp-to", "", "")
		cpuprofile     = fs.Bool("cpuprofile", false, "profile plot requests")
		logLevel       = fs.String("log-level", "info", "debug, info, warn or error")
		logJSON        = fs.Bool("log-json", false, "log as JSON")
		logFile        = fs.String("log-file", "", "rotated log file, stderr when empty")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix()); err != nil {
		log.WithError(err).Fatal("Error parsing configuration")
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Warnf("Unknown log level '%s', using info", *logLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if *logJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if len(*logFile) > 0 {
		w := &lumberjack.Logger{
			Filename:   *logFile,
			MaxSize:    32, // MB
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
		defer w.Close()
		log.SetOutput(w)
	}

	source := telemetry.NewHTTPSource(telemetry.Config{
		BaseURL:      *upstreamURL,
		OwnShipPath:  *ownshipPath,
		RelativePath: *ttmPath,
		AbsolutePath: *tllPath,
		Timeout:      *requestTimeout,
	})
	poller := telemetry.NewPoller(source, *pollInterval, *requestTimeout)

	x := xmpp.Xmpp{Config: xmpp.Config{Host: *xmppHost, Jid: *xmppJid, Password: *xmppPassword, To: *xmppTo}}
	if *cpaAlert > 0 {
		var notifier alert.Notifier
		if x.Config.Enabled() {
			notifier = x
		} else {
			log.Info("No xmpp config, CPA alarms are only logged")
		}
		watcher := alert.NewWatcher(alert.Watch{CPA: *cpaAlert, TCPA: *tcpaAlert}, notifier)
		poller.OnUpdate(func(s *telemetry.Snapshot) { watcher.Check(s) })
	}

	log.Infof("Poll telemetry from %s", *upstreamURL)
	if err := poller.Start(); err != nil {
		log.WithError(err).Fatal("Error starting telemetry poller")
	}
	defer poller.Stop()

	style := target.DefaultStyle
	style.CanvasPx = *canvasSize

	router := api.InitServer(poller, api.Options{
		CPUProfile:     *cpuprofile,
		Style:          style,
		SweepStep:      *sweepStep,
		SweepInterval:  *sweepInterval,
		AllowedOrigins: strings.Split(*origins, ","),
	})

	srv := &http.Server{
		Addr:    *listen,
		Handler: router,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Infof("Start server on %s", *listen)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server failed")
	}
}
