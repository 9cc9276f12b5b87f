// Program vfdd drives a two-line serial character display. On every
// refresh tick it resolves exactly one frame from the competing
// sources (one-shot command-line override, pushed UDP/MQTT/file
// content, rotating built-in screens), formats it into fixed-width
// fields, and keeps writing to the device despite transient failures.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"vfdd/config"
	"vfdd/device"
	"vfdd/frame"
	"vfdd/inbox"
	"vfdd/listen"
	"vfdd/resolve"
	"vfdd/screen"
	"vfdd/stats"
	"vfdd/ui"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const (
	version       = "0.4.0"
	envConfigPath = "VFDD_CONFIG_PATH"

	monitorStatsInterval = 2 * time.Second
	statsLogInterval     = 10 * time.Minute
)

// frameSnapshot is the last resolved frame plus its formatted fields,
// published by the output loop for the status endpoint and monitor.
type frameSnapshot struct {
	frame  frame.Frame
	field1 string
	field2 string
	state  resolve.State
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to the YAML configuration file")
		devicePort  = flag.String("port", "", "Serial port (overrides config)")
		centerText  = flag.Bool("center", false, "Center static override text")
		leftText    = flag.Bool("left", false, "Left-justify static override text")
		listenAll   = flag.Bool("listen-all", false, "Bind UDP to all interfaces instead of localhost")
		exclusive   = flag.Bool("exclusive", false, "Show only pushed content, never built-in screens")
		ttlOverride = flag.Int("ttl", -1, "Freshness TTL in seconds for pushed content (0 = never stale)")
	)
	flag.Parse()

	cfg, configSource, err := loadRuntimeConfig(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *devicePort != "" {
		cfg.Device.Port = *devicePort
	}
	if *centerText {
		cfg.Display.Align = "center"
	}
	if *leftText {
		cfg.Display.Align = "left"
	}
	if *listenAll {
		cfg.Listen.BindAll = true
	}
	if *exclusive {
		cfg.Listen.Exclusive = true
	}
	if *ttlOverride >= 0 {
		cfg.Listen.TTLSeconds = *ttlOverride
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Supplying override text switches the process permanently into
	// static mode for its lifetime. Truncation applies up front.
	var static *frame.Frame
	if args := flag.Args(); len(args) > 0 {
		f := frame.Frame{Line1: frame.Truncate(args[0])}
		if len(args) > 1 {
			f.Line2 = frame.Truncate(args[1])
		}
		static = &f
	}

	router, logErr := setupLogging(cfg.Logging, os.Stdout)
	log.SetFlags(0)
	log.SetOutput(router)
	defer router.Close()
	if logErr != nil {
		log.Printf("Warning: file logging disabled: %v", logErr)
	}

	var monitor *ui.Monitor
	if strings.EqualFold(strings.TrimSpace(cfg.UI.Mode), "tview") {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			monitor = ui.NewMonitor()
			monitor.WaitReady()
			router.SetConsoleSink(monitor.SystemWriter(), true)
			defer monitor.Stop()
		} else {
			log.Printf("UI disabled (tview requires an interactive console)")
		}
	}

	log.Printf("vfdd v%s starting (config: %s)", version, configSource)
	if monitor == nil {
		cfg.Print()
	}
	if static != nil {
		log.Printf("Static mode: %q / %q", static.Line1, static.Line2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := stats.NewTracker()
	ttl := time.Duration(cfg.Listen.TTLSeconds) * time.Second
	interval := time.Duration(cfg.Display.RotationSeconds) * time.Second
	store := inbox.NewStore(ttl, interval)

	clock := screen.NewClockStats()
	host := screen.NewHostIP(cfg.Display.IPLookupURL)
	registry := screen.NewRegistry(clock, host, store)

	resolver := resolve.New(resolve.Config{
		Static:    static,
		Exclusive: cfg.Listen.Exclusive,
		Interval:  interval,
		Inbox:     store,
		Screens:   registry,
		Fallback:  clock,
	})

	staticAlign, err := frame.ParseAlign(cfg.Display.Align)
	if err != nil {
		staticAlign = frame.AlignLeft
	}

	var current atomic.Pointer[frameSnapshot]
	payload := func(now time.Time) []byte {
		f, state := resolver.Resolve(now)
		align := frame.AlignAuto
		if state == resolve.StateStatic {
			align = staticAlign
		}
		snap := &frameSnapshot{
			frame:  f,
			field1: frame.Format(f.Line1, align),
			field2: frame.Format(f.Line2, align),
			state:  state,
		}
		current.Store(snap)
		tracker.IncrementState(state.String())
		if monitor != nil {
			monitor.SetFrame(snap.field1, snap.field2, state.String())
		}
		return append([]byte(snap.field1), snap.field2...)
	}

	driver := device.New(device.NewSerial(cfg.Device.Port, cfg.Device.Baud), payload, device.Options{
		Tick:        time.Duration(cfg.Device.TickMillis) * time.Millisecond,
		RetryDelay:  time.Duration(cfg.Device.RetrySeconds) * time.Second,
		OnWrite:     tracker.IncrementFrames,
		OnError:     tracker.IncrementDeviceErrors,
		OnReconnect: tracker.IncrementReconnects,
	})
	driver.Start()
	defer driver.Stop()

	onIngest := func(origin string) { tracker.IncrementIngest(origin) }
	onReject := func(string) { tracker.IncrementRejected() }

	udp := listen.NewUDP(cfg.Listen.UDPPort, cfg.Listen.BindAll, store, onIngest, onReject)
	if err := udp.Start(); err != nil {
		log.Printf("Warning: %v", err)
		udp = nil
	}
	defer func() {
		if udp != nil {
			udp.Stop()
		}
	}()

	if path := strings.TrimSpace(cfg.Listen.File); path != "" {
		poller := listen.NewFilePoller(path, time.Duration(cfg.Listen.FileStaleSeconds)*time.Second, store, onIngest)
		poller.Start()
		defer poller.Stop()
	}

	if cfg.Listen.MQTT.Enabled {
		mq := listen.NewMQTT(cfg.Listen.MQTT.Broker, cfg.Listen.MQTT.Port, cfg.Listen.MQTT.Topic, store, onIngest, onReject)
		if err := mq.Connect(); err != nil {
			log.Printf("Warning: %v", err)
		} else {
			defer mq.Stop()
		}
	}

	startAdminServer(cfg.Admin, func() statusReport {
		return buildStatusReport(cfg, tracker, registry, store, &current)
	})

	go statsLoop(ctx, tracker, monitor)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	if monitor != nil {
		select {
		case sig := <-sigChan:
			log.Printf("Received %v, shutting down", sig)
		case <-monitor.Done():
			log.Printf("Monitor closed, shutting down")
		}
	} else {
		sig := <-sigChan
		log.Printf("Received %v, shutting down", sig)
	}
}

// loadRuntimeConfig resolves the config path from the flag, then the
// environment, and falls back to built-in defaults.
func loadRuntimeConfig(flagPath string) (*config.Config, string, error) {
	path := strings.TrimSpace(flagPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(envConfigPath))
	}
	if path == "" {
		return config.Default(), "defaults", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func buildStatusReport(cfg *config.Config, tracker *stats.Tracker, registry *screen.Registry, store *inbox.Store, current *atomic.Pointer[frameSnapshot]) statusReport {
	rep := statusReport{
		Version:         version,
		Uptime:          tracker.GetUptime().Round(time.Second).String(),
		RotationSeconds: cfg.Display.RotationSeconds,
		Screens:         registry.Names(),
		Counters: counterStatus{
			Ingest:       tracker.GetIngestCounts(),
			States:       tracker.GetStateCounts(),
			Rejected:     tracker.Rejected(),
			Frames:       tracker.Frames(),
			DeviceErrors: tracker.DeviceErrors(),
			Reconnects:   tracker.Reconnects(),
		},
	}
	if snap := current.Load(); snap != nil {
		rep.Frame = frameStatus{
			Line1: snap.field1,
			Line2: snap.field2,
			State: snap.state.String(),
		}
	}
	now := time.Now()
	if rec, ok := store.Latest(); ok {
		_, valid := store.Valid(now)
		_, promoted := store.Promoted(now)
		rep.Source = &sourceStatus{
			Origin:     rec.Origin,
			AgeSeconds: now.Sub(rec.ReceivedAt).Seconds(),
			Promoted:   promoted,
			Valid:      valid,
		}
	}
	return rep
}

// statsLoop feeds the monitor's stats pane and writes a periodic
// activity summary to the log.
func statsLoop(ctx context.Context, tracker *stats.Tracker, monitor *ui.Monitor) {
	monitorTicker := time.NewTicker(monitorStatsInterval)
	defer monitorTicker.Stop()
	logTicker := time.NewTicker(statsLogInterval)
	defer logTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-monitorTicker.C:
			if monitor == nil {
				continue
			}
			lines := append([]string{fmt.Sprintf("Uptime: %s  Frames: %s",
				tracker.GetUptime().Round(time.Second),
				humanize.Comma(int64(tracker.Frames())))},
				tracker.SnapshotLines()...)
			monitor.SetStats(lines)
		case <-logTicker.C:
			for _, line := range tracker.SnapshotLines() {
				log.Printf("Stats: %s", line)
			}
		}
	}
}
