package main

import (
	"fmt"
	"log"
	"net/http"
	httppprof "net/http/pprof"

	jsoniter "github.com/json-iterator/go"

	"vfdd/config"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// statusReport is the JSON shape served on /status.
type statusReport struct {
	Version string      `json:"version"`
	Uptime  string      `json:"uptime"`
	Frame   frameStatus `json:"frame"`

	Source *sourceStatus `json:"source,omitempty"`

	RotationSeconds int      `json:"rotation_seconds"`
	Screens         []string `json:"screens"`

	Counters counterStatus `json:"counters"`
}

type frameStatus struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
	State string `json:"state"`
}

type sourceStatus struct {
	Origin     string  `json:"origin"`
	AgeSeconds float64 `json:"age_seconds"`
	Promoted   bool    `json:"promoted"`
	Valid      bool    `json:"valid"`
}

type counterStatus struct {
	Ingest       map[string]uint64 `json:"ingest"`
	States       map[string]uint64 `json:"states"`
	Rejected     uint64            `json:"rejected"`
	Frames       uint64            `json:"frames_written"`
	DeviceErrors uint64            `json:"device_errors"`
	Reconnects   uint64            `json:"reconnects"`
}

// startAdminServer exposes /status plus the pprof endpoints on the
// admin port. Disabled when the port is zero.
func startAdminServer(cfg config.AdminConfig, report func() statusReport) {
	if cfg.HTTPPort <= 0 {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		data, err := jsonAPI.MarshalIndent(report(), "", "  ")
		if err != nil {
			http.Error(w, fmt.Sprintf("marshal status: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})
	mux.Handle("/debug/pprof/", http.HandlerFunc(httppprof.Index))
	mux.Handle("/debug/pprof/cmdline", http.HandlerFunc(httppprof.Cmdline))
	mux.Handle("/debug/pprof/profile", http.HandlerFunc(httppprof.Profile))
	mux.Handle("/debug/pprof/symbol", http.HandlerFunc(httppprof.Symbol))
	mux.Handle("/debug/pprof/trace", http.HandlerFunc(httppprof.Trace))

	addr := fmt.Sprintf("%s:%d", cfg.BindAddress, cfg.HTTPPort)
	go func() {
		log.Printf("Admin interface on http://%s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Admin server stopped: %v", err)
		}
	}()
}
