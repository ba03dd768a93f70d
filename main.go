package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairway-data/swing.report/api"
	"github.com/fairway-data/swing.report/internal/analysis"
	"github.com/fairway-data/swing.report/internal/config"
	"github.com/fairway-data/swing.report/internal/metrics"
	"github.com/fairway-data/swing.report/internal/pose"
	"github.com/fairway-data/swing.report/internal/report"
	"github.com/fairway-data/swing.report/internal/scoring"
	"github.com/fairway-data/swing.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a tuning config JSON file (built-in defaults when empty)")
	listen      = flag.String("listen", "", "Listen address (overrides config)")
	dbPath      = flag.String("db", "", "Report database path (overrides config)")
	analyzeFile = flag.String("analyze", "", "Analyze a captured frames JSON file and print the report instead of serving")
	handedness  = flag.String("handedness", "", `Golfer handedness: "right" or "left" (auto-detected when empty)`)
	club        = flag.String("club", "", `Club class: "driver", "iron" or "wedge" (estimated when empty)`)
	view        = flag.String("view", "", `Camera view: "frontal" or "lateral" (config default when empty)`)
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

// captureFile is the on-disk shape of a recorded swing: frame records
// as produced by the pose capture, plus the capture rate.
type captureFile struct {
	FPS    float64            `json:"fps"`
	Frames []pose.FrameRecord `json:"frames"`
}

func loadConfig() *config.TuningConfig {
	if *configPath != "" {
		cfg, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		return cfg
	}
	// No explicit config: use the defaults file when present, otherwise
	// fall back to built-in defaults.
	if cfg, err := config.LoadTuningConfig(config.DefaultConfigPath); err == nil {
		return cfg
	}
	return config.EmptyTuningConfig()
}

func optionsFromFlags(cfg *config.TuningConfig) analysis.Options {
	v := *view
	if v == "" {
		v = cfg.GetDefaultView()
	}
	return analysis.Options{
		Handedness:      metrics.Handedness(*handedness),
		Club:            metrics.ClubClass(*club),
		View:            scoring.View(v),
		SmoothRotations: cfg.GetSmoothRotations(),
		SmoothingSigma:  cfg.GetSmoothingSigma(),
		RefinePlane:     cfg.GetRefinePlane(),
		PlaneStrength:   cfg.GetPlaneStrength(),
	}
}

// runAnalyze reads a capture file, runs the pipeline once, and prints
// the report as JSON on stdout.
func runAnalyze(cfg *config.TuningConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read capture file: %w", err)
	}

	var capture captureFile
	if err := json.Unmarshal(data, &capture); err != nil {
		return fmt.Errorf("parse capture file: %w", err)
	}
	fps := capture.FPS
	if fps <= 0 {
		fps = cfg.GetDefaultFPS()
	}

	rep, err := analysis.New().Analyze(pose.NewSequence(capture.Frames, fps), optionsFromFlags(cfg))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func serve(cfg *config.TuningConfig) {
	addr := *listen
	if addr == "" {
		addr = cfg.GetListenAddr()
	}
	path := *dbPath
	if path == "" {
		path = cfg.GetDatabasePath()
	}

	store, err := report.Open(path)
	if err != nil {
		log.Fatalf("Failed to open report store: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := api.NewServer(analysis.New(), store).ServeMux()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("got request %q", r.URL.Path)
		mux.ServeHTTP(w, r)
	})

	server := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	// Start server in a goroutine so it doesn't block
	go func() {
		log.Printf("listening on %s (reports in %s)", addr, path)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("swing.report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := loadConfig()

	if *analyzeFile != "" {
		if err := runAnalyze(cfg, *analyzeFile); err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		return
	}

	serve(cfg)
}
