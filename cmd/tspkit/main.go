// Command tspkit solves one run file and prints the final snapshot as JSON.
//
//	tspkit -config run.yaml [-algorithm som] [-seed 7] [-max-steps 200]
//	       [-log-level debug] [-report-rate 2] [-metrics-addr :9090]
//
// Flags override the run file. SIGINT/SIGTERM cancel the run cooperatively;
// the best route found so far is still printed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/exp/slog"

	"github.com/katalvlaran/tspkit/config"
	"github.com/katalvlaran/tspkit/metrics"
	"github.com/katalvlaran/tspkit/progress"
	"github.com/katalvlaran/tspkit/tsp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// result is the JSON document written on success.
type result struct {
	tsp.Snapshot
	Seed         int64 `json:"seed"`
	Improvements int   `json:"improvements"`
	Reported     int   `json:"reported"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tspkit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		path        = fs.String("config", "", "run file (YAML)")
		algorithm   = fs.String("algorithm", "", "override algorithm: two_opt, genetic or som")
		seed        = fs.Int64("seed", 0, "override seed")
		maxSteps    = fs.Int("max-steps", 0, "override step cap (0: none)")
		logLevel    = fs.String("log-level", "", "override log level")
		reportRate  = fs.Float64("report-rate", 0, "override progress lines per second")
		metricsAddr = fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}
	if *path == "" {
		fmt.Fprintln(stderr, "tspkit: -config is required")
		fs.Usage()

		return 2
	}

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(stderr, "tspkit: %v\n", err)

		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "algorithm":
			cfg.Algorithm = *algorithm
		case "seed":
			cfg.Seed = *seed
		case "max-steps":
			cfg.MaxSteps = *maxSteps
		case "log-level":
			cfg.LogLevel = *logLevel
		case "report-rate":
			cfg.ReportRate = *reportRate
		}
	})
	if err = cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "tspkit: %v\n", err)

		return 1
	}

	level, _ := cfg.Level() // checked by Validate
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	final, err := solve(ctx, cfg, *metricsAddr, logger)
	if err != nil {
		logger.Error("run failed", "err", err)

		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(final); err != nil {
		logger.Error("write result", "err", err)

		return 1
	}

	return 0
}

func solve(ctx context.Context, cfg config.Run, metricsAddr string, logger *slog.Logger) (result, error) {
	m, err := tsp.NewCityMap(cfg.Points())
	if err != nil {
		return result{}, err
	}
	algo, err := tsp.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return result{}, err
	}

	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return result{}, err
	}
	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "addr", metricsAddr, "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}

	session := tsp.NewSession(m,
		tsp.WithSeed(cfg.Seed),
		tsp.WithLogger(logger),
		tsp.WithObserver(rec),
	)
	if err = session.Configure(algo, cfg.TSPOptions()); err != nil {
		return result{}, err
	}

	var (
		history  = progress.NewHistory(false)
		reported int
		throttle = progress.NewThrottle(cfg.ReportRate, 1, func(snap tsp.Snapshot) {
			reported++
			logger.Info("progress",
				"iteration", snap.Iteration,
				"best_length", snap.BestLength,
				"status", snap.Status.String(),
			)
		})
	)
	final, err := session.Run(ctx, cfg.MaxSteps, progress.Tee(history.Record, throttle.Report))
	if err != nil {
		return result{}, err
	}

	return result{
		Snapshot:     final,
		Seed:         cfg.Seed,
		Improvements: history.Improvements(),
		Reported:     reported,
	}, nil
}
