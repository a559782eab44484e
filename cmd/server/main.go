// Command server runs the podium aggregator: a TCP competition-ranking
// server taking three positional arguments, <p_r> <p_w> <delta_t>.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	if err := applyPositionalArgs(cfg, args); err != nil {
		os.Stderr.WriteString("failed to parse arguments: " + err.Error() + "\n")
		return 1
	}

	closeLog, err := logger.InitFile(cfg.LogFile)
	if err != nil {
		os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = closeLog() }()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	loggerInstance := logger.Get()
	loggerInstance.Info(ctx, "starting podium aggregator",
		logger.String("listen_addr", cfg.ListenAddr),
		logger.Int("reader_pool_size", cfg.ReaderPoolSize),
		logger.Int("writer_pool_size", cfg.WriterPoolSize),
		logger.Int("delta_t_millis", cfg.DeltaTMillis),
	)

	srv := app.New(cfg, app.WithLogger(loggerInstance))
	if err := srv.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start server: " + err.Error() + "\n")
		return 1
	}

	<-ctx.Done()
	loggerInstance.Info(context.Background(), "shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		loggerInstance.Error(context.Background(), "shutdown error", logger.Error(err))
		return 1
	}

	return 0
}

// applyPositionalArgs overrides cfg with the CLI surface <p_r> <p_w>
// <delta_t>, all optional but, when present, all three must be given
// together and in order.
func applyPositionalArgs(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) != 3 {
		return fmt.Errorf("expected 3 positional arguments <p_r> <p_w> <delta_t>, got %d", len(args))
	}

	readerPoolSize, err := strconv.Atoi(args[0])
	if err != nil || readerPoolSize <= 0 {
		return fmt.Errorf("invalid p_r %q: must be a positive integer", args[0])
	}
	writerPoolSize, err := strconv.Atoi(args[1])
	if err != nil || writerPoolSize <= 0 {
		return fmt.Errorf("invalid p_w %q: must be a positive integer", args[1])
	}
	deltaT, err := strconv.Atoi(args[2])
	if err != nil || deltaT < 0 {
		return fmt.Errorf("invalid delta_t %q: must be a non-negative integer", args[2])
	}

	cfg.ReaderPoolSize = readerPoolSize
	cfg.WriterPoolSize = writerPoolSize
	cfg.DeltaTMillis = deltaT
	return nil
}
