package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corvidx/invidx/internal/idx/build"
	"github.com/corvidx/invidx/pkg/config"
	"github.com/corvidx/invidx/pkg/docstore"
	apperrors "github.com/corvidx/invidx/pkg/errors"
	"github.com/corvidx/invidx/pkg/health"
	"github.com/corvidx/invidx/pkg/logger"
	"github.com/corvidx/invidx/pkg/metrics"
	"github.com/corvidx/invidx/pkg/notify"
	"github.com/corvidx/invidx/pkg/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	manifestPath := flag.String("manifest", "", "path to the manifest file (required)")
	corpusDir := flag.String("corpus", "", "path to the corpus directory (required)")
	outDir := flag.String("out", "", "output directory (default out)")
	memMB := flag.Int("mem-mb", 0, "term table memory budget in MB (default 512)")
	reportMB := flag.Int("report-mb", 0, "progress log cadence in MB (default 200)")

	configPath := flag.String("config", "", "optional path to a YAML config file")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus /metrics on (optional)")
	kafkaNotify := flag.Bool("kafka-notify", false, "publish a build-complete event to Kafka")
	postgresMirror := flag.Bool("postgres-mirror", false, "mirror manifest metadata into Postgres")
	logLevel := flag.String("log-level", "", "log level override (debug|info|warn|error)")
	logFormat := flag.String("log-format", "", "log format override (json|text)")
	flag.Parse()

	explicitFlag := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicitFlag[f.Name] = true })

	if *manifestPath == "" || *corpusDir == "" {
		fmt.Fprintln(os.Stderr, "--manifest and --corpus are required")
		return apperrors.ExitArgument
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return apperrors.ExitArgument
	}
	if *outDir != "" {
		cfg.Indexer.OutDir = *outDir
	}
	if explicitFlag["mem-mb"] {
		cfg.Indexer.MemMB = *memMB
	}
	if explicitFlag["report-mb"] {
		cfg.Indexer.ReportMB = *reportMB
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := slog.Default().With("component", "indexer")

	var notifier *notify.Notifier
	if *kafkaNotify {
		notifier = notify.New(cfg.Kafka)
	}

	var pg *postgres.Client
	var mirror *docstore.Mirror
	if *postgresMirror {
		var err error
		pg, err = postgres.New(cfg.Postgres)
		if err != nil {
			log.Warn("postgres mirror disabled, connection failed", "error", err)
		} else {
			defer pg.Close()
			mirror = docstore.New(pg)
		}
	}

	checker := health.NewChecker()
	if notifier != nil {
		checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
			if err := notifier.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}
	if pg != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pg.DB.PingContext(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	var m *metrics.Metrics
	var shutdownMetrics func(context.Context) error
	if *metricsAddr != "" {
		m = metrics.New()
		shutdownMetrics = metrics.StartServer(*metricsAddr, checker)
		log.Info("metrics server listening", "addr", *metricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := build.Run(ctx, build.Options{
		ManifestPath: *manifestPath,
		CorpusDir:    *corpusDir,
		OutDir:       cfg.Indexer.OutDir,
		MemBudget:    int64(cfg.Indexer.MemMB) << 20,
		ReportBytes:  int64(cfg.Indexer.ReportMB) << 20,
		Logger:       log,
		Metrics:      m,
		Notifier:     notifier,
		Mirror:       mirror,
	})
	if shutdownMetrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = shutdownMetrics(shutdownCtx)
		cancel()
	}
	if notifier != nil {
		notifier.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "indexing failed: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}

	log.Info("build complete", "docs", result.DocCount, "terms", result.TermCount, "blocks", result.BlocksCount)
	return apperrors.ExitOK
}
