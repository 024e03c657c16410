package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/corvidx/invidx/internal/qry/eval"
	"github.com/corvidx/invidx/internal/qry/parser"
	"github.com/corvidx/invidx/internal/qry/reader"
	"github.com/corvidx/invidx/pkg/cache"
	"github.com/corvidx/invidx/pkg/config"
	apperrors "github.com/corvidx/invidx/pkg/errors"
	"github.com/corvidx/invidx/pkg/health"
	"github.com/corvidx/invidx/pkg/logger"
	"github.com/corvidx/invidx/pkg/metrics"
	pkgredis "github.com/corvidx/invidx/pkg/redis"
)

func main() {
	os.Exit(run())
}

func run() int {
	indexDir := flag.String("index", "", "path to a built index directory (required)")
	limit := flag.Int("limit", 0, "maximum result rows printed per query (default 50)")
	offset := flag.Int("offset", 0, "result rows to skip before printing (default 0)")
	statsOnly := flag.Bool("stats-only", false, "suppress result rows, print only [STATS]")
	printDocCount := flag.Bool("print-doccount", false, "print the index's document count and exit")

	configPath := flag.String("config", "", "optional path to a YAML config file")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus /metrics on (optional)")
	useCache := flag.Bool("cache", false, "enable the Redis-backed query result cache")
	logLevel := flag.String("log-level", "", "log level override (debug|info|warn|error)")
	logFormat := flag.String("log-format", "", "log format override (json|text)")
	flag.Parse()

	explicitFlag := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicitFlag[f.Name] = true })

	if *indexDir == "" {
		fmt.Fprintln(os.Stderr, "--index is required")
		return apperrors.ExitArgument
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return apperrors.ExitArgument
	}
	if explicitFlag["limit"] {
		cfg.Query.Limit = *limit
	}
	if explicitFlag["offset"] {
		cfg.Query.Offset = *offset
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := slog.Default().With("component", "query")

	var redisClient *pkgredis.Client
	var queryCache *cache.QueryCache
	if *useCache {
		var err error
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("query cache disabled, redis unavailable", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
		}
	}

	checker := health.NewChecker()
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
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
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = shutdownMetrics(shutdownCtx)
		}()
		log.Info("metrics server listening", "addr", *metricsAddr)
	}

	idx, err := reader.Load(*indexDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "index load failed: %v\n", err)
		return apperrors.ExitIO
	}

	if *printDocCount {
		fmt.Println(idx.DocCount())
		return apperrors.ExitOK
	}

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		runQuery(context.Background(), idx, queryCache, m, line, cfg.Query.Limit, cfg.Query.Offset, *statsOnly)
	}

	return apperrors.ExitOK
}

func runQuery(ctx context.Context, idx *reader.Index, qc *cache.QueryCache, m *metrics.Metrics, line string, limit, offset int, statsOnly bool) {
	start := time.Now()

	compute := func() (cache.Result, error) {
		rpn := parser.ToRPN(line)
		hits := eval.Run(idx, rpn)
		return cache.Result{DocIDs: hits, Hits: len(hits)}, nil
	}

	var result cache.Result
	var err error
	if qc != nil {
		result, err = qc.GetOrCompute(ctx, line, compute)
	} else {
		result, err = compute()
	}
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		return
	}
	if m != nil {
		m.QueriesTotal.Inc()
		m.QueryLatency.Observe(elapsed.Seconds())
		m.QueryHitCount.Observe(float64(result.Hits))
	}

	shown := 0
	if !statsOnly {
		for i := offset; i < len(result.DocIDs) && shown < limit; i++ {
			id := result.DocIDs[i]
			if id >= idx.DocCount() {
				continue
			}
			fmt.Printf("%d\t%s\t%s\n", id, idx.DocTitle(id), idx.DocURL(id))
			shown++
		}
	} else {
		if offset < len(result.DocIDs) {
			left := len(result.DocIDs) - offset
			if left < limit {
				shown = left
			} else {
				shown = limit
			}
		}
	}

	fmt.Printf("[STATS] query=%q hits=%d shown=%d offset=%d time=%.6f sec\n",
		line, result.Hits, shown, offset, elapsed.Seconds())
}
