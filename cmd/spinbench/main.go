// Command spinbench measures spin locks against sync.Mutex under contention.
//
//	spinbench -variants spin,pause,mutex -threads 1,2,4,8,16 -repetitions 5 -format csv -metric real_time -out result.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/gops/agent"
	"go.uber.org/zap"

	"github.com/tezrry/spinbench/bench"
	"github.com/tezrry/spinbench/config"
	"github.com/tezrry/spinbench/container/lock"
	"github.com/tezrry/spinbench/container/lock/idle"
	"github.com/tezrry/spinbench/report"
	"github.com/tezrry/spinbench/util/logging"
)

const (
	exitOK     = 0
	exitConfig = 1
	exitRun    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("spinbench", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath   = fs.String("config", "", "config file (yaml, json or toml)")
		variants     = fs.String("variants", "", "comma-separated lock variants: spin, yield, pause, mutex")
		threads      = fs.String("threads", "", "comma-separated worker counts")
		iterations   = fs.Int("iterations", 0, "iterations per worker; 0 calibrates against -min-time")
		repeat       = fs.Int("repeat", 1, "lock/unlock rounds per iteration")
		repetitions  = fs.Int("repetitions", 1, "runs per trial")
		minTime      = fs.Duration("min-time", bench.DefaultMinTime, "minimum wall time of a calibrated trial")
		cpuTime      = fs.Bool("cpu-time", false, "judge trials by process CPU time instead of wall time")
		lockThreads  = fs.Bool("lock-threads", true, "pin every worker to its own OS thread")
		osYield      = fs.Bool("os-yield", false, "yield variant calls sched_yield instead of runtime.Gosched")
		maxProcs     = fs.Int("max-procs", 0, "GOMAXPROCS during the run; 0 keeps the default")
		format       = fs.String("format", "text", "output format: text, csv or json")
		metric       = fs.String("metric", "", "pivot written by -format csv: real_time or cpu_time; both when empty")
		out          = fs.String("out", "", "output file; stdout when empty")
		logLevel     = fs.String("log-level", "", "debug, info, warn or error")
		logFile      = fs.String("log-file", "", "log to this file instead of stderr")
		gopsAddr     = fs.String("gops", "", "start a gops agent on this address")
		kafkaBrokers = fs.String("kafka-brokers", "", "comma-separated brokers to publish samples to")
		kafkaTopic   = fs.String("kafka-topic", "", "topic to publish samples to")
		mongoURI     = fs.String("mongo-uri", "", "MongoDB to archive samples in")
		list         = fs.Bool("list", false, "print the trials and exit")
	)
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(stderr, err)
			return exitConfig
		}
	}

	var (
		opts     []config.ConfigFunc
		parseErr error
	)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "variants":
			opts = append(opts, config.WithVariants(splitList(*variants)...))
		case "threads":
			n, err := parseInts(*threads)
			if err != nil {
				parseErr = err
				return
			}
			opts = append(opts, config.WithThreads(n...))
		case "iterations":
			opts = append(opts, config.WithIterations(*iterations))
		case "repeat":
			opts = append(opts, config.WithRepeat(*repeat))
		case "repetitions":
			opts = append(opts, config.WithRepetitions(*repetitions))
		case "min-time":
			opts = append(opts, config.WithMinTime(*minTime))
		case "cpu-time":
			opts = append(opts, config.WithCPUTime(*cpuTime))
		case "lock-threads":
			opts = append(opts, config.WithLockThreads(*lockThreads))
		case "os-yield":
			opts = append(opts, config.WithOSYield(*osYield))
		case "max-procs":
			opts = append(opts, config.WithMaxProcs(*maxProcs))
		case "format":
			opts = append(opts, config.WithFormat(*format))
		case "metric":
			opts = append(opts, config.WithMetric(*metric))
		case "out":
			opts = append(opts, config.WithOutput(*out))
		case "log-level":
			opts = append(opts, config.WithLogLevel(*logLevel))
		case "log-file":
			opts = append(opts, config.WithLogFile(*logFile))
		case "gops":
			opts = append(opts, config.WithGops(*gopsAddr))
		case "kafka-brokers", "kafka-topic":
			opts = append(opts, func(c *config.Config) {
				if *kafkaBrokers != "" {
					c.Kafka.Brokers = splitList(*kafkaBrokers)
				}
				if *kafkaTopic != "" {
					c.Kafka.Topic = *kafkaTopic
				}
			})
		case "mongo-uri":
			opts = append(opts, config.WithMongoURI(*mongoURI))
		}
	})
	if parseErr != nil {
		fmt.Fprintln(stderr, parseErr)
		return exitConfig
	}

	cfg.Apply(opts...)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	ds, err := cfg.Descriptors()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	if *list {
		for _, d := range ds {
			fmt.Fprintln(stdout, d.Name())
		}
		return exitOK
	}

	if err = setupLogging(cfg.Log); err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	defer logging.Cleanup()
	logger := logging.GetDefaultLogger()

	if off := cfg.OffLadderThreads(); len(off) > 0 {
		logger.Warn("thread counts off the power-of-two ladder", zap.Ints("threads", off))
	}

	if cfg.Gops != "" {
		if err = agent.Listen(agent.Options{Addr: cfg.Gops}); err != nil {
			logger.Error("start gops agent", zap.String("addr", cfg.Gops), zap.Error(err))
			return exitConfig
		}
		defer agent.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporters, err := newExporters(ctx, &cfg, stdout)
	if err != nil {
		logger.Error("create exporters", zap.Error(err))
		return exitConfig
	}
	defer func() {
		if err := exporters.Close(); err != nil {
			logger.Warn("close exporters", zap.Error(err))
		}
	}()

	var lockOpts []lock.Option
	if cfg.OSYield {
		lockOpts = append(lockOpts, lock.WithYielder(idle.OSYield))
	}

	runner, err := bench.NewRunner(bench.MaxThreads(ds),
		bench.WithLogger(logger),
		bench.WithMinTime(cfg.MinTime),
		bench.WithRepetitions(cfg.Repetitions),
		bench.WithMaxProcs(cfg.MaxProcs),
		bench.WithHarness(
			bench.WithLockThreads(cfg.LockThreads),
			bench.WithLockOptions(lockOpts...),
		),
	)
	if err != nil {
		logger.Error("create runner", zap.Error(err))
		return exitConfig
	}
	defer runner.Close()

	runErr := runner.Run(ctx, ds, exporters)
	if runErr != nil {
		logger.Error("run aborted", zap.Error(runErr))
	}

	// Whatever finished is still reported.
	if err = exporters.Flush(context.Background()); err != nil {
		logger.Error("flush results", zap.Error(err))
		return exitRun
	}
	if runErr != nil {
		return exitRun
	}
	return exitOK
}

func setupLogging(c config.LogConf) error {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return err
	}

	if c.File == "" {
		l := logging.NewConsoleLogger(level)
		logging.SetDefaultLoggerAndFlusher(l, l.Sync)
		return nil
	}

	l, flush, err := logging.CreateLoggerAsLocalFile(c.File, level)
	if err != nil {
		return err
	}
	logging.SetDefaultLoggerAndFlusher(l, flush)
	return nil
}

// stdoutWriter hides os.Stdout's Close from report.Writer.
type stdoutWriter struct {
	io.Writer
}

func newExporters(ctx context.Context, cfg *config.Config, stdout io.Writer) (report.Multi, error) {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	metrics, err := cfg.Metrics()
	if err != nil {
		return nil, err
	}

	var w io.Writer = stdoutWriter{stdout}
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, err
		}
		w = f
	}
	exporters := report.Multi{report.NewWriter(w, format, metrics...)}

	if len(cfg.Kafka.Brokers) > 0 {
		ke, err := report.NewKafkaExporter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			_ = exporters.Close()
			return nil, err
		}
		exporters = append(exporters, ke)
	}

	if cfg.Mongo.URI != "" {
		me, err := report.NewMongoExporter(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			_ = exporters.Close()
			return nil, err
		}
		exporters = append(exporters, me)
	}
	return exporters, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInts(s string) ([]int, error) {
	parts := splitList(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid thread count %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
