// Package config holds everything a spinbench run can be told from a file or
// the command line.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/conf"

	"github.com/tezrry/spinbench/bench"
	"github.com/tezrry/spinbench/clock"
	"github.com/tezrry/spinbench/container/lock"
	"github.com/tezrry/spinbench/report"
	"github.com/tezrry/spinbench/util/logging"
	"github.com/tezrry/spinbench/util/math"
)

var (
	ErrNoVariants = errors.New("at least one lock variant is required")
	ErrNoThreads  = errors.New("at least one thread count is required")
)

type LogConf struct {
	Level string `json:"level,optional"`
	// File switches logging to a rotated local file.
	File string `json:"file,optional"`
}

type KafkaConf struct {
	Brokers []string `json:"brokers,optional"`
	Topic   string   `json:"topic,optional"`
}

type MongoConf struct {
	URI        string `json:"uri,optional"`
	Database   string `json:"database,optional"`
	Collection string `json:"collection,optional"`
}

type Config struct {
	Variants    []string      `json:"variants,optional"`
	Threads     []int         `json:"threads,optional"`
	Iterations  int           `json:"iterations,optional"`
	Repeat      int           `json:"repeat,optional"`
	Repetitions int           `json:"repetitions,optional"`
	MinTime     time.Duration `json:"min_time,optional"`
	CPUTime     bool          `json:"cpu_time,optional"`
	// LockThreads pins each worker goroutine to an OS thread.
	LockThreads bool `json:"lock_threads,default=true"`
	// OSYield makes the yield variant call sched_yield instead of
	// runtime.Gosched.
	OSYield  bool   `json:"os_yield,optional"`
	MaxProcs int    `json:"max_procs,optional"`
	Format   string `json:"format,optional"`
	// Metric limits the CSV pivot to real_time or cpu_time; both when empty.
	Metric string `json:"metric,optional"`
	// Output is a file path; empty means stdout.
	Output string `json:"output,optional"`
	// Gops is the listen address of the gops agent; empty disables it.
	Gops  string    `json:"gops,optional"`
	Log   LogConf   `json:"log,optional"`
	Kafka KafkaConf `json:"kafka,optional"`
	Mongo MongoConf `json:"mongo,optional"`
}

type ConfigFunc func(c *Config)

// Default is the full matrix: every variant at 1, 2, 4, 8 and 16 threads,
// calibrated to half a second of wall time, one acquisition per iteration.
func Default() Config {
	variants := lock.Variants()
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.String()
	}

	return Config{
		Variants:    names,
		Threads:     bench.DefaultThreads(),
		Repeat:      1,
		Repetitions: 1,
		MinTime:     bench.DefaultMinTime,
		LockThreads: true,
		Format:      string(report.FormatText),
		Log:         LogConf{Level: logging.LogLevel()},
		Mongo:       MongoConf{Database: "spinbench", Collection: "runs"},
	}
}

// fileConfig has Config's fields and tags but none of its methods, so the
// loader does not validate a partial file before defaults are merged in.
type fileConfig Config

// Load reads a YAML, JSON or TOML file (by extension) over Default. Keys
// absent from the file keep their defaults.
func Load(path string) (Config, error) {
	var file fileConfig
	if err := conf.Load(path, &file); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	c := Default()
	c.merge(Config(file))
	return c, nil
}

func (c *Config) merge(o Config) {
	if len(o.Variants) > 0 {
		c.Variants = o.Variants
	}
	if len(o.Threads) > 0 {
		c.Threads = o.Threads
	}
	if o.Iterations != 0 {
		c.Iterations = o.Iterations
	}
	if o.Repeat != 0 {
		c.Repeat = o.Repeat
	}
	if o.Repetitions != 0 {
		c.Repetitions = o.Repetitions
	}
	if o.MinTime != 0 {
		c.MinTime = o.MinTime
	}
	if o.MaxProcs != 0 {
		c.MaxProcs = o.MaxProcs
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.Metric != "" {
		c.Metric = o.Metric
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Gops != "" {
		c.Gops = o.Gops
	}
	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.File != "" {
		c.Log.File = o.Log.File
	}
	if len(o.Kafka.Brokers) > 0 {
		c.Kafka.Brokers = o.Kafka.Brokers
	}
	if o.Kafka.Topic != "" {
		c.Kafka.Topic = o.Kafka.Topic
	}
	if o.Mongo.URI != "" {
		c.Mongo.URI = o.Mongo.URI
	}
	if o.Mongo.Database != "" {
		c.Mongo.Database = o.Mongo.Database
	}
	if o.Mongo.Collection != "" {
		c.Mongo.Collection = o.Mongo.Collection
	}
	c.CPUTime = o.CPUTime
	c.OSYield = o.OSYield
	c.LockThreads = o.LockThreads
}

// Apply runs every option over c.
func (c *Config) Apply(config ...ConfigFunc) {
	for _, cf := range config {
		cf(c)
	}
}

// Validate checks every field and returns the first problem.
func (c *Config) Validate() error {
	if len(c.Variants) == 0 {
		return ErrNoVariants
	}
	if _, err := c.LockVariants(); err != nil {
		return err
	}
	if len(c.Threads) == 0 {
		return ErrNoThreads
	}
	for _, n := range c.Threads {
		if n < 1 {
			return fmt.Errorf("%w, got %d", bench.ErrInvalidThreads, n)
		}
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w, got %d", bench.ErrInvalidIterations, c.Iterations)
	}
	if c.Repeat < 1 {
		return fmt.Errorf("%w, got %d", bench.ErrInvalidRepeat, c.Repeat)
	}
	if c.Repetitions < 1 {
		return fmt.Errorf("repetitions MUST be greater than 0, got %d", c.Repetitions)
	}
	if c.Iterations == 0 && c.MinTime <= 0 {
		return fmt.Errorf("min_time MUST be greater than 0 when iterations are calibrated, got %s", c.MinTime)
	}
	if c.MaxProcs < 0 {
		return fmt.Errorf("max_procs MUST NOT be negative, got %d", c.MaxProcs)
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := c.Metrics(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	if c.Mongo.URI != "" && (c.Mongo.Database == "" || c.Mongo.Collection == "") {
		return errors.New("mongo database and collection are required when uri is set")
	}
	return nil
}

func (c *Config) LockVariants() ([]lock.Variant, error) {
	out := make([]lock.Variant, 0, len(c.Variants))
	for _, s := range c.Variants {
		v, err := lock.ParseVariant(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Metrics returns the pivots to render, nil meaning the writer's default.
func (c *Config) Metrics() ([]report.Metric, error) {
	if c.Metric == "" {
		return nil, nil
	}
	m, err := report.ParseMetric(c.Metric)
	if err != nil {
		return nil, err
	}
	return []report.Metric{m}, nil
}

// OffLadderThreads returns the configured thread counts that are not powers
// of two, in order. They are valid but do not line up with the default
// ladder in pivots.
func (c *Config) OffLadderThreads() []int {
	var out []int
	for _, n := range c.Threads {
		if n > 0 && !math.IsPowerOfTwo(uint64(n)) {
			out = append(out, n)
		}
	}
	return out
}

func (c *Config) Mode() clock.Mode {
	if c.CPUTime {
		return clock.CPU
	}
	return clock.Wall
}

// Descriptors expands the configured matrix. Call Validate first.
func (c *Config) Descriptors() ([]bench.Descriptor, error) {
	variants, err := c.LockVariants()
	if err != nil {
		return nil, err
	}
	return bench.NewMatrix().
		Variants(variants...).
		Threads(c.Threads...).
		Iterations(c.Iterations).
		Repeat(c.Repeat).
		Mode(c.Mode()).
		Build(), nil
}
