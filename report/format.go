package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/tezrry/spinbench/bench"
)

type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// WriteText prints the console table: one line per summary with mean
// per-iteration times, the calibrated iteration count and throughput.
func WriteText(w io.Writer, sums []Summary) error {
	width := len("Benchmark")
	for _, s := range sums {
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	header := fmt.Sprintf("%-*s %15s %15s %12s %12s %14s\n",
		width, "Benchmark", "Time", "CPU", "Iterations", "Repetitions", "Throughput")
	_, _ = buf.WriteString(header)
	_, _ = buf.WriteString(strings.Repeat("-", len(header)-1))
	_ = buf.WriteByte('\n')

	for _, s := range sums {
		_, _ = fmt.Fprintf(buf, "%-*s %12.1f ns %12.1f ns %12d %12d %12s/s\n",
			width, s.Name, s.RealTime.Mean, s.CPUTime.Mean, s.Iterations, s.Count,
			humanize(s.Throughput.Mean))
	}

	_, err := buf.WriteTo(w)
	return err
}

func humanize(v float64) string {
	switch {
	case v >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', 2, 64) + "G"
	case v >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 2, 64) + "M"
	case v >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 2, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// WriteCSV writes each table as a block of rows headed by
// metric,threads,<families...>. Missing cells are left empty.
func WriteCSV(w io.Writer, tables ...Table) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	cw := csv.NewWriter(buf)
	for _, t := range tables {
		header := append([]string{"metric", "threads"}, t.Columns...)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, r := range t.Rows {
			rec := make([]string, 0, len(header))
			rec = append(rec, string(t.Metric), strconv.Itoa(r.Threads))
			for _, v := range r.Values {
				if math.IsNaN(v) {
					rec = append(rec, "")
					continue
				}
				rec = append(rec, strconv.FormatFloat(v, 'f', 3, 64))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	_, err := buf.WriteTo(w)
	return err
}

// Context describes the machine a run was taken on.
type Context struct {
	Date       string `json:"date" bson:"date"`
	HostName   string `json:"host_name" bson:"host_name"`
	NumCPUs    int    `json:"num_cpus" bson:"num_cpus"`
	GoMaxProcs int    `json:"gomaxprocs" bson:"gomaxprocs"`
	GOOS       string `json:"goos" bson:"goos"`
	GOARCH     string `json:"goarch" bson:"goarch"`
	GoVersion  string `json:"go_version" bson:"go_version"`
}

// Document is the exported JSON file.
type Document struct {
	Context    Context `json:"context"`
	Benchmarks []Run   `json:"benchmarks"`
}

func NewContext() Context {
	host, _ := os.Hostname()
	return Context{
		Date:       time.Now().Format(time.RFC3339),
		HostName:   host,
		NumCPUs:    runtime.NumCPU(),
		GoMaxProcs: runtime.GOMAXPROCS(0),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		GoVersion:  runtime.Version(),
	}
}

// NewDocument lists every sample followed by the aggregates of its
// descriptor once the descriptor's last repetition has been listed.
func NewDocument(samples []bench.Sample) Document {
	doc := Document{Context: NewContext(), Benchmarks: make([]Run, 0, len(samples))}

	sums := Aggregate(samples)
	byName := make(map[string]Summary, len(sums))
	remaining := make(map[string]int, len(sums))
	for _, s := range sums {
		byName[s.Name] = s
		remaining[s.Name] = s.Count
	}

	for _, s := range samples {
		run := NewRun(s)
		doc.Benchmarks = append(doc.Benchmarks, run)
		remaining[run.Name]--
		if remaining[run.Name] == 0 {
			doc.Benchmarks = append(doc.Benchmarks, AggregateRuns(byName[run.Name])...)
		}
	}
	return doc
}

func WriteJSON(w io.Writer, doc Document) error {
	data, err := sonic.ConfigDefault.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
