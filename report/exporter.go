// Package report is the measurement side of spinbench: it collects samples,
// folds repetitions into statistics and exports them as console tables, CSV
// pivots, JSON documents, Kafka messages or MongoDB documents.
package report

import (
	"context"
	"errors"
	"io"

	"github.com/tezrry/spinbench/bench"
)

// Exporter is a bench.Sink that may buffer until Flush.
type Exporter interface {
	bench.Sink
	Flush(ctx context.Context) error
	Close() error
}

// Collector keeps every sample in memory.
type Collector struct {
	samples []bench.Sample
}

func (c *Collector) Record(s bench.Sample) error {
	c.samples = append(c.samples, s)
	return nil
}

func (c *Collector) Samples() []bench.Sample {
	return c.samples
}

func (c *Collector) Summaries() []Summary {
	return Aggregate(c.samples)
}

// Writer renders everything it collected to w in one format on Flush.
type Writer struct {
	Collector
	w       io.Writer
	format  Format
	metrics []Metric
}

// NewWriter renders to w. metrics picks the CSV pivots, in order; none
// means real_time then cpu_time.
func NewWriter(w io.Writer, format Format, metrics ...Metric) *Writer {
	if len(metrics) == 0 {
		metrics = []Metric{RealTime, CPUTime}
	}
	return &Writer{w: w, format: format, metrics: metrics}
}

func (w *Writer) Flush(context.Context) error {
	switch w.format {
	case FormatCSV:
		sums := w.Summaries()
		tables := make([]Table, len(w.metrics))
		for i, m := range w.metrics {
			tables[i] = Pivot(sums, m)
		}
		return WriteCSV(w.w, tables...)
	case FormatJSON:
		return WriteJSON(w.w, NewDocument(w.Samples()))
	default:
		return WriteText(w.w, w.Summaries())
	}
}

// Close closes the underlying writer if it is an io.Closer.
func (w *Writer) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Multi fans every call out to all exporters.
type Multi []Exporter

func (m Multi) Record(s bench.Sample) error {
	for _, e := range m {
		if err := e.Record(s); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Flush(ctx context.Context) error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.Flush(ctx))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.Close())
	}
	return errors.Join(errs...)
}
