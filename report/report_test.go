package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tezrry/spinbench/bench"
	"github.com/tezrry/spinbench/clock"
	"github.com/tezrry/spinbench/container/lock"
)

func sample(v lock.Variant, threads, rep int, wall time.Duration) bench.Sample {
	d := bench.Descriptor{Variant: v, Threads: threads, Iterations: 1000, Repeat: 1, Mode: clock.Wall}
	return bench.Sample{
		Descriptor: d,
		Repetition: rep,
		Wall:       wall,
		CPU:        2 * wall,
		Threads:    threads,
		Iterations: 1000,
		Ops:        d.Ops(),
		Entries:    uint64(d.Ops()),
	}
}

func testSamples() []bench.Sample {
	return []bench.Sample{
		sample(lock.NoBackoff, 1, 0, 10*time.Microsecond),
		sample(lock.NoBackoff, 1, 1, 20*time.Microsecond),
		sample(lock.NoBackoff, 1, 2, 30*time.Microsecond),
		sample(lock.NoBackoff, 4, 0, 100*time.Microsecond),
		sample(lock.Baseline, 1, 0, 40*time.Microsecond),
	}
}

func TestAggregate(t *testing.T) {
	sums := Aggregate(testSamples())
	require.Len(t, sums, 3)

	s := sums[0]
	require.Equal(t, "HeavyContention<spin>/real_time/threads:1", s.Name)
	require.Equal(t, "HeavyContention<spin>/real_time", s.Family)
	require.Equal(t, "spin", s.Variant)
	require.Equal(t, 3, s.Count)
	require.Equal(t, 1000, s.Iterations)
	assert.InDelta(t, 20.0, s.RealTime.Mean, 1e-9)
	assert.InDelta(t, 20.0, s.RealTime.Median, 1e-9)
	assert.InDelta(t, 10.0, s.RealTime.Stddev, 1e-9)
	assert.InDelta(t, 10.0, s.RealTime.Min, 1e-9)
	assert.InDelta(t, 30.0, s.RealTime.Max, 1e-9)
	assert.InDelta(t, 40.0, s.CPUTime.Mean, 1e-9)

	require.Equal(t, 4, sums[1].Threads)
	require.Equal(t, 1, sums[1].Count)
	require.Zero(t, sums[1].RealTime.Stddev)
	require.Equal(t, "mutex", sums[2].Variant)

	require.Empty(t, Aggregate(nil))
}

func TestPivot(t *testing.T) {
	tbl := Pivot(Aggregate(testSamples()), RealTime)
	require.Equal(t, RealTime, tbl.Metric)
	require.Equal(t, []string{"HeavyContention<mutex>/real_time", "HeavyContention<spin>/real_time"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)

	require.Equal(t, 1, tbl.Rows[0].Threads)
	assert.InDelta(t, 40.0, tbl.Rows[0].Values[0], 1e-9)
	assert.InDelta(t, 20.0, tbl.Rows[0].Values[1], 1e-9)

	require.Equal(t, 4, tbl.Rows[1].Threads)
	require.True(t, math.IsNaN(tbl.Rows[1].Values[0]))
	assert.InDelta(t, 100.0, tbl.Rows[1].Values[1], 1e-9)

	cpu := Pivot(Aggregate(testSamples()), CPUTime)
	assert.InDelta(t, 80.0, cpu.Rows[0].Values[0], 1e-9)
}

func TestParse(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	require.Equal(t, FormatCSV, f)
	_, err = ParseFormat("html")
	require.Error(t, err)

	m, err := ParseMetric("cpu_time")
	require.NoError(t, err)
	require.Equal(t, CPUTime, m)
	_, err = ParseMetric("wall")
	require.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Aggregate(testSamples())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[0], "Benchmark"))
	require.True(t, strings.HasPrefix(lines[2], "HeavyContention<spin>/real_time/threads:1"))
	require.Contains(t, lines[2], "20.0 ns")
	require.Contains(t, lines[2], "40.0 ns")
}

func TestHumanize(t *testing.T) {
	require.Equal(t, "1.50G", humanize(1.5e9))
	require.Equal(t, "2.00M", humanize(2e6))
	require.Equal(t, "3.00k", humanize(3e3))
	require.Equal(t, "4.00", humanize(4))
}

func TestWriteCSV(t *testing.T) {
	sums := Aggregate(testSamples())
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Pivot(sums, RealTime), Pivot(sums, CPUTime)))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 6)
	require.Equal(t, []string{"metric", "threads", "HeavyContention<mutex>/real_time", "HeavyContention<spin>/real_time"}, recs[0])
	require.Equal(t, []string{"real_time", "1", "40.000", "20.000"}, recs[1])
	require.Equal(t, []string{"real_time", "4", "", "100.000"}, recs[2])
	require.Equal(t, "metric", recs[3][0])
	require.Equal(t, []string{"cpu_time", "1", "80.000", "40.000"}, recs[4])
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument(testSamples())
	// 5 iteration runs + 3 aggregates for the three-repetition trial
	require.Len(t, doc.Benchmarks, 8)

	names := make([]string, len(doc.Benchmarks))
	for i, r := range doc.Benchmarks {
		names[i] = r.Name
	}
	require.Equal(t, []string{
		"HeavyContention<spin>/real_time/threads:1",
		"HeavyContention<spin>/real_time/threads:1",
		"HeavyContention<spin>/real_time/threads:1",
		"HeavyContention<spin>/real_time/threads:1_mean",
		"HeavyContention<spin>/real_time/threads:1_median",
		"HeavyContention<spin>/real_time/threads:1_stddev",
		"HeavyContention<spin>/real_time/threads:4",
		"HeavyContention<mutex>/real_time/threads:1",
	}, names)

	mean := doc.Benchmarks[3]
	require.Equal(t, RunTypeAggregate, mean.RunType)
	require.Equal(t, "mean", mean.AggregateName)
	assert.InDelta(t, 20.0, mean.RealTime, 1e-9)

	first := doc.Benchmarks[0]
	require.Equal(t, RunTypeIteration, first.RunType)
	require.Equal(t, 1, first.Threads)
	require.Equal(t, "ns", first.TimeUnit)
	assert.InDelta(t, 10.0, first.RealTime, 1e-9)
	assert.InDelta(t, 1e8, first.ItemsPerSecond, 1)

	require.NotEmpty(t, doc.Context.GOARCH)
	require.Positive(t, doc.Context.NumCPUs)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewDocument(testSamples())))

	var doc Document
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Benchmarks, 8)
	require.Contains(t, buf.String(), `"real_time"`)
	require.Contains(t, buf.String(), `"benchmarks"`)
}

func TestWriterFormats(t *testing.T) {
	for _, f := range []Format{FormatText, FormatCSV, FormatJSON} {
		var buf bytes.Buffer
		w := NewWriter(&buf, f)
		for _, s := range testSamples() {
			require.NoError(t, w.Record(s))
		}
		require.Len(t, w.Samples(), 5)
		require.NoError(t, w.Flush(context.Background()))
		require.Contains(t, buf.String(), "HeavyContention<spin>", f)
		require.NoError(t, w.Close())
	}
}

func TestWriterCSVMetrics(t *testing.T) {
	rowsOf := func(metrics ...Metric) map[string]int {
		var buf bytes.Buffer
		w := NewWriter(&buf, FormatCSV, metrics...)
		for _, s := range testSamples() {
			require.NoError(t, w.Record(s))
		}
		require.NoError(t, w.Flush(context.Background()))

		rows := make(map[string]int)
		for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
			metric, _, _ := strings.Cut(line, ",")
			rows[metric]++
		}
		return rows
	}

	both := rowsOf()
	require.Equal(t, 2, both["metric"])
	require.Positive(t, both[string(RealTime)])
	require.Equal(t, both[string(RealTime)], both[string(CPUTime)])

	cpu := rowsOf(CPUTime)
	require.Equal(t, 1, cpu["metric"])
	require.Zero(t, cpu[string(RealTime)])
	require.Equal(t, both[string(CPUTime)], cpu[string(CPUTime)])
}

type fakeKafka struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeKafka) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeKafka) Close() error {
	f.closed = true
	return nil
}

func TestKafkaExporter(t *testing.T) {
	_, err := NewKafkaExporter(nil, "spinbench")
	require.Error(t, err)
	_, err = NewKafkaExporter([]string{"localhost:9092"}, "")
	require.Error(t, err)

	ke, err := NewKafkaExporter([]string{"localhost:9092"}, "spinbench")
	require.NoError(t, err)
	require.NotNil(t, ke.w)

	fk := &fakeKafka{}
	e := &KafkaExporter{w: fk}
	for _, s := range testSamples() {
		require.NoError(t, e.Record(s))
	}
	require.Empty(t, fk.msgs)
	require.NoError(t, e.Flush(context.Background()))
	require.Len(t, fk.msgs, 5)
	require.Equal(t, "HeavyContention<spin>/real_time/threads:1", string(fk.msgs[0].Key))

	var run Run
	require.NoError(t, sonic.Unmarshal(fk.msgs[3].Value, &run))
	require.Equal(t, 4, run.Threads)

	require.NoError(t, e.Flush(context.Background()))
	require.Len(t, fk.msgs, 5)

	fk.err = errors.New("broker down")
	require.NoError(t, e.Record(testSamples()[0]))
	require.ErrorIs(t, e.Flush(context.Background()), fk.err)

	require.NoError(t, e.Close())
	require.True(t, fk.closed)
}

func TestMongoExporter(t *testing.T) {
	var inserted []interface{}
	e := &MongoExporter{
		meta: NewContext(),
		insert: func(_ context.Context, docs []interface{}) error {
			inserted = append(inserted, docs...)
			return nil
		},
	}

	require.NoError(t, e.Flush(context.Background()))
	for _, s := range testSamples() {
		require.NoError(t, e.Record(s))
	}
	require.NoError(t, e.Flush(context.Background()))
	require.Len(t, inserted, 5)

	doc := inserted[4].(mongoRun)
	require.Equal(t, "mutex", doc.Variant)
	require.Equal(t, e.meta, doc.Context)
	require.NoError(t, e.Close())
}

type failingExporter struct {
	Collector
}

func (failingExporter) Flush(context.Context) error { return errors.New("flush failed") }
func (failingExporter) Close() error                { return nil }

func TestMulti(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatText)
	f := &failingExporter{}
	m := Multi{w, f}

	for _, s := range testSamples() {
		require.NoError(t, m.Record(s))
	}
	require.Len(t, f.Samples(), 5)

	err := m.Flush(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "flush failed")
	require.NotZero(t, buf.Len())
	require.NoError(t, m.Close())
}
