package report

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
)

type Metric string

const (
	RealTime Metric = "real_time"
	CPUTime  Metric = "cpu_time"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case RealTime, CPUTime:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

func (m Metric) of(s Summary) float64 {
	if m == CPUTime {
		return s.CPUTime.Mean
	}
	return s.RealTime.Mean
}

// Table is a threads × family pivot of one metric. Rows are sorted by
// thread count, columns by family name. A cell without a trial is NaN.
type Table struct {
	Metric  Metric
	Columns []string
	Rows    []Row
}

type Row struct {
	Threads int
	Values  []float64
}

// Pivot lays summaries out with one row per thread count and one column
// per trial family, taking the mean of metric.
func Pivot(sums []Summary, metric Metric) Table {
	rows := treemap.NewWithIntComparator()
	cols := treeset.NewWithStringComparator()

	for _, s := range sums {
		cols.Add(s.Family)
		cells, ok := rows.Get(s.Threads)
		if !ok {
			cells = make(map[string]float64)
			rows.Put(s.Threads, cells)
		}
		cells.(map[string]float64)[s.Family] = metric.of(s)
	}

	t := Table{Metric: metric, Columns: make([]string, 0, cols.Size())}
	for _, c := range cols.Values() {
		t.Columns = append(t.Columns, c.(string))
	}

	it := rows.Iterator()
	for it.Next() {
		cells := it.Value().(map[string]float64)
		row := Row{Threads: it.Key().(int), Values: make([]float64, len(t.Columns))}
		for i, c := range t.Columns {
			v, ok := cells[c]
			if !ok {
				v = math.NaN()
			}
			row.Values[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
