package report

import (
	"github.com/tezrry/spinbench/bench"
)

const (
	RunTypeIteration = "iteration"
	RunTypeAggregate = "aggregate"
)

// Run is one entry of the exported benchmark list. Times are per iteration,
// in TimeUnit, following the layout of google-benchmark's JSON reporter so
// the same plotting scripts can read it.
type Run struct {
	Name            string  `json:"name" bson:"name"`
	RunName         string  `json:"run_name" bson:"run_name"`
	RunType         string  `json:"run_type" bson:"run_type"`
	Family          string  `json:"family" bson:"family"`
	Variant         string  `json:"variant" bson:"variant"`
	RepetitionIndex int     `json:"repetition_index" bson:"repetition_index"`
	Threads         int     `json:"threads" bson:"threads"`
	Iterations      int     `json:"iterations" bson:"iterations"`
	Repeat          int     `json:"repeat" bson:"repeat"`
	RealTime        float64 `json:"real_time" bson:"real_time"`
	CPUTime         float64 `json:"cpu_time" bson:"cpu_time"`
	TimeUnit        string  `json:"time_unit" bson:"time_unit"`
	ItemsPerSecond  float64 `json:"items_per_second" bson:"items_per_second"`
	AggregateName   string  `json:"aggregate_name,omitempty" bson:"aggregate_name,omitempty"`
}

// NewRun converts one sample.
func NewRun(s bench.Sample) Run {
	d := s.Descriptor
	return Run{
		Name:            d.Name(),
		RunName:         d.Name(),
		RunType:         RunTypeIteration,
		Family:          d.Family(),
		Variant:         d.Variant.String(),
		RepetitionIndex: s.Repetition,
		Threads:         s.Threads,
		Iterations:      s.Iterations,
		Repeat:          d.Repeat,
		RealTime:        s.WallNsPerIteration(),
		CPUTime:         s.CPUNsPerIteration(),
		TimeUnit:        "ns",
		ItemsPerSecond:  s.Throughput(),
	}
}

// AggregateRuns renders the mean, median and stddev entries of a summary.
// Summaries of a single repetition have none.
func AggregateRuns(sum Summary) []Run {
	if sum.Count < 2 {
		return nil
	}

	base := Run{
		RunName:    sum.Name,
		RunType:    RunTypeAggregate,
		Family:     sum.Family,
		Variant:    sum.Variant,
		Threads:    sum.Threads,
		Iterations: sum.Iterations,
		Repeat:     sum.Repeat,
		TimeUnit:   "ns",
	}

	mean, median, stddev := base, base, base
	mean.Name, mean.AggregateName = sum.Name+"_mean", "mean"
	mean.RealTime, mean.CPUTime, mean.ItemsPerSecond = sum.RealTime.Mean, sum.CPUTime.Mean, sum.Throughput.Mean
	median.Name, median.AggregateName = sum.Name+"_median", "median"
	median.RealTime, median.CPUTime, median.ItemsPerSecond = sum.RealTime.Median, sum.CPUTime.Median, sum.Throughput.Median
	stddev.Name, stddev.AggregateName = sum.Name+"_stddev", "stddev"
	stddev.RealTime, stddev.CPUTime, stddev.ItemsPerSecond = sum.RealTime.Stddev, sum.CPUTime.Stddev, sum.Throughput.Stddev
	return []Run{mean, median, stddev}
}
