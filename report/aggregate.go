package report

import (
	"github.com/montanaflynn/stats"

	"github.com/tezrry/spinbench/bench"
)

// Stat summarizes one metric over the repetitions of a trial.
type Stat struct {
	Mean   float64
	Median float64
	Stddev float64
	Min    float64
	Max    float64
}

// Summary folds every repetition of one descriptor.
type Summary struct {
	Name       string
	Family     string
	Variant    string
	Threads    int
	Repeat     int
	Iterations int
	Count      int
	// RealTime and CPUTime are nanoseconds per iteration.
	RealTime   Stat
	CPUTime    Stat
	Throughput Stat
}

// Aggregate groups samples by descriptor name, in order of first
// appearance.
func Aggregate(samples []bench.Sample) []Summary {
	type group struct {
		sum              Summary
		real, cpu, thrpt stats.Float64Data
	}

	var (
		order  []string
		groups = make(map[string]*group)
	)
	for _, s := range samples {
		d := s.Descriptor
		name := d.Name()
		g, ok := groups[name]
		if !ok {
			g = &group{sum: Summary{
				Name:    name,
				Family:  d.Family(),
				Variant: d.Variant.String(),
				Threads: s.Threads,
				Repeat:  d.Repeat,
			}}
			groups[name] = g
			order = append(order, name)
		}

		g.sum.Iterations = s.Iterations
		g.sum.Count++
		g.real = append(g.real, s.WallNsPerIteration())
		g.cpu = append(g.cpu, s.CPUNsPerIteration())
		g.thrpt = append(g.thrpt, s.Throughput())
	}

	out := make([]Summary, 0, len(order))
	for _, name := range order {
		g := groups[name]
		g.sum.RealTime = describe(g.real)
		g.sum.CPUTime = describe(g.cpu)
		g.sum.Throughput = describe(g.thrpt)
		out = append(out, g.sum)
	}
	return out
}

func describe(data stats.Float64Data) Stat {
	if data.Len() == 0 {
		return Stat{}
	}

	var st Stat
	st.Mean, _ = stats.Mean(data)
	st.Median, _ = stats.Median(data)
	st.Min, _ = stats.Min(data)
	st.Max, _ = stats.Max(data)
	if data.Len() > 1 {
		st.Stddev, _ = stats.StandardDeviationSample(data)
	}
	return st
}
