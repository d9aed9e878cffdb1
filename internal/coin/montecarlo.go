package coin

import (
	"math"
	"sort"
)

// Stats summarizes integer samples.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// Report is the outcome of a Monte Carlo run over Choose.
type Report struct {
	Runs    int     `json:"runs"`
	Ones    int     `json:"ones"`
	Zeros   int     `json:"zeros"`
	FreqOne float64 `json:"freq_one"`
	Ties    int     `json:"ties"` // calls decided for 0 by an exact tie
	Draws   Stats   `json:"draws"` // draws per call
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	// mean
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// RunMonteCarlo calls ChooseDetailed runs times and summarizes the outcomes.
func (s *Simulator) RunMonteCarlo(runs int) (Report, error) {
	if runs <= 0 {
		return Report{}, nil
	}
	rep := Report{Runs: runs}
	draws := make([]int, runs)
	for i := 0; i < runs; i++ {
		r, err := s.ChooseDetailed()
		if err != nil {
			return Report{}, err
		}
		draws[i] = r.Draws
		if r.Outcome == 1 {
			rep.Ones++
		} else {
			rep.Zeros++
		}
		if r.Tally[0] == r.Tally[1] {
			rep.Ties++
		}
	}
	rep.FreqOne = float64(rep.Ones) / float64(runs)
	rep.Draws = calcStats(draws)
	return rep, nil
}
