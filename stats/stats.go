package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic keeps a running mean and variance (Welford's algorithm) along
// with the extremes, without storing the values.
type Statistic struct {
	n    int
	last float64
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	s.n++
	if s.n == 1 {
		s.mean = val
		s.m2 = 0
		s.min = val
		s.max = val
		return
	}
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.min = math.Min(s.min, val)
	s.max = math.Max(s.max, val)
}

func (s *Statistic) Mean() float64 {
	if s.n > 0 {
		return s.mean
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Statistic) Min() float64 {
	return s.min
}

func (s *Statistic) Max() float64 {
	return s.max
}

func (s *Statistic) Last() float64 {
	return s.last
}

func (s *Statistic) Iterations() int {
	return s.n
}

// ZVal returns the two-tailed Z-value associated with a specific confidence
// interval. The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return dist.Quantile((1 + confidenceInterval/100) / 2)
}

// ConfidenceInterval returns the half-width of the confidence interval of
// the mean at the given percentage.
func (s *Statistic) ConfidenceInterval(pct float64) float64 {
	return ZVal(pct) * s.StandardError()
}

// Sample is a Statistic that also remembers its values, so that quantiles
// and a histogram can be computed at the end.
type Sample struct {
	Statistic
	values []float64
}

func (s *Sample) Push(val float64) {
	s.Statistic.Push(val)
	s.values = append(s.values, val)
}

// Merge adds every value of o to s.
func (s *Sample) Merge(o *Sample) {
	for _, v := range o.values {
		s.Push(v)
	}
}

func (s *Sample) Values() []float64 {
	return s.values
}

// Quantile returns the empirical p-quantile, p in [0, 1].
func (s *Sample) Quantile(p float64) float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.values))
	copy(sorted, s.values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

func (s *Sample) Histogram(bins int) histogram.Histogram {
	return histogram.Hist(bins, s.values)
}

// WriteHistogram draws a text histogram of the sample to w.
func (s *Sample) WriteHistogram(w io.Writer, bins, width int) error {
	if len(s.values) == 0 {
		_, err := io.WriteString(w, "(no data)\n")
		return err
	}
	return histogram.Fprint(w, s.Histogram(bins), histogram.Linear(width))
}

// Summary is a one-paragraph text description of the sample.
func (s *Sample) Summary(label string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: n=%d mean=%.2f ±%.2f (95%%) stdev=%.2f\n", label,
		s.Iterations(), s.Mean(), s.ConfidenceInterval(95), s.Stdev())
	fmt.Fprintf(&sb, "%s: min=%.0f median=%.0f p90=%.0f max=%.0f\n", label,
		s.Min(), s.Quantile(0.5), s.Quantile(0.9), s.Max())
	return sb.String()
}
