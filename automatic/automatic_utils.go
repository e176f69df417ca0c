package automatic

// Batch drivers: sweep the oracle over every bar up to a size limit.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/oracle"
	"github.com/domino14/chomp/stats"
)

var (
	SweepCounter *expvar.Int
	// IsSweeping is 1 while a sweep runs. Sweep claims it with a
	// compare-and-swap.
	IsSweeping atomic.Int64
)

func init() {
	SweepCounter = expvar.NewInt("sweepCounter")
	expvar.Publish("isSweeping", expvar.Func(func() any {
		return IsSweeping.Load()
	}))
}

var ErrSweepRunning = errors.New("a sweep is already running, please wait till complete")

type SweepOptions struct {
	Oracle  oracle.Options
	Threads int
}

// CellResult is the oracle's answer for one bar.
type CellResult struct {
	Rows         int     `yaml:"rows"`
	Columns      int     `yaml:"columns"`
	PoisonRow    int     `yaml:"poison_row"`
	PoisonColumn int     `yaml:"poison_column"`
	Order        string  `yaml:"order"`
	FirstScore   float32 `yaml:"first_score"`
	Anomalous    bool    `yaml:"anomalous,omitempty"`
	Nodes        uint64  `yaml:"nodes"`
}

type SweepResult struct {
	MaxRows    int           `yaml:"max_rows"`
	MaxColumns int           `yaml:"max_columns"`
	First      int           `yaml:"first"`
	Second     int           `yaml:"second"`
	Anomalies  int           `yaml:"anomalies"`
	Elapsed    time.Duration `yaml:"-"`
	Cells      []CellResult  `yaml:"cells"`
	// NodeStats holds the positions searched per bar.
	NodeStats *stats.Sample `yaml:"-"`
}

type sweepJob struct {
	idx int
	bar board.Bar
}

func sweepBars(maxRows, maxColumns int) ([]board.Bar, error) {
	var bars []board.Bar
	for r := 1; r <= maxRows; r++ {
		for c := 1; c <= maxColumns; c++ {
			for pr := 0; pr < r; pr++ {
				for pc := 0; pc < c; pc++ {
					b, err := board.NewBar(r, c, pr, pc)
					if err != nil {
						return nil, err
					}
					bars = append(bars, b)
				}
			}
		}
	}
	return bars, nil
}

// Sweep asks the oracle about every bar with up to maxRows rows and
// maxColumns columns, for every poison square. Each worker answers whole
// queries with its own oracle; the tables are cleared between queries.
func Sweep(ctx context.Context, maxRows, maxColumns int, opts SweepOptions,
	reporter Reporter) (*SweepResult, error) {

	if maxRows < 1 || maxColumns < 1 {
		return nil, fmt.Errorf("%w: sweep limits must be positive (%d x %d)",
			board.ErrInvalidBar, maxRows, maxColumns)
	}
	if !IsSweeping.CompareAndSwap(0, 1) {
		return nil, ErrSweepRunning
	}
	defer IsSweeping.Store(0)
	SweepCounter.Set(0)

	if reporter == nil {
		reporter = NopReporter{}
	}
	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}

	bars, err := sweepBars(maxRows, maxColumns)
	if err != nil {
		return nil, err
	}
	total := len(bars)
	log.Debug().Msgf("Starting sweep of %v positions, %v threads", total, threads)

	tstart := time.Now()
	reporter.Start(total)
	locked := &lockedReporter{r: reporter}
	cells := make([]CellResult, total)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan sweepJob, 100)

	g.Go(func() error {
		defer close(jobs)
		for i, b := range bars {
			select {
			case jobs <- sweepJob{idx: i, bar: b}:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return gctx.Err()
			}
		}
		return nil
	})

	for t := 0; t < threads; t++ {
		g.Go(func() error {
			o := oracle.New(opts.Oracle)
			for j := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				d, err := o.Decide(j.bar)
				if err != nil {
					return err
				}
				// every job owns its own index, so no lock is needed here
				cells[j.idx] = CellResult{
					Rows:         j.bar.Rows(),
					Columns:      j.bar.Columns(),
					PoisonRow:    j.bar.PoisonRow(),
					PoisonColumn: j.bar.PoisonColumn(),
					Order:        d.Order.String(),
					FirstScore:   d.FirstScore,
					Anomalous:    d.Anomalous,
					Nodes:        d.Nodes,
				}
				SweepCounter.Add(1)
				locked.tick(total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &SweepResult{
		MaxRows:    maxRows,
		MaxColumns: maxColumns,
		Cells:      cells,
		NodeStats:  &stats.Sample{},
	}
	res.First = lo.CountBy(cells, func(c CellResult) bool {
		return c.Order == oracle.MoveFirst.String()
	})
	res.Second = len(cells) - res.First
	res.Anomalies = lo.CountBy(cells, func(c CellResult) bool { return c.Anomalous })
	for _, c := range cells {
		res.NodeStats.Push(float64(c.Nodes))
	}
	res.Elapsed = time.Since(tstart)
	reporter.Finish(res)
	return res, nil
}

// BySize groups the results by bar size, keyed "RxC".
func (r *SweepResult) BySize() map[string][]CellResult {
	return lo.GroupBy(r.Cells, func(c CellResult) string {
		return fmt.Sprintf("%dx%d", c.Rows, c.Columns)
	})
}

// Summary is a short text report of the sweep, with a histogram of the
// positions searched per bar.
func (r *SweepResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Swept %d positions up to %dx%d in %v\n", len(r.Cells),
		r.MaxRows, r.MaxColumns, r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&sb, "Move first: %d  Move second: %d  Anomalies: %d\n",
		r.First, r.Second, r.Anomalies)
	if r.NodeStats != nil {
		sb.WriteString(r.NodeStats.Summary("nodes"))
		if err := r.NodeStats.WriteHistogram(&sb, 10, 40); err != nil {
			log.Err(err).Msg("histogram-failed")
		}
	}
	return sb.String()
}

func (r *SweepResult) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
