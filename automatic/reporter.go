package automatic

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Reporter is told about sweep progress. Sweep serialises calls, so
// implementations need no locking of their own.
type Reporter interface {
	Start(total int)
	Progress(done, total int)
	Finish(res *SweepResult)
}

type NopReporter struct{}

func (NopReporter) Start(int)           {}
func (NopReporter) Progress(int, int)   {}
func (NopReporter) Finish(*SweepResult) {}

// LogReporter logs roughly every percent of the sweep.
type LogReporter struct {
	step    int
	started time.Time
}

func (r *LogReporter) Start(total int) {
	r.step = total / 100
	if r.step < 1 {
		r.step = 1
	}
	r.started = time.Now()
	log.Info().Int("positions", total).Msg("sweep-started")
}

func (r *LogReporter) Progress(done, total int) {
	if done%r.step != 0 && done != total {
		return
	}
	log.Info().Int("done", done).Int("total", total).
		Float64("pct", 100*float64(done)/float64(total)).
		Float64("elapsed-s", time.Since(r.started).Seconds()).
		Msg("sweep-progress")
}

func (r *LogReporter) Finish(res *SweepResult) {
	log.Info().Int("first", res.First).Int("second", res.Second).
		Int("anomalies", res.Anomalies).
		Float64("elapsed-s", res.Elapsed.Seconds()).
		Msg("sweep-finished")
}

// lockedReporter serialises calls coming from several workers.
type lockedReporter struct {
	sync.Mutex
	r    Reporter
	done int
}

func (l *lockedReporter) tick(total int) {
	l.Lock()
	defer l.Unlock()
	l.done++
	l.r.Progress(l.done, total)
}
