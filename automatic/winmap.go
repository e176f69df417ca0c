package automatic

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/chomp/board"
	"github.com/domino14/chomp/oracle"
)

// WinMap is the oracle's answer for every poison square of one bar size.
// Grid is indexed [poisonRow][poisonColumn].
type WinMap struct {
	Rows      int
	Columns   int
	Grid      [][]oracle.Order
	Anomalies int
	Nodes     uint64
	Elapsed   time.Duration
}

// BuildWinMap runs the oracle over every poison square of a rows x columns
// bar. One pair of tables serves the whole map.
func BuildWinMap(ctx context.Context, rows, columns int, opts oracle.Options) (*WinMap, error) {
	// Validate the dimensions once up front.
	if _, err := board.NewBar(rows, columns, 0, 0); err != nil {
		return nil, err
	}
	tstart := time.Now()
	o := oracle.New(opts)
	wm := &WinMap{Rows: rows, Columns: columns, Grid: make([][]oracle.Order, rows)}
	for pr := 0; pr < rows; pr++ {
		wm.Grid[pr] = make([]oracle.Order, columns)
		for pc := 0; pc < columns; pc++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			b, err := board.NewBar(rows, columns, pr, pc)
			if err != nil {
				return nil, err
			}
			d, err := o.Decide(b)
			if err != nil {
				return nil, err
			}
			wm.Grid[pr][pc] = d.Order
			wm.Nodes += d.Nodes
			if d.Anomalous {
				wm.Anomalies++
			}
		}
	}
	wm.Elapsed = time.Since(tstart)
	return wm, nil
}

// Count returns how many poison squares got the given order.
func (wm *WinMap) Count(order oracle.Order) int {
	return lo.SumBy(wm.Grid, func(row []oracle.Order) int {
		return lo.Count(row, order)
	})
}

func (wm *WinMap) rowStrings() []string {
	return lo.Map(wm.Grid, func(row []oracle.Order, _ int) string {
		return string(lo.Map(row, func(o oracle.Order, _ int) byte {
			return o.Symbol()
		}))
	})
}

// String draws the map one poison row per line, F where moving first wins
// and S where moving second does.
func (wm *WinMap) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d\n", wm.Rows, wm.Columns)
	for _, row := range wm.rowStrings() {
		sb.WriteString(strings.Join(strings.Split(row, ""), " "))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "first: %d  second: %d\n", wm.Count(oracle.MoveFirst),
		wm.Count(oracle.MoveSecond))
	return sb.String()
}

type winMapYAML struct {
	Rows      int      `yaml:"rows"`
	Columns   int      `yaml:"columns"`
	Grid      []string `yaml:"grid"`
	First     int      `yaml:"first"`
	Second    int      `yaml:"second"`
	Anomalies int      `yaml:"anomalies"`
	Nodes     uint64   `yaml:"nodes"`
}

func (wm *WinMap) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(winMapYAML{
		Rows:      wm.Rows,
		Columns:   wm.Columns,
		Grid:      wm.rowStrings(),
		First:     wm.Count(oracle.MoveFirst),
		Second:    wm.Count(oracle.MoveSecond),
		Anomalies: wm.Anomalies,
		Nodes:     wm.Nodes,
	})
	if err != nil {
		return err
	}
	return enc.Close()
}
