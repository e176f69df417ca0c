package board

import (
	"fmt"
	"strings"
)

const endMarker = "<-- END -->"

// ToDisplayText renders the bar one row per line, '#' for a plain square and
// 'P' for the poison, followed by an end marker line.
func (b Bar) ToDisplayText() string {
	var sb strings.Builder
	for row := uint16(0); row < b.rows; row++ {
		for column := uint16(0); column < b.columns; column++ {
			if row == b.poisonRow && column == b.poisonColumn {
				sb.WriteByte('P')
			} else {
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(endMarker)
	sb.WriteByte('\n')
	return sb.String()
}

// ToAnnotatedText is ToDisplayText with the cut locations numbered along the
// top and left edges, for people entering moves by hand. Only the last digit
// of each location is shown on the top edge.
func (b Bar) ToAnnotatedText() string {
	var sb strings.Builder
	sb.WriteString("    ")
	for column := 1; column < int(b.columns); column++ {
		fmt.Fprintf(&sb, " %d", column%10)
	}
	sb.WriteByte('\n')
	for row := 0; row < int(b.rows); row++ {
		if row > 0 {
			fmt.Fprintf(&sb, "%3d ", row)
		} else {
			sb.WriteString("    ")
		}
		for column := 0; column < int(b.columns); column++ {
			if column > 0 {
				sb.WriteByte(' ')
			}
			if row == int(b.poisonRow) && column == int(b.poisonColumn) {
				sb.WriteByte('P')
			} else {
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(endMarker)
	sb.WriteByte('\n')
	return sb.String()
}
