package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"scribe/internal/batch"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderStats prints pass counters, as a table on a terminal and as
// plain lines when the output is piped.
func renderStats(out io.Writer, title string, stats batch.Stats) {
	if !writerIsTerminal(out) {
		fmt.Fprintf(out, "%s: total=%d processed=%d skipped_empty=%d skipped_missing=%d failed=%d\n",
			title, stats.Total, stats.Processed, stats.SkippedEmpty, stats.SkippedMissing, stats.Failed)
		return
	}

	fmt.Fprintln(out, title)
	fmt.Fprintln(out, renderTable(
		[]string{"Total", "Processed", "Skipped empty", "Skipped missing", "Failed"},
		[][]string{{
			strconv.Itoa(stats.Total),
			strconv.Itoa(stats.Processed),
			strconv.Itoa(stats.SkippedEmpty),
			strconv.Itoa(stats.SkippedMissing),
			strconv.Itoa(stats.Failed),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
	))
}

func writerIsTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
