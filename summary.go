package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteSummary prints one row per page with its outcome.
func WriteSummary(w io.Writer, results []Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Page", "Status", "Cause"})

	failed := 0
	for _, r := range results {
		if r.OK() {
			note := ""
			if r.StatsErr != nil {
				note = "stale data, statistics failed: " + r.StatsErr.Error()
			}
			t.AppendRow(table.Row{r.Page, "ok", note})
			continue
		}
		failed++
		t.AppendRow(table.Row{r.Page, "failed", r.Err.Error()})
	}

	t.AppendFooter(table.Row{"", "failed", failed})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func countFailures(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
