package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

const maxCellWidth = 48

type countRow struct {
	label string
	count int
}

func printCounts(title string, rows []countRow) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	for _, r := range rows {
		t.AppendRow(table.Row{r.label, r.count})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func truncate(s string) string {
	return runewidth.Truncate(s, maxCellWidth, "…")
}
