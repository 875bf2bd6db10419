package style

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NewColoredTableStyle draws the rounded box with a bold title and a red
// header, matching the red nodes of the tree graph.
func NewColoredTableStyle() *table.Style {
	style := table.StyleRounded
	style.Name = "ColoredRounded"
	style.Title.Colors = text.Colors{text.FgHiWhite, text.Bold}
	style.Color.Header = text.Colors{text.FgHiRed, text.Bold}
	style.Color.RowAlternate = text.Colors{text.FgHiBlack}
	return &style
}

// NewPlainTableStyle is the rounded box without colors, for output that is not
// a terminal.
func NewPlainTableStyle() *table.Style {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	return &style
}

// NewTable creates a table writer that renders to w with the given title and
// header.
func NewTable(w io.Writer, title string, colored bool, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row(header))

	if colored {
		t.SetStyle(*NewColoredTableStyle())
	} else {
		t.SetStyle(*NewPlainTableStyle())
	}

	return t
}
