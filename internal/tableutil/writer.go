package tableutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/liggitt/tabwriter"
)

// New creates a tabwriter with gitopen's default spacing settings.
func New(out io.Writer, stripEscape bool) *tabwriter.Writer {
	var flags uint
	if stripEscape {
		flags = tabwriter.StripEscape
	}
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', flags)
}

// PrintHeaders writes a tab-separated header row unless disabled.
func PrintHeaders(w io.Writer, noHeaders bool, headers ...string) error {
	if noHeaders {
		return nil
	}
	return PrintRow(w, headers...)
}

// PrintRow writes cells as one tab-separated row. Empty cells print as "-".
func PrintRow(w io.Writer, cells ...string) error {
	out := make([]string, len(cells))
	for i, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			cell = "-"
		}
		out[i] = cell
	}
	_, err := fmt.Fprintln(w, strings.Join(out, "\t"))
	return err
}
