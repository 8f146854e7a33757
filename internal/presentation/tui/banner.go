package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the bitrig ASCII banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{" _     _ _        _       ", "#818cf8"},
		{"| |__ (_) |_ _ __(_) __ _ ", "#a78bfa"},
		{"| '_ \\| | __| '__| |/ _` |", "#c084fc"},
		{"| |_) | | |_| |  | | (_| |", "#e879f9"},
		{"|_.__/|_|\\__|_|  |_|\\__, |", "#f472b6"},
		{"                    |___/ ", "#fb7185"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
