package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the roadtest banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"                     _ _            _   ", "#34d399"},
		{"  _ __ ___   __ _  __| | |_ ___  ___| |_ ", "#2dd4bf"},
		{" | '__/ _ \\ / _` |/ _` | __/ _ \\/ __| __|", "#22d3ee"},
		{" | | | (_) | (_| | (_| | ||  __/\\__ \\ |_ ", "#38bdf8"},
		{" |_|  \\___/ \\__,_|\\__,_|\\__\\___||___/\\__|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
