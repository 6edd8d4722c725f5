package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner with a subtle teal gradient.
func PrintBanner() {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`                       _      `, "#2dd4bf"},
		{`  ___  ___ ___  _ __ (_) ___ `, "#34d399"},
		{` / __|/ __/ _ \| '_ \| |/ __|`, "#4ade80"},
		{` \__ \ (_|  __/| | | | | (__ `, "#a3e635"},
		{` |___/\___\___||_| |_|_|\___|`, "#facc15"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
}
