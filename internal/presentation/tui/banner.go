package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs an ASCII art banner with the running version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Teal-to-blue gradient.
	lines := []struct {
		text  string
		color string
	}{
		{` __     ___     _       `, "#2dd4bf"},
		{` \ \   / (_)___(_) ___  `, "#22d3ee"},
		{`  \ \ / /| / __| |/ _ \ `, "#38bdf8"},
		{`   \ V / | \__ \ | (_) |`, "#60a5fa"},
		{`    \_/  |_|___/_|\___/ `, "#818cf8"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Printf("    MCP bridge %s\n", strings.TrimSpace(version))
	fmt.Println()
}
