package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lineagekit/lineagekit/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, fresh cache hits
	colorYellow = lipgloss.Color("220") // warnings, stale cache hits
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // links
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for entity ids and other emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// cacheStatusStyles colors the cache provenance of a fetched graph.
var cacheStatusStyles = map[pipeline.CacheStatus]lipgloss.Style{
	pipeline.CacheFresh: lipgloss.NewStyle().Foreground(colorGreen),
	pipeline.CacheStale: lipgloss.NewStyle().Foreground(colorYellow),
	pipeline.CacheMiss:  lipgloss.NewStyle().Foreground(colorGray),
}

// =============================================================================
// Status Output
// =============================================================================

// uiOut receives human-facing status lines. Graph data never goes here
// unless it is also stdout, and then only after the data has been written.
var uiOut io.Writer = os.Stdout

func printIcon(icon string, color lipgloss.Color, msg string) {
	fmt.Fprintln(uiOut, lipgloss.NewStyle().Foreground(color).Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printIcon("✓", colorGreen, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printIcon("✗", colorRed, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printIcon("!", colorYellow, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printIcon("›", colorGray, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path an output was written to.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// printStats prints graph size and cache provenance on one line,
// e.g. "12 nodes · 14 edges · stale (7m3s old)".
func printStats(nodeCount, edgeCount int, info pipeline.CacheInfo) {
	fmt.Fprintln(uiOut, "  "+statsLine(nodeCount, edgeCount, info, time.Now()))
}

func statsLine(nodeCount, edgeCount int, info pipeline.CacheInfo, now time.Time) string {
	sep := StyleDim.Render(" · ")
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)),
	}

	if info.Status != "" {
		status := string(info.Status)
		if info.Status != pipeline.CacheMiss && !info.FetchedAt.IsZero() {
			status += fmt.Sprintf(" (%s old)", info.Age(now).Round(time.Second))
		}
		parts = append(parts, cacheStatusStyles[info.Status].Render(status))
	}
	return strings.Join(parts, sep)
}
