package pipeline

import (
	"fmt"

	"github.com/fatih/color"
)

// Human-facing progress lines, separate from the slog diagnostics.

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
)

func reportItem(idx, total int, id, title string) {
	if len(title) > 60 {
		title = title[:60]
	}
	fmt.Printf("\n[%d/%d] Processing: %s - %s...\n", idx, total, id, title)
}

func reportSkip(reason string) {
	fmt.Printf("  %s %s\n", failMark, reason)
}

func reportFail(reason string) {
	fmt.Printf("  %s %s\n", failMark, reason)
}

func reportDone(receiver, sentiment, confidence string) {
	fmt.Printf("  %s %s (%s, %s confidence)\n", okMark, receiver, sentiment, confidence)
}
