package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the author column and
	// reaction labels are dropped.
	LayoutCompactWidth = 80

	// LayoutWideWidth is the minimum width to show timestamps on each row.
	LayoutWideWidth = 120
)

// Row geometry.
const (
	authorColumnWidth = 14
	timeColumnWidth   = 6
	chromeLines       = 3 // header, command bar and footer
)

// Log pane limits.
const (
	// LogTailLines is how many trailing log lines the pane reads.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultUIInterval is the header and log pane refresh interval.
	DefaultUIInterval = time.Second

	// flashDuration is how long a transient footer message stays.
	flashDuration = 3 * time.Second
)
