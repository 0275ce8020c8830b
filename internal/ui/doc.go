// Package ui provides the terminal feed screen for feedsync.
//
// # Architecture Overview
//
// The screen is a Bubble Tea program. It never owns feed data: the
// feed.Engine in the session is the single writer, and the model keeps a
// render copy that it refreshes from hub events. Blocking work (page loads,
// reaction writes, clipboard and log reads) runs inside tea.Cmd functions so
// the render loop stays responsive.
//
// # Package Structure
//
//   - app.go: Options, Model, Init/Update/View and the Run entry point
//   - messages.go: message types and the commands that produce them
//   - feed.go: hub event handling, cursor movement, prefetch and row rendering
//   - header.go: status bar, command bar and footer
//   - logs.go: the log pane backed by logtail
//   - help.go: the keyboard shortcut overlay
//   - keys.go, layout.go, theme.go, style_helpers.go, strings.go: bindings,
//     sizing constants, color themes and text helpers
//
// # Event Flow
//
//  1. New subscribes to the session hub; Init arms waitForEvent and starts
//     the first refresh
//  2. Each hub event arrives as hubEventMsg, is folded into the model and
//     waitForEvent is re-armed so exactly one reader is outstanding
//  3. Moving the cursor reports the visible range to the session viewport and
//     asks the engine to prefetch when the bottom comes into view
//  4. Selection mode suspends incoming updates; leaving it restores the
//     captured scroll position before the held updates are applied
//
// # Key Bindings
//
//   - j/k, g/G, pgup/pgdn: Navigate
//   - r: Refresh
//   - l: Toggle the default reaction; 1/2/3 pick like/love/laugh
//   - space: Enter selection mode or toggle the current row
//   - y: Copy selected ids (or the current id) to the clipboard
//   - esc: Leave selection mode or close the log pane
//   - L: Toggle the log pane
//   - T: Cycle themes (saved to prefs)
//   - ?: Help
//   - q or Ctrl+C: Exit
package ui
