package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	Background string // Outermost background
	Surface    string // Header and footer bars
	FocusBg    string // Log pane

	SelectionBg   string // Cursor row background
	SelectionText string // Cursor row text
	MarkedBg      string // Rows picked in selection mode

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Feed state badge colors, keyed by feed.Kind.String()
	StateColors map[string]string

	// Reaction colors, keyed by reaction kind
	ReactionColors map[string]string
}

// palette is the raw color set a Theme is derived from.
type palette struct {
	bg, surface, focus        string
	sel, selText, marked      string
	text, muted, faint        string
	accent, success, warning  string
	danger, info, loadingMore string
}

func newTheme(name string, p palette) Theme {
	return Theme{
		Name:          name,
		Background:    p.bg,
		Surface:       p.surface,
		FocusBg:       p.focus,
		SelectionBg:   p.sel,
		SelectionText: p.selText,
		MarkedBg:      p.marked,
		Text:          p.text,
		Muted:         p.muted,
		Faint:         p.faint,
		Accent:        p.accent,
		Success:       p.success,
		Warning:       p.warning,
		Danger:        p.danger,
		Info:          p.info,
		StateColors: map[string]string{
			"initial":      p.faint,
			"refreshing":   p.info,
			"loading_more": p.loadingMore,
			"success":      p.success,
			"error":        p.danger,
			"end_of_list":  p.faint,
		},
		ReactionColors: map[string]string{
			"like":  p.accent,
			"love":  p.danger,
			"laugh": p.warning,
		},
	}
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: bar.Foreground(lipgloss.Color(t.Text)),
		Footer: bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:   fg(t.Warning).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		Marked: lipgloss.NewStyle().
			Background(lipgloss.Color(t.MarkedBg)).
			Foreground(lipgloss.Color(t.Text)),

		stateColors:    t.StateColors,
		reactionColors: t.ReactionColors,
		background:     t.Background,
		muted:          t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Marked   lipgloss.Style

	stateColors    map[string]string
	reactionColors map[string]string
	background     string
	muted          string
}

// StateStyle returns the badge style for a feed state name.
func (s Styles) StateStyle(state string) lipgloss.Style {
	color := s.stateColors[state]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// ReactionStyle returns the foreground style for a reaction count.
func (s Styles) ReactionStyle(kind string) lipgloss.Style {
	color := s.reactionColors[kind]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// WithBackground returns a copy whose text and bar styles paint bgColor
// behind the glyphs, so styled runs inside a colored bar do not punch holes
// through it. Row styles keep their own backgrounds.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Footer, &out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	// https://github.com/EdenEast/nightfox.nvim
	"Nightfox": newTheme("Nightfox", palette{
		bg: "#131a24", surface: "#192330", focus: "#29394f",
		sel: "#2b3b51", selText: "#cdcecf", marked: "#1d3a3f",
		text: "#cdcecf", muted: "#738091", faint: "#71839b",
		accent: "#719cd6", success: "#81b29a", warning: "#dbc074",
		danger: "#c94f6d", info: "#63cdcf", loadingMore: "#719cd6",
	}),
	// https://github.com/rebelot/kanagawa.nvim
	"Kanagawa": newTheme("Kanagawa", palette{
		bg: "#16161D", surface: "#1F1F28", focus: "#2A2A37",
		sel: "#2D4F67", selText: "#DCD7BA", marked: "#2B3328",
		text: "#DCD7BA", muted: "#C8C093", faint: "#727169",
		accent: "#7E9CD8", success: "#98BB6C", warning: "#E6C384",
		danger: "#E46876", info: "#7FB4CA", loadingMore: "#7E9CD8",
	}),
	// Tailwind slate and sky
	"Slate": newTheme("Slate", palette{
		bg: "#020617", surface: "#0f172a", focus: "#283548",
		sel: "#0284c7", selText: "#f8fafc", marked: "#134e4a",
		text: "#f1f5f9", muted: "#94a3b8", faint: "#64748b",
		accent: "#38bdf8", success: "#22c55e", warning: "#f59e0b",
		danger: "#ef4444", info: "#06b6d4", loadingMore: "#0ea5e9",
	}),
}

// GetTheme returns a theme by name, falling back to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["Nightfox"]
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}
