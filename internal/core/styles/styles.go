// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/wcap/internal/core/item"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the named palette and whether it exists.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

var (
	mu      sync.RWMutex
	current = themes[DefaultTheme]

	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
)

func init() {
	rebuild()
}

// SetTheme applies a palette to the exported styles.
func SetTheme(p Palette) {
	mu.Lock()
	defer mu.Unlock()
	current = p
	rebuild()
}

func rebuild() {
	Title = lipgloss.NewStyle().Bold(true).Foreground(current.Primary)
	Muted = lipgloss.NewStyle().Foreground(current.Muted)
	Success = lipgloss.NewStyle().Foreground(current.Success)
	Warning = lipgloss.NewStyle().Foreground(current.Warning)
	Error = lipgloss.NewStyle().Foreground(current.Error)
}

// stageColors maps pipeline stages to semantic palette colors.
func stageColor(stage item.Stage) lipgloss.Color {
	mu.RLock()
	defer mu.RUnlock()
	switch stage {
	case item.StageInbox:
		return current.Primary
	case item.StageNextActions:
		return current.Secondary
	case item.StageWaitingFor:
		return current.Warning
	case item.StageCompleted:
		return current.Success
	case item.StageSomeday, item.StageReference:
		return current.Muted
	default:
		return current.Foreground
	}
}

// StageBadge renders a colored stage label for list output.
func StageBadge(stage item.Stage) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(stageColor(stage)).
		Render(string(stage))
}
