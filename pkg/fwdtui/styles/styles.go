package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/txn2/logfwd/pkg/fwdevent"
)

// color returns a lipgloss.Color, choosing light or dark variant based on the
// current theme set by SetDarkTheme.
func color(light, dark string) lipgloss.Color {
	if isDark {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

// isDark tracks the current theme. Default is dark.
var isDark = true

// SetDarkTheme switches the color palette. Call this before the TUI starts.
// Passing false selects the light palette; true selects the dark palette.
func SetDarkTheme(dark bool) {
	isDark = dark
	applyTheme()
}

// IsDarkTheme returns the current theme setting.
func IsDarkTheme() bool {
	return isDark
}

// DetectTheme picks the palette from the terminal background
func DetectTheme() {
	SetDarkTheme(termenv.HasDarkBackground())
}

func applyTheme() {
	// --- palette ---
	colorYellow := color("136", "226")
	colorBlue := color("27", "39")
	colorGreen := color("28", "42")
	colorRed := color("160", "196")
	colorMagenta := color("127", "201")
	colorGray := color("243", "240")
	colorWhite := color("16", "255")
	colorFocused := color("62", "62")
	colorCyan := color("30", "51")
	colorSelectedBg := color("254", "237")
	colorMatchBg := color("229", "58")

	// --- header ---
	HeaderTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	HeaderVersionStyle = lipgloss.NewStyle().Foreground(colorWhite)
	HeaderListenStyle = lipgloss.NewStyle().Foreground(colorCyan)
	HeaderHintStyle = lipgloss.NewStyle().Foreground(colorGray)

	// --- event levels ---
	LevelFatalStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMagenta)
	LevelErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	LevelWarnStyle = lipgloss.NewStyle().Foreground(colorYellow)
	LevelInfoStyle = lipgloss.NewStyle().Foreground(colorGreen)
	LevelDebugStyle = lipgloss.NewStyle().Foreground(colorBlue)
	LevelTraceStyle = lipgloss.NewStyle().Foreground(colorGray)
	LevelUnknownStyle = lipgloss.NewStyle().Foreground(colorWhite)

	// --- event rows ---
	EventIDStyle = lipgloss.NewStyle().Foreground(colorGray)
	EventTimeStyle = lipgloss.NewStyle().Foreground(colorGray)
	EventLoggerStyle = lipgloss.NewStyle().Foreground(colorCyan)
	EventMessageStyle = lipgloss.NewStyle().Foreground(colorWhite)
	EventMatchStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow).Background(colorMatchBg)

	// --- table ---
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	TableSelectedStyle = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorWhite)

	// --- search ---
	SearchPromptStyle = lipgloss.NewStyle().Foreground(colorCyan)
	SearchIncludeStyle = lipgloss.NewStyle().Foreground(colorGreen)
	SearchExcludeStyle = lipgloss.NewStyle().Foreground(colorRed)
	SearchHintStyle = lipgloss.NewStyle().Foreground(colorGray)
	SearchErrorStyle = lipgloss.NewStyle().Foreground(colorRed)

	// --- status bar ---
	StatusBarStyle = lipgloss.NewStyle().Foreground(colorWhite)
	StatusBarErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	StatusBarOKStyle = lipgloss.NewStyle().Foreground(colorGreen)
	StatusBarHelpStyle = lipgloss.NewStyle().Foreground(colorGray)
	SparklineStyle = lipgloss.NewStyle().Foreground(colorGreen)

	// --- help modal ---
	HelpModalStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocused).Padding(1, 2)
	HelpTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow).MarginBottom(1)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(colorBlue).Width(12)
	HelpDescStyle = lipgloss.NewStyle().Foreground(colorWhite)

	// --- section ---
	SectionTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	FocusAccentStyle = lipgloss.NewStyle().Foreground(colorCyan)
}

// All style variables, initialized with the dark theme.
var (
	// Header styles
	HeaderTitleStyle   lipgloss.Style
	HeaderVersionStyle lipgloss.Style
	HeaderListenStyle  lipgloss.Style
	HeaderHintStyle    lipgloss.Style

	// Event level styles
	LevelFatalStyle   lipgloss.Style
	LevelErrorStyle   lipgloss.Style
	LevelWarnStyle    lipgloss.Style
	LevelInfoStyle    lipgloss.Style
	LevelDebugStyle   lipgloss.Style
	LevelTraceStyle   lipgloss.Style
	LevelUnknownStyle lipgloss.Style

	// Event row styles
	EventIDStyle      lipgloss.Style
	EventTimeStyle    lipgloss.Style
	EventLoggerStyle  lipgloss.Style
	EventMessageStyle lipgloss.Style
	EventMatchStyle   lipgloss.Style

	// Table styles
	TableHeaderStyle   lipgloss.Style
	TableSelectedStyle lipgloss.Style

	// Search line styles
	SearchPromptStyle  lipgloss.Style
	SearchIncludeStyle lipgloss.Style
	SearchExcludeStyle lipgloss.Style
	SearchHintStyle    lipgloss.Style
	SearchErrorStyle   lipgloss.Style

	// Status bar styles
	StatusBarStyle      lipgloss.Style
	StatusBarErrorStyle lipgloss.Style
	StatusBarOKStyle    lipgloss.Style
	StatusBarHelpStyle  lipgloss.Style
	SparklineStyle      lipgloss.Style

	// Help modal styles
	HelpModalStyle lipgloss.Style
	HelpTitleStyle lipgloss.Style
	HelpKeyStyle   lipgloss.Style
	HelpDescStyle  lipgloss.Style

	// Section styles
	SectionTitleStyle lipgloss.Style
	FocusAccentStyle  lipgloss.Style
)

// LevelStyle returns the style events of level are drawn with
func LevelStyle(level fwdevent.Level) lipgloss.Style {
	switch level {
	case fwdevent.LevelFatal:
		return LevelFatalStyle
	case fwdevent.LevelError:
		return LevelErrorStyle
	case fwdevent.LevelWarn:
		return LevelWarnStyle
	case fwdevent.LevelInfo:
		return LevelInfoStyle
	case fwdevent.LevelDebug:
		return LevelDebugStyle
	case fwdevent.LevelTrace:
		return LevelTraceStyle
	default:
		return LevelUnknownStyle
	}
}

func init() {
	applyTheme()
}
