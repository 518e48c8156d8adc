package styles_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
)

func TestStylesRender(t *testing.T) {
	for _, dark := range []bool{true, false} {
		styles.SetDarkTheme(dark)

		tests := []struct {
			name  string
			style *lipgloss.Style
		}{
			{"HeaderTitle", &styles.HeaderTitleStyle},
			{"HeaderListen", &styles.HeaderListenStyle},
			{"LevelError", &styles.LevelErrorStyle},
			{"EventMatch", &styles.EventMatchStyle},
			{"TableHeader", &styles.TableHeaderStyle},
			{"TableSelected", &styles.TableSelectedStyle},
			{"SearchInclude", &styles.SearchIncludeStyle},
			{"StatusBarError", &styles.StatusBarErrorStyle},
			{"Sparkline", &styles.SparklineStyle},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if tt.style.Render("test") == "" {
					t.Errorf("style %s rendered empty string (dark=%v)", tt.name, dark)
				}
			})
		}
	}
	styles.SetDarkTheme(true)
}

func TestThemeSwitchProducesDifferentOutput(t *testing.T) {
	// Force ANSI256 color profile so escape codes are actually generated
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	styles.SetDarkTheme(true)
	darkResult := styles.HeaderTitleStyle.Render("test")

	styles.SetDarkTheme(false)
	lightResult := styles.HeaderTitleStyle.Render("test")

	styles.SetDarkTheme(true)

	if darkResult == lightResult {
		t.Errorf("Theme switch should produce different output.\nDark:  %q\nLight: %q", darkResult, lightResult)
	}
}

func TestLevelStyleDistinct(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(termenv.Ascii)
	styles.SetDarkTheme(true)

	seen := make(map[string]fwdevent.Level)
	for _, level := range fwdevent.Levels {
		out := styles.LevelStyle(level).Render("x")
		if prev, ok := seen[out]; ok {
			t.Errorf("%s and %s render identically: %q", prev, level, out)
		}
		seen[out] = level
	}

	if styles.LevelStyle(fwdevent.LevelUnknown).Render("x") == styles.LevelStyle(fwdevent.LevelError).Render("x") {
		t.Error("unknown level should not look like an error")
	}
}

func TestIsDarkTheme(t *testing.T) {
	styles.SetDarkTheme(true)
	if !styles.IsDarkTheme() {
		t.Error("expected dark theme")
	}

	styles.SetDarkTheme(false)
	if styles.IsDarkTheme() {
		t.Error("expected light theme")
	}

	styles.SetDarkTheme(true)
}
