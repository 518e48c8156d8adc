package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/txn2/logfwd/pkg/fwdfilter"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
)

// SearchModel is the search line. While active it edits a new term;
// otherwise it shows the terms in effect.
type SearchModel struct {
	input  textinput.Model
	active bool
	terms  []fwdfilter.SearchTerm
	err    string
	width  int
}

// NewSearchModel creates a new search model
func NewSearchModel() SearchModel {
	ti := textinput.New()
	ti.Prompt = "search: "
	ti.PromptStyle = styles.SearchPromptStyle
	ti.Placeholder = "text, +include, -exclude or /regex/"
	ti.CharLimit = 256
	return SearchModel{input: ti}
}

// Activate starts editing a new term
func (m *SearchModel) Activate() tea.Cmd {
	m.active = true
	m.err = ""
	m.input.Reset()
	return m.input.Focus()
}

// Deactivate stops editing and drops the pending text
func (m *SearchModel) Deactivate() {
	m.active = false
	m.input.Blur()
	m.input.Reset()
}

// IsActive reports whether a term is being edited
func (m *SearchModel) IsActive() bool {
	return m.active
}

// Value returns the pending text
func (m *SearchModel) Value() string {
	return m.input.Value()
}

// SetTerms updates the terms shown when not editing
func (m *SearchModel) SetTerms(terms []fwdfilter.SearchTerm) {
	m.terms = terms
}

// SetError shows err next to the terms until the next edit
func (m *SearchModel) SetError(err string) {
	m.err = err
}

// Error returns the displayed error
func (m *SearchModel) Error() string {
	return m.err
}

// Update forwards key input to the text field while active
func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the search line
func (m SearchModel) View() string {
	if m.active {
		return " " + m.input.View()
	}

	var parts []string
	for _, t := range m.terms {
		if t.Mode == fwdfilter.Exclude {
			parts = append(parts, styles.SearchExcludeStyle.Render(t.String()))
		} else {
			parts = append(parts, styles.SearchIncludeStyle.Render(t.String()))
		}
	}

	line := " " + styles.SearchPromptStyle.Render("terms: ")
	if len(parts) == 0 {
		line += styles.SearchHintStyle.Render("none (press / to add)")
	} else {
		line += strings.Join(parts, " ")
	}
	if m.err != "" {
		line += "  " + styles.SearchErrorStyle.Render(m.err)
	}
	return line
}

// SetWidth updates the input width
func (m *SearchModel) SetWidth(width int) {
	m.width = width
	m.input.Width = width - len(m.input.Prompt) - 2
}
