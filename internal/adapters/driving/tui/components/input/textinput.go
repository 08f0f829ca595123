// Package input provides the query field of the search view.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

const minInputWidth = 20

// QueryInput is a text field paired with a category filter. The category
// cycles through "all" and every travel category.
type QueryInput struct {
	textinput  textinput.Model
	styles     *styles.Styles
	categories []string
	category   int
	width      int
}

// NewQueryInput creates a focused query input filtering on all categories.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about visas, airlines, destinations..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &QueryInput{
		textinput:  ti,
		styles:     s,
		categories: append([]string{domain.FilterAll}, domain.AllCategories()...),
		width:      60,
	}
}

// Init starts the cursor blink.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards messages to the text field.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the label, the field and the active category.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Search: ")
	field := q.styles.InputField.Render(q.textinput.View())
	category := q.styles.Muted.Render(" in " + q.Category())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field, category)
}

// Value returns the query text.
func (q *QueryInput) Value() string {
	return q.textinput.Value()
}

// SetValue replaces the query text.
func (q *QueryInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Category returns the active category filter.
func (q *QueryInput) Category() string {
	return q.categories[q.category]
}

// NextCategory advances the category filter, wrapping to "all".
func (q *QueryInput) NextCategory() {
	q.category = (q.category + 1) % len(q.categories)
}

// Focus sets focus on the field.
func (q *QueryInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the field.
func (q *QueryInput) Blur() {
	q.textinput.Blur()
}

// Focused reports whether the field has focus.
func (q *QueryInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the total width, leaving room for the label and category.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	fieldWidth := width - 30
	if fieldWidth < minInputWidth {
		fieldWidth = minInputWidth
	}
	q.textinput.Width = fieldWidth
}

// Width returns the total width.
func (q *QueryInput) Width() int {
	return q.width
}

// Reset clears the query text. The category filter is kept.
func (q *QueryInput) Reset() {
	q.textinput.Reset()
}
