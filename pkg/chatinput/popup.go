package chatinput

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/robottwo/chatline/pkg/richtext"
)

const defaultPopupHeight = 5

// popupPage returns the first candidate index shown for a popup of the
// given height. Scrolling is page based.
func popupPage(selected, height int) int {
	if height <= 0 {
		height = defaultPopupHeight
	}
	if selected < 0 {
		selected = 0
	}
	return (selected / height) * height
}

// PopupView renders the open popup, one candidate per row. It returns the
// empty string while the popup is closed.
func (m Model) PopupView(height int, width int) string {
	state := m.engine.State()
	if !state.Open() {
		return ""
	}
	if height <= 0 {
		height = defaultPopupHeight
	}

	start := popupPage(state.Selected, height)
	end := min(start+height, len(state.Candidates))

	labelWidth := 0
	for _, c := range state.Candidates[start:end] {
		labelWidth = max(labelWidth, ansi.PrintableRuneWidth(c.Label()))
	}

	var content strings.Builder
	for idx := start; idx < end; idx++ {
		row := m.popupRow(state.Candidates[idx], idx == state.Selected, labelWidth)
		if width > 0 && ansi.PrintableRuneWidth(row) > width {
			row = truncate.StringWithTail(row, uint(width), "…")
		}
		content.WriteString(row)
		if idx < end-1 {
			content.WriteString("\n")
		}
	}

	return content.String()
}

func (m Model) popupRow(c richtext.Candidate, selected bool, labelWidth int) string {
	prefix := "   "
	if selected {
		prefix = " > "
	}

	label := c.Label()
	pad := strings.Repeat(" ", max(0, labelWidth-ansi.PrintableRuneWidth(label)))
	if selected {
		label = m.PopupSelectedStyle.Render(label)
	}

	switch v := c.(type) {
	case richtext.User:
		row := prefix + m.BadgeStyle.Render(initial(v.Name)) + " " + label
		if v.Email != "" {
			row += pad + "  " + m.PopupDetailStyle.Render(v.Email)
		}
		return row
	case richtext.Emoji:
		return prefix + v.Glyph + " " + m.PopupDetailStyle.Render(":") + label + m.PopupDetailStyle.Render(":")
	default:
		return prefix + label
	}
}

// initial is the uppercased first letter of name, or "?" when it is empty.
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// PopupIndexAt maps a row of a popup rendered with height rows to a
// candidate index, or -1 when the row is empty.
func (m Model) PopupIndexAt(row, height int) int {
	state := m.engine.State()
	if !state.Open() || row < 0 {
		return -1
	}
	if height <= 0 {
		height = defaultPopupHeight
	}
	if row >= height {
		return -1
	}
	idx := popupPage(state.Selected, height) + row
	if idx >= len(state.Candidates) {
		return -1
	}
	return idx
}

// ClickPopupRow commits the candidate under a clicked popup row.
func (m *Model) ClickPopupRow(row, height int) bool {
	idx := m.PopupIndexAt(row, height)
	if idx < 0 {
		return false
	}
	if !m.engine.CommitAt(idx) {
		return false
	}
	m.loadBuffer()
	return true
}

// HoverPopupRow moves the highlight to the row under the pointer.
func (m *Model) HoverPopupRow(row, height int) bool {
	idx := m.PopupIndexAt(row, height)
	if idx < 0 {
		return false
	}
	return m.engine.SelectAt(idx)
}
