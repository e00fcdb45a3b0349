/*
This file is forked from the textinput component from
github.com/charmbracelet/bubbles

# MIT License

# Copyright (c) 2020-2023 Charmbracelet, Inc

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package chatinput

import (
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/runeutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/rivo/uniseg"

	"github.com/robottwo/chatline/pkg/richtext"
)

// Internal messages for clipboard operations.
type (
	pasteMsg    string
	pasteErrMsg struct{ error }
)

// KeyMap is the key bindings for editing the message line.
type KeyMap struct {
	CharacterForward        key.Binding
	CharacterBackward       key.Binding
	WordForward             key.Binding
	WordBackward            key.Binding
	DeleteWordBackward      key.Binding
	DeleteAfterCursor       key.Binding
	DeleteBeforeCursor      key.Binding
	DeleteCharacterBackward key.Binding
	DeleteCharacterForward  key.Binding
	LineStart               key.Binding
	LineEnd                 key.Binding
	Paste                   key.Binding
	HistoryPrev             key.Binding
	HistoryNext             key.Binding
}

// DefaultKeyMap is the default set of key bindings. Up, down, enter, tab and
// esc are offered to the popup first and only reach these bindings while it
// is closed.
var DefaultKeyMap = KeyMap{
	CharacterForward:        key.NewBinding(key.WithKeys("right", "ctrl+f")),
	CharacterBackward:       key.NewBinding(key.WithKeys("left", "ctrl+b")),
	WordForward:             key.NewBinding(key.WithKeys("alt+right", "ctrl+right", "alt+f")),
	WordBackward:            key.NewBinding(key.WithKeys("alt+left", "ctrl+left", "alt+b")),
	DeleteWordBackward:      key.NewBinding(key.WithKeys("alt+backspace", "ctrl+w")),
	DeleteAfterCursor:       key.NewBinding(key.WithKeys("ctrl+k")),
	DeleteBeforeCursor:      key.NewBinding(key.WithKeys("ctrl+u")),
	DeleteCharacterBackward: key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
	DeleteCharacterForward:  key.NewBinding(key.WithKeys("delete", "ctrl+d")),
	LineStart:               key.NewBinding(key.WithKeys("home", "ctrl+a")),
	LineEnd:                 key.NewBinding(key.WithKeys("end", "ctrl+e")),
	Paste:                   key.NewBinding(key.WithKeys("ctrl+v")),
	HistoryPrev:             key.NewBinding(key.WithKeys("up", "ctrl+p")),
	HistoryNext:             key.NewBinding(key.WithKeys("down", "ctrl+n")),
}

// Model is the Bubble Tea model for the chat message line. It owns a
// richtext.Orchestrator which decides when the mention or emoji popup is
// open and rewrites the text on commit and paste.
type Model struct {
	Err error

	Prompt string
	Cursor cursor.Model

	// Styles. These will be applied as inline styles.
	PromptStyle        lipgloss.Style
	TextStyle          lipgloss.Style
	PopupSelectedStyle lipgloss.Style
	PopupDetailStyle   lipgloss.Style
	BadgeStyle         lipgloss.Style

	// Highlight renders mentions, emoji shortcodes and links in color.
	Highlight bool

	// CharLimit is the maximum amount of characters this input element will
	// accept. If 0 or less, there's no limit.
	CharLimit int

	// Width marks the horizontal boundary for this component to render within.
	// Content that exceeds this width will be wrapped.
	// If 0 or less this setting is ignored.
	Width int

	KeyMap KeyMap

	focus bool

	value []rune
	pos   int

	engine *richtext.Orchestrator

	// history holds previously sent messages, newest first. historyIndex is
	// -1 while editing the draft.
	history      [][]rune
	historyIndex int
	draft        []rune

	rsan runeutil.Sanitizer
}

// New creates a message line driven by engine. A nil engine gets one with
// default options and no logger.
func New(engine *richtext.Orchestrator) Model {
	if engine == nil {
		engine = richtext.NewOrchestrator(richtext.NewOptions(), nil)
	}
	return Model{
		Prompt:             "> ",
		Cursor:             cursor.New(),
		KeyMap:             DefaultKeyMap,
		PopupSelectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		PopupDetailStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		BadgeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),

		engine:       engine,
		historyIndex: -1,
	}
}

// Engine returns the orchestrator behind the popup.
func (m Model) Engine() *richtext.Orchestrator {
	return m.engine
}

// SetUsers installs the mention catalog.
func (m *Model) SetUsers(users []richtext.User) {
	m.engine.SetUsers(users)
}

// PopupState is a snapshot of the mention or emoji popup.
func (m Model) PopupState() richtext.SelectionState {
	return m.engine.State()
}

// PopupOpen reports whether up, down, enter, tab and esc currently belong to
// the popup.
func (m Model) PopupOpen() bool {
	return m.engine.State().Open()
}

// SetValue replaces the text and moves the cursor to its end.
func (m *Model) SetValue(s string) {
	m.setValueInternal(m.san().Sanitize([]rune(s)))
	m.CursorEnd()
	m.textChanged()
}

func (m *Model) setValueInternal(runes []rune) {
	if m.CharLimit > 0 && len(runes) > m.CharLimit {
		runes = runes[:m.CharLimit]
	}
	m.value = runes
	m.SetCursor(m.pos)
}

// Value returns the value of the text input.
func (m Model) Value() string {
	return string(m.value)
}

// Position returns the cursor position in runes.
func (m Model) Position() int {
	return m.pos
}

// SetCursor moves the cursor to the given position. If the position is
// out of bounds the cursor will be moved to the start or end accordingly.
func (m *Model) SetCursor(pos int) {
	m.pos = clamp(pos, 0, len(m.value))
}

// CursorStart moves the cursor to the start of the input field.
func (m *Model) CursorStart() {
	m.SetCursor(0)
}

// CursorEnd moves the cursor to the end of the input field.
func (m *Model) CursorEnd() {
	m.SetCursor(len(m.value))
}

// Focused returns the focus state on the model.
func (m Model) Focused() bool {
	return m.focus
}

// Focus sets the focus state on the model. When the model is in focus it can
// receive keyboard input and the cursor will be shown.
func (m *Model) Focus() tea.Cmd {
	m.focus = true
	return m.Cursor.Focus()
}

// Blur removes the focus state on the model.
func (m *Model) Blur() {
	m.focus = false
	m.Cursor.Blur()
}

// Reset clears the line, closes the popup and leaves history navigation.
func (m *Model) Reset() {
	m.value = nil
	m.pos = 0
	m.historyIndex = -1
	m.draft = nil
	m.engine.Reset()
}

// SetHistoryValues sets the messages reachable with up and down, newest
// first.
func (m *Model) SetHistoryValues(values []string) {
	m.history = make([][]rune, len(values))
	for i, s := range values {
		m.history[i] = m.san().Sanitize([]rune(s))
	}
	if m.historyIndex >= len(m.history) {
		m.historyIndex = -1
	}
}

func (m *Model) san() runeutil.Sanitizer {
	if m.rsan == nil {
		// The message line is a single line so collapse newlines and tabs to
		// single spaces.
		m.rsan = runeutil.NewSanitizer(
			runeutil.ReplaceTabs(" "), runeutil.ReplaceNewlines(" "))
	}
	return m.rsan
}

// textChanged reports the current line to the orchestrator, which reopens,
// refilters or closes the popup.
func (m *Model) textChanged() {
	m.engine.TextChanged(string(m.value), m.pos)
}

// loadBuffer copies a rewritten buffer back from the orchestrator after a
// commit or a linkified paste.
func (m *Model) loadBuffer() {
	buf := m.engine.Buffer()
	m.setValueInternal([]rune(buf.Text))
	m.SetCursor(buf.Cursor)
}

func (m *Model) insertRunes(v []rune) {
	ins := m.san().Sanitize(v)

	if m.CharLimit > 0 {
		avail := m.CharLimit - len(m.value)
		if avail <= 0 {
			return
		}
		if avail < len(ins) {
			ins = ins[:avail]
		}
	}

	result := make([]rune, 0, len(m.value)+len(ins))
	result = append(result, m.value[:m.pos]...)
	result = append(result, ins...)
	result = append(result, m.value[m.pos:]...)
	m.value = result
	m.pos += len(ins)
}

// paste gives the orchestrator a chance to linkify raw before it lands in
// the line.
func (m *Model) paste(raw string) {
	ins := m.san().Sanitize([]rune(raw))
	if m.CharLimit > 0 {
		avail := max(m.CharLimit-len(m.value), 0)
		if avail < len(ins) {
			ins = ins[:avail]
		}
	}
	if len(ins) == 0 {
		return
	}

	m.textChanged()
	if m.engine.Paste(string(ins)) {
		m.loadBuffer()
		// Brackets can push the line past CharLimit; resync the orchestrator
		// with what the line kept.
		m.textChanged()
		return
	}
	m.insertRunes(ins)
	m.textChanged()
}

func (m *Model) deleteBeforeCursor() {
	m.value = cloneRunes(m.value[m.pos:])
	m.SetCursor(0)
}

func (m *Model) deleteAfterCursor() {
	m.value = cloneRunes(m.value[:m.pos])
	m.CursorEnd()
}

func (m *Model) deleteWordBackward() {
	if m.pos == 0 || len(m.value) == 0 {
		return
	}

	end := m.pos
	start := end
	for start > 0 && unicode.IsSpace(m.value[start-1]) {
		start--
	}
	for start > 0 && !unicode.IsSpace(m.value[start-1]) {
		start--
	}

	m.value = cloneConcatRunes(m.value[:start], m.value[end:])
	m.SetCursor(start)
}

func (m *Model) wordBackward() {
	i := m.pos
	for i > 0 && unicode.IsSpace(m.value[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(m.value[i-1]) {
		i--
	}
	m.SetCursor(i)
}

func (m *Model) wordForward() {
	i := m.pos
	for i < len(m.value) && unicode.IsSpace(m.value[i]) {
		i++
	}
	for i < len(m.value) && !unicode.IsSpace(m.value[i]) {
		i++
	}
	m.SetCursor(i)
}

// historyPrev steps to an older message, stashing the draft on the way in.
func (m *Model) historyPrev() {
	if m.historyIndex+1 >= len(m.history) {
		return
	}
	if m.historyIndex == -1 {
		m.draft = cloneRunes(m.value)
	}
	m.historyIndex++
	m.value = cloneRunes(m.history[m.historyIndex])
	m.CursorEnd()
}

// historyNext steps to a newer message, or back to the draft.
func (m *Model) historyNext() {
	if m.historyIndex == -1 {
		return
	}
	m.historyIndex--
	if m.historyIndex == -1 {
		m.value = m.draft
		m.draft = nil
	} else {
		m.value = cloneRunes(m.history[m.historyIndex])
	}
	m.CursorEnd()
}

// Update is the Bubble Tea update loop.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focus {
		return m, nil
	}

	oldPos := m.pos

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Paste {
			m.paste(string(msg.Runes))
			break
		}

		// Navigation and commit keys belong to the popup while it is open.
		if m.engine.HandleKey(msg.String()) {
			m.loadBuffer()
			return m, nil
		}

		oldValue := string(m.value)

		switch {
		case key.Matches(msg, m.KeyMap.DeleteWordBackward):
			m.deleteWordBackward()
		case key.Matches(msg, m.KeyMap.DeleteCharacterBackward):
			if m.pos > 0 {
				m.value = cloneConcatRunes(m.value[:m.pos-1], m.value[m.pos:])
				m.SetCursor(m.pos - 1)
			}
		case key.Matches(msg, m.KeyMap.DeleteCharacterForward):
			if m.pos < len(m.value) {
				m.value = cloneConcatRunes(m.value[:m.pos], m.value[m.pos+1:])
			}
		case key.Matches(msg, m.KeyMap.WordBackward):
			m.wordBackward()
		case key.Matches(msg, m.KeyMap.CharacterBackward):
			m.SetCursor(m.pos - 1)
		case key.Matches(msg, m.KeyMap.WordForward):
			m.wordForward()
		case key.Matches(msg, m.KeyMap.CharacterForward):
			m.SetCursor(m.pos + 1)
		case key.Matches(msg, m.KeyMap.LineStart):
			m.CursorStart()
		case key.Matches(msg, m.KeyMap.LineEnd):
			m.CursorEnd()
		case key.Matches(msg, m.KeyMap.DeleteAfterCursor):
			m.deleteAfterCursor()
		case key.Matches(msg, m.KeyMap.DeleteBeforeCursor):
			m.deleteBeforeCursor()
		case key.Matches(msg, m.KeyMap.Paste):
			return m, Paste
		case key.Matches(msg, m.KeyMap.HistoryPrev):
			m.historyPrev()
		case key.Matches(msg, m.KeyMap.HistoryNext):
			m.historyNext()
		case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
			m.insertRunes(msg.Runes)
		default:
			// Enter, tab and the rest are left to the parent.
			return m, nil
		}

		if string(m.value) != oldValue || m.pos != oldPos {
			m.textChanged()
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case pasteMsg:
		m.paste(string(msg))

	case pasteErrMsg:
		m.Err = msg
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.Cursor, cmd = m.Cursor.Update(msg)
	cmds = append(cmds, cmd)

	if oldPos != m.pos && m.Cursor.Mode() == cursor.CursorBlink {
		m.Cursor.Blink = false
		cmds = append(cmds, m.Cursor.BlinkCmd())
	}

	return m, tea.Batch(cmds...)
}

// handleMouse lets the wheel move the popup highlight. Clicks need the
// popup's screen position and arrive through ClickPopupRow instead.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.engine.HandleCommand(richtext.CommandNext)
	case tea.MouseButtonWheelUp:
		m.engine.HandleCommand(richtext.CommandPrevious)
	}
}

// View renders the message line in its current state.
func (m Model) View() string {
	styleText := m.TextStyle.Inline(true).Render

	value := m.value
	pos := clamp(m.pos, 0, len(value))

	var styled []string
	if m.Highlight {
		styled = Highlight(value)
	}
	render := func(from, to int) string {
		if styled == nil {
			return styleText(string(value[from:to]))
		}
		return strings.Join(styled[from:to], "")
	}

	v := m.PromptStyle.Render(m.Prompt) + render(0, pos)

	if pos < len(value) {
		m.Cursor.SetChar(string(value[pos]))
		v += m.Cursor.View()
		v += render(pos+1, len(value))
	} else {
		m.Cursor.SetChar(" ")
		v += m.Cursor.View()
	}

	if m.Width > 0 {
		// Measured on the plain text; v carries escape sequences.
		totalWidth := uniseg.StringWidth(m.Prompt + string(value))
		if pos == len(value) {
			totalWidth++
		}
		if totalWidth <= m.Width {
			v += styleText(strings.Repeat(" ", m.Width-totalWidth))
		} else {
			v = wrap.String(v, m.Width)
		}
	}

	return v
}

// Blink is a command used to initialize cursor blinking.
func Blink() tea.Msg {
	return cursor.Blink()
}

// Paste is a command for pasting from the clipboard into the message line.
func Paste() tea.Msg {
	str, err := clipboard.ReadAll()
	if err != nil {
		return pasteErrMsg{err}
	}
	return pasteMsg(str)
}

func clamp(v, low, high int) int {
	if high < low {
		low, high = high, low
	}
	return min(high, max(low, v))
}

func cloneRunes(r []rune) []rune {
	clone := make([]rune, len(r))
	copy(clone, r)
	return clone
}

func cloneConcatRunes(r1, r2 []rune) []rune {
	clone := make([]rune, len(r1)+len(r2))
	copy(clone, r1)
	copy(clone[len(r1):], r2)
	return clone
}
