package composer

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/robottwo/chatline/pkg/richtext"
)

var testUsers = []richtext.User{
	{ID: "1", Name: "ada", Email: "ada@example.com"},
	{ID: "2", Name: "Bob", Email: "bob@example.com"},
	{ID: "42", Name: "carol", Email: "c.ada@example.com"},
}

func newTestModel(t *testing.T) appModel {
	t.Helper()
	options := NewOptions()
	options.Highlight = false
	return initialModel("> ", []string{"earlier"}, testUsers, zaptest.NewLogger(t), options)
}

func send(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(appModel)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		if r == ' ' {
			m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestTerminate(t *testing.T) {
	_, ok := terminate().(terminateMsg)
	assert.True(t, ok)
	_, ok = interrupt().(interruptMsg)
	assert.True(t, ok)
	_, ok = eof().(eofMsg)
	assert.True(t, ok)
}

func TestErrInterrupted(t *testing.T) {
	assert.Error(t, ErrInterrupted)
	assert.Equal(t, "interrupted by user", ErrInterrupted.Error())
}

func TestInitialModel(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, "> ", m.textInput.Prompt)
	assert.Equal(t, Active, m.appState)
	assert.False(t, m.interrupted)
	assert.Equal(t, "", m.result)
	assert.True(t, m.textInput.Focused())
}

func TestNilLoggerIsAllowed(t *testing.T) {
	m := initialModel("> ", nil, nil, nil, NewOptions())
	assert.NotNil(t, m.logger)
}

func TestEnterWithClosedPopupSubmits(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "hello")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "hello", m.result)
	assert.NotNil(t, cmd)
}

func TestEnterOnBlankLineDoesNothing(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "  ")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "", m.result)
	assert.Nil(t, cmd)
}

func TestEnterWithOpenPopupCommits(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "hi @ca")
	require.True(t, m.textInput.PopupOpen())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "", m.result)
	assert.Equal(t, "hi <@42|carol>", m.textInput.Value())
	assert.False(t, m.textInput.PopupOpen())

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "hi <@42|carol>", m.result)
	assert.NotNil(t, cmd)
}

func TestCtrlCInterrupts(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "draft")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, "", m.result)

	m, _ = send(t, m, interruptMsg{})
	assert.True(t, m.interrupted)
	assert.Equal(t, Terminated, m.appState)
	assert.Equal(t, "", m.View())
}

func TestCtrlCInterruptsWithOpenPopup(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "@a")
	require.True(t, m.textInput.PopupOpen())

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
}

func TestCtrlDOnlyOnBlankLine(t *testing.T) {
	m := newTestModel(t)

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.NotNil(t, cmd)

	m = typeText(t, m, "x")
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Nil(t, cmd)
	assert.Equal(t, "x", m.textInput.Value())

	m, _ = send(t, m, eofMsg{})
	assert.True(t, m.eof)
}

func TestUsersLoadedMsg(t *testing.T) {
	m := initialModel("> ", nil, nil, zaptest.NewLogger(t), NewOptions())
	m = typeText(t, m, "@")
	assert.False(t, m.textInput.PopupOpen())

	m, _ = send(t, m, UsersLoadedMsg{Users: testUsers})
	m = typeText(t, m, "b")
	require.True(t, m.textInput.PopupOpen())
	assert.Equal(t, "Bob", m.textInput.PopupState().Candidates[0].Label())
}

func TestHistoryReachableWithUp(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "earlier", m.textInput.Value())
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t)
	m, cmd := send(t, m, tea.WindowSizeMsg{Width: 100, Height: 50})
	assert.Nil(t, cmd)
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 100, m.textInput.Width)
}

func TestViewWithoutPopup(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "hello")
	view := m.View()
	assert.Contains(t, view, "hello")
	assert.NotContains(t, view, "╭")
}

func TestViewWithPopup(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	m := newTestModel(t)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	m = typeText(t, m, "@ad")

	view := m.View()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "mention")
	assert.Contains(t, lines[2], "ada")
	assert.Contains(t, lines[3], "carol")
	assert.Contains(t, lines[4], "1/2")

	for _, line := range lines[1:] {
		assert.Equal(t, 40, lipgloss.Width(line), "line %q", line)
	}
}

func TestMouseClickCommitsPopupRow(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	m = typeText(t, m, "@")
	require.Equal(t, 2, m.popupTop())

	m, _ = send(t, m, tea.MouseMsg{X: 5, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, "<@2|Bob>", m.textInput.Value())
	assert.False(t, m.textInput.PopupOpen())
}

func TestMouseMotionHighlightsPopupRow(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	m = typeText(t, m, "@")
	require.Equal(t, 0, m.textInput.PopupState().Selected)

	m, _ = send(t, m, tea.MouseMsg{X: 5, Y: 4, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Equal(t, 2, m.textInput.PopupState().Selected)
	assert.Equal(t, "@", m.textInput.Value())

	m, _ = send(t, m, tea.MouseMsg{X: 5, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Equal(t, 2, m.textInput.PopupState().Selected)
}

func TestTruncateWithAnsi(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{name: "plain", input: "hello world", maxWidth: 5, expected: "hello"},
		{name: "zero width", input: "hello", maxWidth: 0, expected: ""},
		{name: "escape kept", input: "\x1b[31mred\x1b[0m", maxWidth: 2, expected: "\x1b[31mre"},
		{name: "wide runes", input: "🔥🔥", maxWidth: 3, expected: "🔥"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateWithAnsi(tt.input, tt.maxWidth))
		})
	}
}

func TestComposerSetUsersWithoutProgram(t *testing.T) {
	c := New(zaptest.NewLogger(t), NewOptions())
	users := []richtext.User{{ID: "1", Name: "ada"}}
	c.SetUsers(users)
	users[0].Name = "changed"
	assert.Equal(t, "ada", c.users[0].Name)
}
