package composer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/robottwo/chatline/pkg/chatinput"
	"github.com/robottwo/chatline/pkg/richtext"
)

// ErrInterrupted is returned when the user presses Ctrl+C
var ErrInterrupted = errors.New("interrupted by user")

// UsersLoadedMsg replaces the mention catalog of a running composer.
type UsersLoadedMsg struct {
	Users []richtext.User
}

type terminateMsg struct{}

func terminate() tea.Msg {
	return terminateMsg{}
}

type interruptMsg struct{}

func interrupt() tea.Msg {
	return interruptMsg{}
}

type eofMsg struct{}

func eof() tea.Msg {
	return eofMsg{}
}

type appState int

const (
	Active appState = iota
	Terminated
)

const resetCursorColumn = "\r"

type appModel struct {
	logger  *zap.Logger
	options Options

	textInput chatinput.Model

	result      string
	appState    appState
	interrupted bool
	eof         bool

	width  int
	height int

	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
}

func initialModel(
	prompt string,
	historyValues []string,
	users []richtext.User,
	logger *zap.Logger,
	options Options,
) appModel {
	if logger == nil {
		logger = zap.NewNop()
	}

	textInput := chatinput.New(richtext.NewOrchestrator(options.RichText, logger))
	textInput.Prompt = prompt
	textInput.Highlight = options.Highlight
	textInput.SetHistoryValues(historyValues)
	textInput.SetUsers(users)
	textInput.Cursor.SetMode(cursor.CursorStatic)
	textInput.Focus()

	return appModel{
		logger:  logger,
		options: options,

		textInput: textInput,
		appState:  Active,

		borderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		titleStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (m appModel) Init() tea.Cmd {
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width
		return m, nil

	case UsersLoadedMsg:
		m.textInput.SetUsers(msg.Users)
		m.logger.Debug("composer users loaded", zap.Int("count", len(msg.Users)))
		return m, nil

	case terminateMsg:
		m.appState = Terminated
		return m, nil

	case interruptMsg:
		m.appState = Terminated
		m.interrupted = true
		return m, nil

	case eofMsg:
		m.appState = Terminated
		m.eof = true
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			row := msg.Y - m.popupTop()
			if m.textInput.ClickPopupRow(row, m.options.PopupHeight) {
				m.logger.Debug("composer popup row clicked", zap.Int("row", row))
			}
			return m, nil
		}
		if msg.Action == tea.MouseActionMotion {
			m.textInput.HoverPopupRow(msg.Y-m.popupTop(), m.options.PopupHeight)
			return m, nil
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.result = ""
			return m, tea.Sequence(interrupt, tea.Quit)
		}

		// Enter, tab and esc belong to the popup while it is open.
		if m.textInput.PopupOpen() {
			break
		}

		switch msg.String() {
		case "enter":
			input := m.textInput.Value()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}
			m.result = input
			return m, tea.Sequence(terminate, tea.Quit)

		case "ctrl+d":
			if strings.TrimSpace(m.textInput.Value()) == "" {
				return m, tea.Sequence(eof, tea.Quit)
			}
			return m, nil

		case "ctrl+l":
			return m, tea.ClearScreen
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// popupTop is the screen row of the first popup entry, right below the
// input line and the box's top border.
func (m appModel) popupTop() int {
	return strings.Count(m.textInput.View(), "\n") + 2
}

func (m appModel) View() string {
	// Once terminated, render nothing
	if m.appState == Terminated {
		return ""
	}

	inputStr := m.textInput.View()

	popup := m.textInput.PopupView(m.options.PopupHeight, 0)
	if popup == "" {
		return inputStr
	}

	return inputStr + "\n" + m.popupBox(popup)
}

// popupBox frames the popup rows with a rounded border titled by trigger
// kind, with the selection position in the bottom border.
func (m appModel) popupBox(popup string) string {
	state := m.textInput.PopupState()

	width := m.width
	if width <= 0 {
		width = 60
	}
	innerWidth := max(0, width-2)

	var result strings.Builder

	title := " " + state.Kind.String() + " "
	topLine := max(0, innerWidth-1-runewidth.StringWidth(title))
	result.WriteString(m.borderStyle.Render("╭─"))
	result.WriteString(m.titleStyle.Render(title))
	result.WriteString(m.borderStyle.Render(strings.Repeat("─", topLine) + "╮"))
	result.WriteString("\n")

	for _, line := range strings.Split(popup, "\n") {
		lineWidth := lipgloss.Width(line)
		if lineWidth > innerWidth {
			line = truncateWithAnsi(line, innerWidth)
			lineWidth = lipgloss.Width(line)
		}
		result.WriteString(m.borderStyle.Render("│"))
		result.WriteString(line)
		result.WriteString(strings.Repeat(" ", max(0, innerWidth-lineWidth)))
		result.WriteString(m.borderStyle.Render("│"))
		result.WriteString("\n")
	}

	counter := fmt.Sprintf(" %d/%d ", state.Selected+1, len(state.Candidates))
	bottomLine := max(0, innerWidth-runewidth.StringWidth(counter))
	result.WriteString(m.borderStyle.Render("╰" + strings.Repeat("─", bottomLine)))
	result.WriteString(m.titleStyle.Render(counter))
	result.WriteString(m.borderStyle.Render("╯"))

	return result.String()
}

// truncateWithAnsi truncates a string to maxWidth display columns, handling ANSI escape codes
func truncateWithAnsi(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	var result strings.Builder
	width := 0
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			result.WriteRune(r)
			continue
		}
		if inEscape {
			result.WriteRune(r)
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}

		runeWidth := runewidth.RuneWidth(r)
		if width+runeWidth > maxWidth {
			break
		}
		result.WriteRune(r)
		width += runeWidth
	}

	return result.String()
}

func (m appModel) getFinalOutput() string {
	m.textInput.SetValue(m.result)
	m.textInput.Blur()
	m.textInput.Engine().Reset()
	return m.textInput.View()
}

// Composer runs one bubbletea program per message. The user catalog
// outlives each program and is pushed into the running one when it changes.
type Composer struct {
	logger  *zap.Logger
	options Options

	mu      sync.Mutex
	users   []richtext.User
	program *tea.Program
}

func New(logger *zap.Logger, options Options) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{logger: logger, options: options}
}

// SetUsers replaces the mention catalog. It is safe to call from any
// goroutine, including while Compose is running.
func (c *Composer) SetUsers(users []richtext.User) {
	c.mu.Lock()
	c.users = append([]richtext.User(nil), users...)
	program := c.program
	c.mu.Unlock()

	if program != nil {
		program.Send(UsersLoadedMsg{Users: users})
	}
}

// Compose reads one message. It returns ErrInterrupted on Ctrl+C and io.EOF
// on Ctrl+D at an empty line.
func (c *Composer) Compose(prompt string, historyValues []string) (string, error) {
	c.mu.Lock()
	model := initialModel(prompt, historyValues, c.users, c.logger, c.options)
	var opts []tea.ProgramOption
	if c.options.Mouse {
		opts = append(opts, tea.WithAltScreen(), tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(model, opts...)
	c.program = p
	c.mu.Unlock()

	m, err := p.Run()

	c.mu.Lock()
	c.program = nil
	c.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("composer program failed: %w", err)
	}

	appModel, ok := m.(appModel)
	if !ok {
		c.logger.Error("composer resulted in an unexpected app model")
		panic("composer resulted in an unexpected app model")
	}

	if appModel.interrupted {
		return "", ErrInterrupted
	}
	if appModel.eof {
		return "", io.EOF
	}

	fmt.Print(resetCursorColumn + appModel.getFinalOutput() + "\n")

	return appModel.result, nil
}
