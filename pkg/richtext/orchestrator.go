package richtext

import "go.uber.org/zap"

// Command is a navigation request for an open popup.
type Command int

const (
	CommandNone Command = iota
	CommandNext
	CommandPrevious
	CommandCommit
	CommandEscape
)

func (c Command) String() string {
	switch c {
	case CommandNext:
		return "next"
	case CommandPrevious:
		return "previous"
	case CommandCommit:
		return "commit"
	case CommandEscape:
		return "escape"
	default:
		return "none"
	}
}

// CommandForKey maps a key name to a popup command. Both DOM style names
// ("ArrowDown") and bubbletea names ("down") are understood.
func CommandForKey(key string) Command {
	switch key {
	case "down", "ArrowDown":
		return CommandNext
	case "up", "ArrowUp":
		return CommandPrevious
	case "enter", "Enter", "tab", "Tab":
		return CommandCommit
	case "esc", "escape", "Escape":
		return CommandEscape
	default:
		return CommandNone
	}
}

// Orchestrator owns the input buffer and popup state of one input surface
// and sequences scanning, filtering and splicing for each input event.
type Orchestrator struct {
	options   Options
	scanner   *Scanner
	catalog   *Catalog
	selection Selection
	buffer    InputBuffer
	logger    *zap.Logger
}

func NewOrchestrator(options Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	options = options.withDefaults()
	return &Orchestrator{
		options: options,
		scanner: NewScanner(options),
		catalog: NewCatalog(options),
		logger:  logger,
	}
}

func (o *Orchestrator) Options() Options {
	return o.options
}

// SetUsers installs the session's user catalog. An open popup is not
// refreshed until the next text change.
func (o *Orchestrator) SetUsers(users []User) {
	o.catalog.SetUsers(users)
	o.logger.Debug("richtext users loaded", zap.Int("count", len(users)))
}

func (o *Orchestrator) Buffer() InputBuffer {
	return o.buffer
}

func (o *Orchestrator) State() SelectionState {
	return o.selection.Snapshot()
}

// Reset clears the buffer and closes any popup.
func (o *Orchestrator) Reset() {
	o.buffer = InputBuffer{}
	o.selection.Close()
}

// TextChanged records a new buffer from the input surface and recomputes
// the popup from scratch.
func (o *Orchestrator) TextChanged(text string, cursor int) SelectionState {
	o.buffer = InputBuffer{Text: text, Cursor: cursor}
	o.rescan()
	return o.selection.Snapshot()
}

func (o *Orchestrator) rescan() {
	span := o.scanner.Scan(o.buffer.Text, o.buffer.Cursor)
	if !span.Active() {
		o.selection.Close()
		return
	}

	candidates := o.catalog.Candidates(span)
	o.selection.Open(span, candidates)
	o.logger.Debug("richtext trigger scanned",
		zap.Stringer("kind", span.Kind),
		zap.String("query", span.Query),
		zap.Int("start", span.Start),
		zap.Int("candidates", len(candidates)))
}

// HandleKey routes a key press to the popup. It returns true when the key
// was consumed and must not reach the text field.
func (o *Orchestrator) HandleKey(key string) bool {
	return o.HandleCommand(CommandForKey(key))
}

// HandleCommand applies cmd to an open popup. Commands are ignored, and not
// consumed, while the popup is closed.
func (o *Orchestrator) HandleCommand(cmd Command) bool {
	if !o.selection.IsOpen() {
		return false
	}

	switch cmd {
	case CommandNext:
		o.selection.Next()
	case CommandPrevious:
		o.selection.Previous()
	case CommandCommit:
		o.commit()
	case CommandEscape:
		o.selection.Escape()
	default:
		return false
	}
	return true
}

// CommitAt commits the candidate at index, as when a popup row is clicked.
func (o *Orchestrator) CommitAt(index int) bool {
	if !o.selection.SelectAt(index) {
		return false
	}
	return o.commit()
}

// SelectAt moves the highlight without committing.
func (o *Orchestrator) SelectAt(index int) bool {
	return o.selection.SelectAt(index)
}

func (o *Orchestrator) commit() bool {
	candidate, span, ok := o.selection.Commit()
	if !ok {
		return false
	}

	text, cursor, ok := SpliceCandidate(o.buffer.Text, span, candidate)
	if !ok {
		o.logger.Warn("richtext stale trigger span, commit ignored",
			zap.String("text", o.buffer.Text),
			zap.Int("start", span.Start),
			zap.String("query", span.Query))
		return false
	}

	o.buffer = InputBuffer{Text: text, Cursor: cursor}
	o.logger.Debug("richtext candidate committed",
		zap.Stringer("kind", span.Kind),
		zap.String("label", candidate.Label()),
		zap.Int("cursor", cursor))
	return true
}

// Paste handles clipboard text. When linkifying changes it, the rewritten
// text is inserted at the cursor and Paste returns true so the caller
// suppresses its own insertion. Otherwise the caller inserts raw itself and
// reports the result through TextChanged.
func (o *Orchestrator) Paste(raw string) bool {
	if !o.options.EnableAutoLinks {
		return false
	}

	processed := LinkifyPastedText(raw)
	if processed == raw {
		return false
	}

	o.buffer = InsertAtCursor(o.buffer, processed)
	o.rescan()
	o.logger.Debug("richtext paste linkified", zap.Int("cursor", o.buffer.Cursor))
	return true
}
