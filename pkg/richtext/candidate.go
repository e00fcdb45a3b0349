package richtext

// TriggerKind identifies which completion source and insertion format apply.
type TriggerKind int

const (
	KindNone TriggerKind = iota
	KindMention
	KindEmoji
)

func (k TriggerKind) String() string {
	switch k {
	case KindMention:
		return "mention"
	case KindEmoji:
		return "emoji"
	default:
		return "none"
	}
}

// Candidate is an entry that can be spliced into the text in place of a
// trigger span.
type Candidate interface {
	Kind() TriggerKind
	// Label is the text the candidate is filtered and displayed by.
	Label() string
}

// CandidateList keeps filter order; it is never re-sorted.
type CandidateList []Candidate

// User is a mention candidate.
type User struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

func (u User) Kind() TriggerKind { return KindMention }
func (u User) Label() string     { return u.Name }

// Emoji is an emoji shortcode candidate.
type Emoji struct {
	Name  string
	Glyph string
}

func (e Emoji) Kind() TriggerKind { return KindEmoji }
func (e Emoji) Label() string     { return e.Name }

// InputBuffer is the text of the input surface and the cursor position,
// counted in runes.
type InputBuffer struct {
	Text   string
	Cursor int
}
