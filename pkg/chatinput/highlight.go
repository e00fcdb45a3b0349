package chatinput

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	defaultStyle = styles.Get("monokai")

	// messageLexer tokenises a chat message into committed mentions, emoji
	// shortcodes, links and a trigger still being typed.
	messageLexer = chroma.MustNewLexer(
		&chroma.Config{Name: "chatline"},
		func() chroma.Rules {
			return chroma.Rules{
				"root": {
					{Pattern: `<@[^|<>\s]+\|[^<>]+>`, Type: chroma.NameTag},
					{Pattern: `<https?://[^\s<>]+>`, Type: chroma.NameAttribute},
					{Pattern: `https?://[^\s<>]+`, Type: chroma.NameAttribute},
					{Pattern: `:[a-zA-Z0-9_+\-]+:`, Type: chroma.LiteralStringSymbol},
					{Pattern: `@[a-zA-Z0-9_]*`, Type: chroma.Keyword},
					{Pattern: `[^<@:h]+`, Type: chroma.Text},
					{Pattern: `.`, Type: chroma.Text},
				},
			}
		},
	)
)

// Highlight returns a slice of strings, where each element is the ANSI-styled
// representation of the corresponding rune in the input.
func Highlight(input []rune) []string {
	if len(input) == 0 {
		return nil
	}

	iterator, err := messageLexer.Tokenise(nil, string(input))
	if err != nil {
		result := make([]string, len(input))
		for i, r := range input {
			result[i] = string(r)
		}
		return result
	}

	result := make([]string, 0, len(input))
	for _, token := range iterator.Tokens() {
		style := styleEntryToLipgloss(defaultStyle.Get(token.Type))
		for _, r := range token.Value {
			if token.Type == chroma.Text {
				result = append(result, string(r))
				continue
			}
			result = append(result, style.Render(string(r)))
		}
	}

	// The lexer may append a trailing newline; keep one entry per rune.
	if len(result) < len(input) {
		for i := len(result); i < len(input); i++ {
			result = append(result, string(input[i]))
		}
	} else if len(result) > len(input) {
		result = result[:len(input)]
	}

	return result
}

func styleEntryToLipgloss(entry chroma.StyleEntry) lipgloss.Style {
	style := lipgloss.NewStyle()

	if entry.Colour.IsSet() {
		style = style.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		style = style.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		style = style.Underline(true)
	}

	return style
}
