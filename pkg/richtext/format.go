package richtext

import "fmt"

// Formatter renders a candidate as the token inserted into the message.
type Formatter func(Candidate) (string, bool)

// Formatters maps each trigger kind to its insertion token format. These
// formats are what downstream message consumers parse:
//
//	mention: <@{id}|{name}>
//	emoji:   :{name}:
var Formatters = map[TriggerKind]Formatter{
	KindMention: formatMention,
	KindEmoji:   formatEmoji,
}

func formatMention(c Candidate) (string, bool) {
	user, ok := c.(User)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("<@%s|%s>", user.ID, user.Name), true
}

func formatEmoji(c Candidate) (string, bool) {
	emoji, ok := c.(Emoji)
	if !ok {
		return "", false
	}
	return fmt.Sprintf(":%s:", emoji.Name), true
}

// FormatCandidate returns the insertion token for c.
func FormatCandidate(c Candidate) (string, bool) {
	if c == nil {
		return "", false
	}
	format, ok := Formatters[c.Kind()]
	if !ok {
		return "", false
	}
	return format(c)
}
