package richtext

import (
	"regexp"
	"unicode/utf8"
)

const (
	mentionQueryClass = `[a-zA-Z0-9_]`
	emojiQueryClass   = `[a-zA-Z0-9_+\-]`
)

// TriggerSpan is the open, not yet committed token that ends at the cursor.
// A zero TriggerSpan has kind KindNone.
type TriggerSpan struct {
	Kind    TriggerKind
	Trigger rune
	// Start is the rune offset of the trigger character.
	Start int
	Query string
}

// Active reports whether the span refers to an open trigger.
func (s TriggerSpan) Active() bool {
	return s.Kind != KindNone
}

// End is the rune offset just past the query, which is where the cursor was
// when the span was scanned.
func (s TriggerSpan) End() int {
	return s.Start + 1 + utf8.RuneCountInString(s.Query)
}

type triggerRule struct {
	kind    TriggerKind
	trigger rune
	pattern *regexp.Regexp
}

// Scanner finds the trigger span immediately before a cursor.
type Scanner struct {
	rules []triggerRule
}

// NewScanner builds a scanner for the enabled triggers. Mentions are always
// tried before emoji.
func NewScanner(options Options) *Scanner {
	options = options.withDefaults()

	var rules []triggerRule
	if options.EnableMentions {
		rules = append(rules, newTriggerRule(KindMention, options.MentionTrigger, mentionQueryClass))
	}
	if options.EnableEmojis {
		rules = append(rules, newTriggerRule(KindEmoji, options.EmojiTrigger, emojiQueryClass))
	}
	return &Scanner{rules: rules}
}

func newTriggerRule(kind TriggerKind, trigger rune, class string) triggerRule {
	return triggerRule{
		kind:    kind,
		trigger: trigger,
		pattern: regexp.MustCompile(regexp.QuoteMeta(string(trigger)) + "(" + class + "*)$"),
	}
}

// Scan returns the span whose trigger character is followed by an unbroken
// run of query characters reaching exactly up to cursor. It returns a
// KindNone span when no trigger is open.
func (s *Scanner) Scan(text string, cursor int) TriggerSpan {
	runes := []rune(text)
	cursor = clamp(cursor, 0, len(runes))
	prefix := string(runes[:cursor])

	for _, rule := range s.rules {
		match := rule.pattern.FindStringSubmatch(prefix)
		if match == nil {
			continue
		}
		query := match[1]
		return TriggerSpan{
			Kind:    rule.kind,
			Trigger: rule.trigger,
			Start:   cursor - 1 - utf8.RuneCountInString(query),
			Query:   query,
		}
	}

	return TriggerSpan{}
}

func clamp(v, low, high int) int {
	if high < low {
		low, high = high, low
	}
	return min(high, max(low, v))
}
