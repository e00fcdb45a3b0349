package richtext

// Options controls which triggers are recognised and how candidates are
// filtered.
type Options struct {
	EnableMentions  bool
	EnableEmojis    bool
	EnableAutoLinks bool

	MentionTrigger rune
	EmojiTrigger   rune

	// FuzzyFallback ranks candidates with a fuzzy matcher when plain
	// substring filtering finds nothing.
	FuzzyFallback bool
}

func NewOptions() Options {
	return Options{
		EnableMentions:  true,
		EnableEmojis:    true,
		EnableAutoLinks: true,
		MentionTrigger:  '@',
		EmojiTrigger:    ':',
	}
}

func (o Options) withDefaults() Options {
	if o.MentionTrigger == 0 {
		o.MentionTrigger = '@'
	}
	if o.EmojiTrigger == 0 {
		o.EmojiTrigger = ':'
	}
	return o
}
