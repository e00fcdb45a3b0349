package composer

import "github.com/robottwo/chatline/pkg/richtext"

type Options struct {
	// PopupHeight is the number of candidate rows shown at once.
	PopupHeight int
	// Highlight colors mentions, emoji shortcodes and links in the line.
	Highlight bool
	// Mouse turns on the alternate screen so popup rows can be hovered and
	// clicked.
	Mouse    bool
	RichText richtext.Options
}

func NewOptions() Options {
	return Options{
		PopupHeight: 5,
		Highlight:   true,
		RichText:    richtext.NewOptions(),
	}
}
