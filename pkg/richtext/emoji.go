package richtext

// DefaultEmojis is the built-in shortcode catalog offered after the emoji
// trigger.
var DefaultEmojis = []Emoji{
	{Name: "smile", Glyph: "😄"},
	{Name: "heart", Glyph: "❤️"},
	{Name: "thumbsup", Glyph: "👍"},
	{Name: "thumbsdown", Glyph: "👎"},
	{Name: "fire", Glyph: "🔥"},
	{Name: "rocket", Glyph: "🚀"},
	{Name: "wave", Glyph: "👋"},
	{Name: "eyes", Glyph: "👀"},
	{Name: "clap", Glyph: "👏"},
	{Name: "tada", Glyph: "🎉"},
}
