package richtext

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// FilterUsers returns the users whose name or email contains query,
// ignoring case, in source order. An empty query matches every user.
func FilterUsers(query string, users []User) CandidateList {
	needle := strings.ToLower(query)
	matched := lo.Filter(users, func(user User, _ int) bool {
		return strings.Contains(strings.ToLower(user.Name), needle) ||
			strings.Contains(strings.ToLower(user.Email), needle)
	})
	return usersToCandidates(matched)
}

// FilterEmojis returns the built-in emoji whose name contains query,
// ignoring case.
func FilterEmojis(query string) CandidateList {
	return filterEmojis(query, DefaultEmojis)
}

func filterEmojis(query string, emojis []Emoji) CandidateList {
	needle := strings.ToLower(query)
	matched := lo.Filter(emojis, func(emoji Emoji, _ int) bool {
		return strings.Contains(strings.ToLower(emoji.Name), needle)
	})
	return emojisToCandidates(matched)
}

func usersToCandidates(users []User) CandidateList {
	return lo.Map(users, func(user User, _ int) Candidate { return user })
}

func emojisToCandidates(emojis []Emoji) CandidateList {
	return lo.Map(emojis, func(emoji Emoji, _ int) Candidate { return emoji })
}

// userSource adapts a user slice to fuzzy.Source, matching on name and
// email together.
type userSource []User

func (s userSource) String(i int) string { return s[i].Name + " " + s[i].Email }
func (s userSource) Len() int            { return len(s) }

type emojiSource []Emoji

func (s emojiSource) String(i int) string { return s[i].Name }
func (s emojiSource) Len() int            { return len(s) }

// Catalog holds the candidate sources for one input session. The user list
// is supplied by the host and replaced wholesale; emoji are built in.
type Catalog struct {
	users         []User
	emojis        []Emoji
	fuzzyFallback bool
}

func NewCatalog(options Options) *Catalog {
	return &Catalog{
		emojis:        DefaultEmojis,
		fuzzyFallback: options.FuzzyFallback,
	}
}

// SetUsers replaces the user catalog. The slice is copied.
func (c *Catalog) SetUsers(users []User) {
	c.users = append([]User(nil), users...)
}

func (c *Catalog) Users() []User {
	return c.users
}

// Candidates returns the filtered list for span, or nil when the span is
// not active.
func (c *Catalog) Candidates(span TriggerSpan) CandidateList {
	switch span.Kind {
	case KindMention:
		list := FilterUsers(span.Query, c.users)
		if len(list) == 0 && c.fuzzyFallback && span.Query != "" {
			matches := fuzzy.FindFrom(span.Query, userSource(c.users))
			return usersToCandidates(lo.Map(matches, func(m fuzzy.Match, _ int) User { return c.users[m.Index] }))
		}
		return list
	case KindEmoji:
		list := filterEmojis(span.Query, c.emojis)
		if len(list) == 0 && c.fuzzyFallback && span.Query != "" {
			matches := fuzzy.FindFrom(span.Query, emojiSource(c.emojis))
			return emojisToCandidates(lo.Map(matches, func(m fuzzy.Match, _ int) Emoji { return c.emojis[m.Index] }))
		}
		return list
	default:
		return nil
	}
}
