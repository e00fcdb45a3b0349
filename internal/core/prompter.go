package core

import (
	"github.com/robottwo/chatline/pkg/composer"
)

// UserPrompter reads one message from the user. historyValues are previously
// sent messages, newest first.
type UserPrompter interface {
	Compose(prompt string, historyValues []string) (string, error)
}

var _ UserPrompter = (*composer.Composer)(nil)
