package bash

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mvdan.cc/sh/v3/interp"

	"github.com/robottwo/chatline/pkg/richtext"
)

const userBuiltin = "chatline_user"

// UserCollector records the users declared in the rc file with
//
//	chatline_user <id> <name> [email]
//
// A later declaration with the same id replaces the earlier one.
type UserCollector struct {
	mu    sync.Mutex
	users []richtext.User
}

func NewUserCollector() *UserCollector {
	return &UserCollector{}
}

// Handler is an interp.ExecHandlers middleware serving the chatline_user
// builtin.
func (c *UserCollector) Handler() func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != userBuiltin {
				return next(ctx, args)
			}

			hc := interp.HandlerCtx(ctx)
			if len(args) < 3 || len(args) > 4 {
				fmt.Fprintf(hc.Stderr, "usage: %s <id> <name> [email]\n", userBuiltin)
				return interp.NewExitStatus(2)
			}

			user := richtext.User{
				ID:   strings.TrimSpace(args[1]),
				Name: strings.TrimSpace(args[2]),
			}
			if len(args) == 4 {
				user.Email = strings.TrimSpace(args[3])
			}
			if user.ID == "" || user.Name == "" {
				fmt.Fprintf(hc.Stderr, "%s: id and name must not be empty\n", userBuiltin)
				return interp.NewExitStatus(2)
			}

			c.add(user)
			return nil
		}
	}
}

func (c *UserCollector) add(user richtext.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.users {
		if existing.ID == user.ID {
			c.users[i] = user
			return
		}
	}
	c.users = append(c.users, user)
}

func (c *UserCollector) Users() []richtext.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]richtext.User(nil), c.users...)
}

// MergeUsers appends extra users whose id is not already in base.
func MergeUsers(base, extra []richtext.User) []richtext.User {
	seen := make(map[string]bool, len(base))
	merged := make([]richtext.User, 0, len(base)+len(extra))
	for _, u := range base {
		seen[u.ID] = true
		merged = append(merged, u)
	}
	for _, u := range extra {
		if !seen[u.ID] {
			seen[u.ID] = true
			merged = append(merged, u)
		}
	}
	return merged
}
