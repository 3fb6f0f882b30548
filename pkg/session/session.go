// Package session carries the caller's identity and display preferences
// through a request. A Session is built once per request by middleware and
// read by use cases via the request context; there is no package-level state.
package session

import (
	"context"
	"errors"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("theme must be light or dark")

// ParseTheme validates a stored or submitted theme. An empty value falls back
// to light.
func ParseTheme(value string) (Theme, error) {
	switch Theme(value) {
	case "":
		return ThemeLight, nil
	case ThemeLight, ThemeDark:
		return Theme(value), nil
	default:
		return ThemeLight, ErrInvalidTheme
	}
}

type Session struct {
	UserID string
	Theme  Theme
}

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// UserID returns the session user id or "" when no session is attached.
func UserID(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.UserID
}
