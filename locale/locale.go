// Package locale resolves the request language for the site and keeps every
// page URL prefixed with an explicit locale segment.
//
// Resolution is split in two halves: Resolver.Resolve is a pure function that
// returns a Decision, and Middleware applies that Decision to a live request
// (cookie write, redirect, request context).
package locale

import (
	"context"
	"strings"
)

// Locale is a supported site language tag.
type Locale string

const (
	Turkish Locale = "tr"
	English Locale = "en"
)

// Default is the locale used when neither cookie nor header selects one.
const Default = Turkish

// Supported lists every locale the site serves, in display order.
var Supported = []Locale{Turkish, English}

// Parse returns the supported Locale matching s.
func Parse(s string) (Locale, bool) {
	candidate := Locale(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range Supported {
		if l == candidate {
			return l, true
		}
	}
	return "", false
}

func (l Locale) String() string {
	return string(l)
}

type contextKey struct{}

// WithLocale stores l in ctx.
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the locale stored by Middleware, or Default.
func FromContext(ctx context.Context) Locale {
	if l, ok := ctx.Value(contextKey{}).(Locale); ok {
		return l
	}
	return Default
}
