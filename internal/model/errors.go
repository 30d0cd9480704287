package model

import "errors"

var (
	// ErrNotFound covers both a missing resource and a resource the
	// caller may not see. The two are intentionally indistinguishable
	// so that lookups never leak existence.
	ErrNotFound = errors.New("not found")

	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserExists signals a duplicate email at registration.
	ErrUserExists = errors.New("user already exists")

	// ErrChatExists signals that a chat for the same unordered pair
	// was persisted concurrently. Callers retry as a lookup.
	ErrChatExists = errors.New("chat already exists")
)
