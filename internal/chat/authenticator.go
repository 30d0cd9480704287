// Package chat implements two-party direct messaging: chat and
// message persistence, per-event socket authentication, and
// best-effort live delivery to the recipient's connection.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/johndosdos/tindahan/internal/auth"
	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/ws"
)

// UserDirectory resolves token subjects to full user records.
type UserDirectory interface {
	UserByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Authenticator resolves a socket to a user identity from the bearer
// token captured in its handshake headers. It has no side effects and
// is safe to call repeatedly; the delivery scan re-authenticates every
// registered socket on each send.
type Authenticator struct {
	tokenSecret string
	users       UserDirectory
}

func NewAuthenticator(tokenSecret string, users UserDirectory) *Authenticator {
	return &Authenticator{tokenSecret: tokenSecret, users: users}
}

func (a *Authenticator) Authenticate(ctx context.Context, sock ws.Socket) (model.User, error) {
	token, err := auth.BearerToken(sock.Authorization())
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", model.ErrUnauthorized, err)
	}

	userID, err := auth.ValidateJWT(token, a.tokenSecret)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", model.ErrUnauthorized, err)
	}

	user, err := a.users.UserByID(ctx, userID)
	if err != nil {
		// A valid token whose subject no longer resolves is treated
		// the same as a bad token.
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, fmt.Errorf("%w: user not found", model.ErrUnauthorized)
		}
		return model.User{}, fmt.Errorf("internal/chat: failed to resolve user: %w", err)
	}

	return user, nil
}
