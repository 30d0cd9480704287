package handler

import (
	"log"
	"net/http"

	"github.com/johndosdos/tindahan/internal/auth"
	"github.com/johndosdos/tindahan/internal/store"
)

// Me returns the authenticated caller's own profile.
func Me(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			log.Printf("%v", err)
			respondError(w, err)
			return
		}

		user, err := db.UserByID(ctx, userID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, user.Public())
	}
}

// ListUsers returns every user's public profile, for picking a chat
// counterpart.
func ListUsers(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := db.ListUsers(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, users)
	}
}
