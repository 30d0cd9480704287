package handler

import (
	"errors"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/johndosdos/tindahan/internal/auth"
	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/store"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register handles user account creation.
func Register(db *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req RegisterRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "Invalid request body.")
			return
		}
		if err := validate.Struct(req); err != nil {
			badRequest(w, err.Error())
			return
		}

		hashedPw, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("argon2id hash creation failed: %v", err)
			respondError(w, err)
			return
		}

		user, err := db.CreateUser(ctx, store.CreateUserParams{
			Name:           req.Name,
			Email:          req.Email,
			HashedPassword: hashedPw,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		slog.InfoContext(ctx, "user signed up", slog.String("email", user.Email))

		respondJSON(w, http.StatusCreated, user.Public())
	}
}

// Login verifies credentials and issues a bearer JWT.
func Login(db *store.Store, tokenSecret string, tokenExpiry time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req LoginRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "Invalid request body.")
			return
		}
		if err := validate.Struct(req); err != nil {
			badRequest(w, err.Error())
			return
		}

		user, err := db.UserByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				respondError(w, model.ErrUnauthorized)
				return
			}
			respondError(w, err)
			return
		}

		ok, err := auth.CheckPasswordHash(req.Password, user.HashedPassword)
		if err != nil {
			log.Printf("cannot verify password, hash may be corrupted: %v", err)
			respondError(w, err)
			return
		}
		if !ok {
			respondError(w, model.ErrUnauthorized)
			return
		}

		token, err := auth.MakeJWT(user.ID, tokenSecret, tokenExpiry)
		if err != nil {
			respondError(w, err)
			return
		}

		slog.InfoContext(ctx, "user logged in", slog.String("email", user.Email))

		respondJSON(w, http.StatusOK, map[string]string{"access_token": token})
	}
}
