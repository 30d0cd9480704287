package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
)

// Middleware validates the client's bearer JWT and stores the user ID
// in the request context.
func Middleware(next http.Handler, tokenSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			unauthorized(w)
			return
		}

		userID, err := ValidateJWT(token, tokenSecret)
		if err != nil {
			log.Printf("internal/auth: rejected token: %v", err)
			unauthorized(w)
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
		next.ServeHTTP(w, r)
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	//nolint:errcheck
	json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
