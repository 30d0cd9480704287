package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/johndosdos/tindahan/internal/auth"
	"github.com/johndosdos/tindahan/internal/chat"
	"github.com/johndosdos/tindahan/internal/model"
)

type InitiateChatRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// CreateChat starts (or returns) the caller's chat with the target
// user. The operation is idempotent per unordered pair.
func CreateChat(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		var req InitiateChatRequest
		if err := decodeBody(r, &req); err != nil {
			badRequest(w, "Invalid request body.")
			return
		}
		if err := validate.Struct(req); err != nil {
			badRequest(w, err.Error())
			return
		}

		targetID, err := uuid.Parse(req.UserID)
		if err != nil {
			badRequest(w, "Invalid user id.")
			return
		}
		if targetID == callerID {
			badRequest(w, "Cannot start a chat with yourself.")
			return
		}

		created, err := svc.CreateOrGetChat(ctx, callerID, targetID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, created)
	}
}

func ListChats(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		chats, err := svc.ListChats(ctx, callerID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, chats)
	}
}

func GetChat(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		chatID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		found, err := svc.GetChat(ctx, chatID, callerID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, found)
	}
}

// ListChatMessages returns a chat's history oldest-first, only to its
// participants.
func ListChatMessages(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		chatID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		messages, err := svc.ListMessages(ctx, chatID, callerID)
		if err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, messages)
	}
}

func DeleteChat(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		callerID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, err)
			return
		}

		chatID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, model.ErrNotFound)
			return
		}

		if err := svc.DeleteChat(ctx, chatID, callerID); err != nil {
			respondError(w, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}
