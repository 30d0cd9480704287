package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/johndosdos/tindahan/internal/auth"
	"github.com/johndosdos/tindahan/internal/chat"
	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/ws"
)

type chatAPIFixture struct {
	router *chi.Mux
	alice  model.User
	bob    model.User
	eve    model.User
}

func newChatAPIFixture(t *testing.T) *chatAPIFixture {
	t.Helper()

	alice := model.User{ID: uuid.New(), Name: "alice", Email: "alice@test.com"}
	bob := model.User{ID: uuid.New(), Name: "bob", Email: "bob@test.com"}
	eve := model.User{ID: uuid.New(), Name: "eve", Email: "eve@test.com"}

	db := newMemStore(alice, bob, eve)
	registry := ws.NewRegistry()
	authenticator := chat.NewAuthenticator(testSecret, db)
	svc := chat.NewService(db, db, db, registry, authenticator)

	r := chi.NewRouter()
	r.Post("/chats", CreateChat(svc))
	r.Get("/chats", ListChats(svc))
	r.Get("/chats/{id}", GetChat(svc))
	r.Get("/chats/{id}/messages", ListChatMessages(svc))
	r.Delete("/chats/{id}", DeleteChat(svc))

	return &chatAPIFixture{router: r, alice: alice, bob: bob, eve: eve}
}

// do issues a request as the given user, the way the auth middleware
// would have prepared it.
func (f *chatAPIFixture) do(t *testing.T, method, target string, body any, asUser uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %+v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, asUser))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func (f *chatAPIFixture) createChat(t *testing.T, initiator, target uuid.UUID) model.Chat {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/chats", InitiateChatRequest{UserID: target.String()}, initiator)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /chats = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}

	var created model.Chat
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode chat: %+v", err)
	}
	return created
}

func TestCreateChatHandler(t *testing.T) {
	t.Run("repeated_create_returns_same_chat", func(t *testing.T) {
		f := newChatAPIFixture(t)

		first := f.createChat(t, f.alice.ID, f.bob.ID)
		second := f.createChat(t, f.bob.ID, f.alice.ID)

		if first.ID != second.ID {
			t.Errorf("got two chats for one pair: %s vs %s", first.ID, second.ID)
		}
	})

	t.Run("self_chat_rejected", func(t *testing.T) {
		f := newChatAPIFixture(t)

		rec := f.do(t, http.MethodPost, "/chats",
			InitiateChatRequest{UserID: f.alice.ID.String()}, f.alice.ID)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("POST /chats = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown_target_is_not_found", func(t *testing.T) {
		f := newChatAPIFixture(t)

		rec := f.do(t, http.MethodPost, "/chats",
			InitiateChatRequest{UserID: uuid.NewString()}, f.alice.ID)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("POST /chats = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("malformed_user_id", func(t *testing.T) {
		f := newChatAPIFixture(t)

		rec := f.do(t, http.MethodPost, "/chats",
			InitiateChatRequest{UserID: "not-a-uuid"}, f.alice.ID)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("POST /chats = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestGetChatHandler(t *testing.T) {
	f := newChatAPIFixture(t)
	existing := f.createChat(t, f.alice.ID, f.bob.ID)

	t.Run("participant", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/chats/"+existing.ID.String(), nil, f.bob.ID)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /chats/{id} = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("non_participant_sees_not_found", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/chats/"+existing.ID.String(), nil, f.eve.ID)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET /chats/{id} = %d, want %d", rec.Code, http.StatusNotFound)
		}

		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode error body: %+v", err)
		}
		if body.Error != "Not found" {
			t.Errorf("error = %q, want %q", body.Error, "Not found")
		}
	})

	t.Run("garbage_id_maps_to_not_found", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/chats/not-a-uuid", nil, f.alice.ID)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET /chats/{id} = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestListChatMessagesHandler(t *testing.T) {
	f := newChatAPIFixture(t)
	existing := f.createChat(t, f.alice.ID, f.bob.ID)

	rec := f.do(t, http.MethodGet, "/chats/"+existing.ID.String()+"/messages", nil, f.eve.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET messages as non-participant = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteChatHandler(t *testing.T) {
	f := newChatAPIFixture(t)
	existing := f.createChat(t, f.alice.ID, f.bob.ID)

	t.Run("non_participant_sees_not_found", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/chats/"+existing.ID.String(), nil, f.eve.ID)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("DELETE /chats/{id} = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("participant_deletes", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/chats/"+existing.ID.String(), nil, f.alice.ID)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("DELETE /chats/{id} = %d, want %d", rec.Code, http.StatusNoContent)
		}

		rec = f.do(t, http.MethodGet, "/chats/"+existing.ID.String(), nil, f.alice.ID)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET after delete = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
