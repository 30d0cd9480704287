package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/johndosdos/tindahan/internal/auth"
	"github.com/johndosdos/tindahan/internal/chat"
	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/store"
	"github.com/johndosdos/tindahan/internal/ws"
)

const testSecret = "handler-test-secret"

type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	chats []model.Chat
	msgs  []model.Message
}

func newMemStore(users ...model.User) *memStore {
	m := &memStore{users: make(map[uuid.UUID]model.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memStore) UserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func pairMatch(c model.Chat, a, b uuid.UUID) bool {
	return (c.User1.ID == a && c.User2.ID == b) || (c.User1.ID == b && c.User2.ID == a)
}

func (m *memStore) CreateChat(_ context.Context, user1, user2 uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.chats {
		if pairMatch(c, user1, user2) {
			return uuid.UUID{}, model.ErrChatExists
		}
	}

	chat := model.Chat{
		ID:        uuid.New(),
		User1:     m.users[user1].Public(),
		User2:     m.users[user2].Public(),
		CreatedAt: time.Now().UTC(),
	}
	m.chats = append(m.chats, chat)

	return chat.ID, nil
}

func (m *memStore) ChatByPair(_ context.Context, a, b uuid.UUID) (model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.chats {
		if pairMatch(c, a, b) {
			return c, nil
		}
	}
	return model.Chat{}, model.ErrNotFound
}

func (m *memStore) ChatByIDForUser(_ context.Context, chatID, userID uuid.UUID) (model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.chats {
		if c.ID == chatID && (c.User1.ID == userID || c.User2.ID == userID) {
			return c, nil
		}
	}
	return model.Chat{}, model.ErrNotFound
}

func (m *memStore) ChatsByUser(_ context.Context, userID uuid.UUID) ([]model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var chats []model.Chat
	for _, c := range m.chats {
		if c.User1.ID == userID || c.User2.ID == userID {
			chats = append(chats, c)
		}
	}
	return chats, nil
}

func (m *memStore) DeleteChat(_ context.Context, chatID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.chats {
		if c.ID == chatID && (c.User1.ID == userID || c.User2.ID == userID) {
			m.chats = append(m.chats[:i], m.chats[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateMessage(_ context.Context, params store.CreateMessageParams) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := model.Message{
		ID:        uuid.New(),
		ChatID:    params.ChatID,
		Type:      params.Type,
		Content:   params.Content,
		CreatedAt: time.Now().UTC(),
	}
	m.msgs = append(m.msgs, msg)

	return msg, nil
}

func (m *memStore) MessagesByChat(_ context.Context, chatID uuid.UUID) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var msgs []model.Message
	for _, msg := range m.msgs {
		if msg.ChatID == chatID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

type wsFixture struct {
	server   *httptest.Server
	service  *chat.Service
	store    *memStore
	registry *ws.Registry
	alice    model.User
	bob      model.User
}

func newWsFixture(t *testing.T) *wsFixture {
	t.Helper()

	alice := model.User{ID: uuid.New(), Name: "alice", Email: "alice@test.com"}
	bob := model.User{ID: uuid.New(), Name: "bob", Email: "bob@test.com"}

	db := newMemStore(alice, bob)
	registry := ws.NewRegistry()
	authenticator := chat.NewAuthenticator(testSecret, db)
	service := chat.NewService(db, db, db, registry, authenticator)
	gateway := chat.NewGateway(registry, authenticator, service)

	server := httptest.NewServer(ServeWs(gateway))
	t.Cleanup(server.Close)

	return &wsFixture{server: server, service: service, store: db, registry: registry, alice: alice, bob: bob}
}

// waitRegistered blocks until n sockets are registered. Registration
// happens on the server goroutine after the handshake, so a fresh dial
// may not be visible to the delivery scan yet.
func (f *wsFixture) waitRegistered(t *testing.T, n int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for f.registry.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("registry has %d sockets, want %d", f.registry.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (f *wsFixture) dial(t *testing.T, ctx context.Context, user *model.User) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	if user != nil {
		token, err := auth.MakeJWT(user.ID, testSecret, time.Minute)
		if err != nil {
			t.Fatalf("MakeJWT() error = %+v", err)
		}
		header.Set("Authorization", "Bearer "+token)
	}

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("websocket.Dial() error = %+v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	return conn
}

func sendEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string, payload any) {
	t.Helper()

	p, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %+v", err)
	}
	frame, err := json.Marshal(ws.Event{Name: event, Payload: p})
	if err != nil {
		t.Fatalf("marshal event: %+v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		t.Fatalf("conn.Write() error = %+v", err)
	}
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) ws.Event {
	t.Helper()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("conn.Read() error = %+v", err)
	}

	var ev ws.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal event: %+v", err)
	}
	return ev
}

func TestServeWsSendAndReceive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f := newWsFixture(t)

	existing, err := f.service.CreateOrGetChat(ctx, f.alice.ID, f.bob.ID)
	if err != nil {
		t.Fatalf("CreateOrGetChat() error = %+v", err)
	}

	bobConn := f.dial(t, ctx, &f.bob)
	aliceConn := f.dial(t, ctx, &f.alice)
	f.waitRegistered(t, 2)

	sendEvent(t, ctx, aliceConn, ws.EventMessageSend, chat.SendMessagePayload{
		ChatID:  existing.ID.String(),
		Content: "hello bob",
	})

	// Sender gets the persisted message echoed back.
	delivered := readEvent(t, ctx, aliceConn)
	if delivered.Name != ws.EventMessageDelivered {
		t.Fatalf("sender got event %q, want %q", delivered.Name, ws.EventMessageDelivered)
	}

	var echo model.Message
	if err := json.Unmarshal(delivered.Payload, &echo); err != nil {
		t.Fatalf("unmarshal delivered payload: %+v", err)
	}
	if echo.Content != "hello bob" {
		t.Errorf("delivered content = %q, want %q", echo.Content, "hello bob")
	}
	if echo.ChatID != existing.ID {
		t.Errorf("delivered chat id = %s, want %s", echo.ChatID, existing.ID)
	}

	// Counterpart gets the live push.
	received := readEvent(t, ctx, bobConn)
	if received.Name != ws.EventMessageReceived {
		t.Fatalf("recipient got event %q, want %q", received.Name, ws.EventMessageReceived)
	}

	var pushed model.Message
	if err := json.Unmarshal(received.Payload, &pushed); err != nil {
		t.Fatalf("unmarshal received payload: %+v", err)
	}
	if pushed.ID != echo.ID {
		t.Errorf("pushed message id = %s, want %s", pushed.ID, echo.ID)
	}
}

func TestServeWsErrorsKeepConnectionOpen(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f := newWsFixture(t)

	existing, err := f.service.CreateOrGetChat(ctx, f.alice.ID, f.bob.ID)
	if err != nil {
		t.Fatalf("CreateOrGetChat() error = %+v", err)
	}

	// No Authorization header at all.
	conn := f.dial(t, ctx, nil)

	sendEvent(t, ctx, conn, ws.EventMessageSend, chat.SendMessagePayload{
		ChatID:  existing.ID.String(),
		Content: "should not land",
	})

	ev := readEvent(t, ctx, conn)
	if ev.Name != ws.EventError {
		t.Fatalf("got event %q, want %q", ev.Name, ws.EventError)
	}

	var errPayload chat.ErrorPayload
	if err := json.Unmarshal(ev.Payload, &errPayload); err != nil {
		t.Fatalf("unmarshal error payload: %+v", err)
	}
	if errPayload.Event != ws.EventMessageSend {
		t.Errorf("error payload event = %q, want %q", errPayload.Event, ws.EventMessageSend)
	}
	if errPayload.Error != "Unauthorized" {
		t.Errorf("error payload = %q, want %q", errPayload.Error, "Unauthorized")
	}

	if msgs, _ := f.store.MessagesByChat(ctx, existing.ID); len(msgs) != 0 {
		t.Fatalf("unauthenticated send persisted %d messages", len(msgs))
	}

	// The failed event must not tear down the connection.
	sendEvent(t, ctx, conn, "bogus:event", struct{}{})

	ev = readEvent(t, ctx, conn)
	if ev.Name != ws.EventError {
		t.Fatalf("got event %q, want %q", ev.Name, ws.EventError)
	}
	if err := json.Unmarshal(ev.Payload, &errPayload); err != nil {
		t.Fatalf("unmarshal error payload: %+v", err)
	}
	if errPayload.Error != "unknown event" {
		t.Errorf("error payload = %q, want %q", errPayload.Error, "unknown event")
	}
}

func TestServeWsSendToUnknownChat(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f := newWsFixture(t)
	conn := f.dial(t, ctx, &f.alice)

	sendEvent(t, ctx, conn, ws.EventMessageSend, chat.SendMessagePayload{
		ChatID:  uuid.NewString(),
		Content: "into the void",
	})

	ev := readEvent(t, ctx, conn)
	if ev.Name != ws.EventError {
		t.Fatalf("got event %q, want %q", ev.Name, ws.EventError)
	}

	var errPayload chat.ErrorPayload
	if err := json.Unmarshal(ev.Payload, &errPayload); err != nil {
		t.Fatalf("unmarshal error payload: %+v", err)
	}
	if errPayload.Error != "Not Found" {
		t.Errorf("error payload = %q, want %q", errPayload.Error, "Not Found")
	}
}
