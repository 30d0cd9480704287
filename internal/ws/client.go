package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Client wraps a single websocket connection. The Authorization
// header captured at handshake time sticks to the connection so that
// every event, and every delivery scan, can re-authenticate it.
type Client struct {
	id         uuid.UUID
	authHeader string
	conn       *websocket.Conn
	sendCh     chan outbound
}

func NewClient(conn *websocket.Conn, authHeader string) *Client {
	return &Client{
		id:         uuid.New(),
		authHeader: authHeader,
		conn:       conn,
		sendCh:     make(chan outbound, 64),
	}
}

func (c *Client) ID() uuid.UUID { return c.id }

func (c *Client) Authorization() string { return c.authHeader }

// Send enqueues an event for the write pump. The send never blocks;
// when the client's buffer is full the event is dropped and Send
// reports false.
func (c *Client) Send(event string, payload any) bool {
	select {
	case c.sendCh <- outbound{Name: event, Payload: payload}:
		return true
	default:
		log.Printf("internal/ws: dropping %q event - client %s is slow", event, c.id)
		return false
	}
}

// WritePump drains the outbound queue onto the wire. It returns when
// the context is cancelled or the connection breaks.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case ev := <-c.sendCh:
			p, err := json.Marshal(ev)
			if err != nil {
				log.Printf("internal/ws: failed to encode %q event: %v", ev.Name, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = c.conn.Write(writeCtx, websocket.MessageText, p)
			cancel()
			if err != nil {
				log.Printf("internal/ws: write to client %s failed: %v", c.id, err)
				return
			}

		case <-ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "context cancelled")
			return
		}
	}
}

// ReadEvent blocks for the next client event on the wire.
func (c *Client) ReadEvent(ctx context.Context) (Event, error) {
	var ev Event

	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return ev, err
	}

	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, err
	}

	return ev, nil
}
