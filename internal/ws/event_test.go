package ws

import (
	"encoding/json"
	"testing"
)

func TestOutboundWireShape(t *testing.T) {
	p, err := json.Marshal(outbound{
		Name:    EventMessageReceived,
		Payload: map[string]string{"content": "hi"},
	})
	if err != nil {
		t.Fatalf("marshal outbound: %+v", err)
	}

	want := `{"event":"message:received","payload":{"content":"hi"}}`
	if string(p) != want {
		t.Errorf("wire frame = %s, want %s", p, want)
	}
}

func TestEventDecodesClientFrame(t *testing.T) {
	frame := []byte(`{"event":"message:send","payload":{"chatId":"abc","content":"hello"}}`)

	var ev Event
	if err := json.Unmarshal(frame, &ev); err != nil {
		t.Fatalf("unmarshal event: %+v", err)
	}
	if ev.Name != EventMessageSend {
		t.Errorf("event name = %q, want %q", ev.Name, EventMessageSend)
	}
	if len(ev.Payload) == 0 {
		t.Error("payload was not captured")
	}
}
