package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/hydropath/atlas-ezo/ezo"
)

type stubToken struct {
	err error
}

func (t *stubToken) Wait() bool                     { return true }
func (t *stubToken) WaitTimeout(time.Duration) bool { return true }
func (t *stubToken) Error() error                   { return t.err }

func (t *stubToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// stubClient records the last publish; the embedded interface covers the
// methods Publish never touches.
type stubClient struct {
	paho.Client

	topic   string
	payload []byte
	pubErr  error
}

func (c *stubClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topic = topic
	c.payload = payload.([]byte)
	return &stubToken{err: c.pubErr}
}

func TestReadingTopic(t *testing.T) {
	if got := ReadingTopic("tank/ph"); got != "tank/ph/reading" {
		t.Errorf("ReadingTopic: got %q, want %q", got, "tank/ph/reading")
	}
}

func TestPublish(t *testing.T) {
	client := &stubClient{}
	pub := &MQTT{client: client, topic: "tank/ph"}

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	r := ezo.Reading{Value: "7.01", At: at, Err: errors.New("not serialized")}

	if err := pub.Publish(r); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if client.topic != "tank/ph/reading" {
		t.Errorf("topic: got %q, want %q", client.topic, "tank/ph/reading")
	}

	var decoded struct {
		Value string    `json:"value"`
		At    time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(client.payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.Value != "7.01" {
		t.Errorf("value: got %q, want %q", decoded.Value, "7.01")
	}
	if !decoded.At.Equal(at) {
		t.Errorf("timestamp: got %v, want %v", decoded.At, at)
	}

	// The Err field stays off the wire.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(client.payload, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["Err"]; ok {
		t.Error("payload carries the Err field")
	}
	if len(raw) != 2 {
		t.Errorf("payload fields: got %d, want 2 (value, timestamp)", len(raw))
	}
}

func TestPublish_TokenError(t *testing.T) {
	client := &stubClient{pubErr: errors.New("broker gone")}
	pub := &MQTT{client: client, topic: "tank/ph"}

	if err := pub.Publish(ezo.Reading{Value: "7.01"}); err == nil {
		t.Error("expected the token error to surface")
	}
}
