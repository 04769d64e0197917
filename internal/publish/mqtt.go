// Package publish forwards polled sensor readings to external consumers.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/hydropath/atlas-ezo/ezo"
)

const connectTimeout = 5 * time.Second

// MQTT publishes sensor readings to an MQTT broker.
type MQTT struct {
	client paho.Client
	topic  string
}

// ReadingTopic returns the topic readings are published on under root.
func ReadingTopic(root string) string {
	return root + "/reading"
}

// NewMQTT connects to the broker and returns a publisher rooted at topic.
func NewMQTT(brokerURL, clientID, topic string) (*MQTT, error) {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}

	return &MQTT{client: client, topic: topic}, nil
}

// Publish sends one reading as JSON at QoS 0; samples are not queued for
// redelivery.
func (m *MQTT) Publish(r ezo.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	token := m.client.Publish(ReadingTopic(m.topic), 0, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
