package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 10 * time.Second

// MQTTDispatcher publishes notifications to carwise/notify/<chat_id>.
// The downstream chat bridge subscribes there and forwards messages to
// the user. QoS 1 gives at-least-once delivery.
type MQTTDispatcher struct {
	client mqtt.Client
}

type notifyPayload struct {
	ChatID int64     `json:"chat_id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// NewMQTTDispatcher connects to the broker and returns a dispatcher.
func NewMQTTDispatcher(broker, clientID string) (*MQTTDispatcher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(publishTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s failed: %w", broker, err)
	}
	return &MQTTDispatcher{client: client}, nil
}

// Notify publishes one message for the chat.
func (d *MQTTDispatcher) Notify(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(notifyPayload{ChatID: chatID, Text: text, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("carwise/notify/%d", chatID)
	token := d.client.Publish(topic, 1, false, payload)

	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}
	return token.Error()
}

// Close disconnects from the broker.
func (d *MQTTDispatcher) Close() {
	d.client.Disconnect(250)
}
