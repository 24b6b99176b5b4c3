package mqtt

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// RealClient subscribes to an actual MQTT broker.
type RealClient struct {
	client paho.Client
}

// NewRealClient connects to the given broker, retrying with exponential
// backoff before giving up. After the initial connect, paho's auto-reconnect
// keeps the session alive and re-establishes subscriptions.
func NewRealClient(broker, clientID string) (*RealClient, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetResumeSubs(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	err := backoff.Retry(func() error {
		token := client.Connect()
		if !token.WaitTimeout(10 * time.Second) {
			return fmt.Errorf("connection timeout")
		}
		return token.Error()
	}, bo)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealClient{client: client}, nil
}

// Subscribe registers a handler for the topic filter.
// QoS 1 (at-least-once) — the tracker tolerates duplicate deliveries.
func (c *RealClient) Subscribe(filter string, h Handler) error {
	token := c.client.Subscribe(filter, 1, func(_ paho.Client, msg paho.Message) {
		h(Message{Topic: msg.Topic(), Payload: msg.Payload()})
	})
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", filter, err)
	}
	return nil
}

// IsConnected reports the broker connection state.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
