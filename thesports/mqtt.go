package thesports

import (
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"livescore-service/logger"
)

const (
	// DefaultMQTTBroker is the default MQTT broker address
	DefaultMQTTBroker = "ssl://mq.thesports.com:443"

	// QoSAtLeastOnce is the QoS level used for feed subscriptions
	QoSAtLeastOnce byte = 1
)

// ErrConnectTimeout is returned when the broker does not answer the
// connect attempt within the caller's deadline.
var ErrConnectTimeout = errors.New("mqtt connect timed out")

// MessageHandler handles one inbound feed message.
type MessageHandler func(topic string, payload []byte)

// MQTTClient maintains the persistent push-feed subscription.
// Subscriptions survive reconnects: they are replayed from the
// registry every time the broker connection is (re)established.
type MQTTClient struct {
	broker string
	user   string
	secret string
	client mqtt.Client

	mu   sync.RWMutex
	subs map[string]MessageHandler
}

// NewMQTTClient creates a push-feed client for the given broker.
func NewMQTTClient(broker, user, secret string) *MQTTClient {
	if broker == "" {
		broker = DefaultMQTTBroker
	}
	return &MQTTClient{
		broker: broker,
		user:   user,
		secret: secret,
		subs:   make(map[string]MessageHandler),
	}
}

// Connect establishes the broker connection, waiting at most timeout.
// On timeout the attempt keeps running in the background via paho's
// auto-reconnect, but the caller gets ErrConnectTimeout and can
// proceed without realtime data.
func (c *MQTTClient) Connect(timeout time.Duration) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.broker)
	opts.SetUsername(c.user)
	opts.SetPassword(c.secret)
	opts.SetClientID(fmt.Sprintf("livescore_go_%d", time.Now().Unix()))

	opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: false})

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(opts)

	token := c.client.Connect()
	if !token.WaitTimeout(timeout) {
		return ErrConnectTimeout
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to connect: %w", token.Error())
	}

	return nil
}

// Disconnect closes the broker connection.
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}

// IsConnected returns whether the client is connected
func (c *MQTTClient) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Subscribe registers a handler for a topic and subscribes if the
// connection is already up. The registration is kept so the topic is
// re-subscribed after every reconnect.
func (c *MQTTClient) Subscribe(topic string, handler MessageHandler) error {
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()

	if !c.IsConnected() {
		return nil
	}
	return c.subscribe(topic, handler)
}

func (c *MQTTClient) subscribe(topic string, handler MessageHandler) error {
	token := c.client.Subscribe(topic, QoSAtLeastOnce, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}

	logger.Printf("[MQTT] Subscribed to topic: %s", topic)
	return nil
}

func (c *MQTTClient) onConnect(_ mqtt.Client) {
	logger.Println("[MQTT] ✅ Connected to broker")

	c.mu.RLock()
	defer c.mu.RUnlock()
	for topic, handler := range c.subs {
		if err := c.subscribe(topic, handler); err != nil {
			logger.Errorf("[MQTT] ❌ Resubscribe failed for %s: %v", topic, err)
		}
	}
}

func (c *MQTTClient) onConnectionLost(_ mqtt.Client, err error) {
	logger.Errorf("[MQTT] ⚠️  Connection lost: %v", err)
}
