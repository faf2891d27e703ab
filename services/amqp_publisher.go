package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"livescore-service/logger"
)

// ReconnectConfig tunes the publisher's reconnect loop.
type ReconnectConfig struct {
	MaxRetries    int // 0 = retry forever
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultReconnectConfig returns the default exponential backoff.
func DefaultReconnectConfig() *ReconnectConfig {
	return &ReconnectConfig{
		MaxRetries:    0,
		InitialDelay:  1 * time.Second,
		MaxDelay:      60 * time.Second,
		BackoffFactor: 2.0,
	}
}

// AMQPPublisher fans reconciled match updates out to a topic exchange
// for downstream consumers. The connection is monitored and rebuilt
// with exponential backoff; while disconnected, Publish fails fast and
// the caller logs-and-continues (the feed and store are unaffected).
type AMQPPublisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// NewAMQPPublisher connects and declares the exchange. Callers treat a
// nil publisher as "fanout disabled".
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, err
	}
	go p.monitorConnection(DefaultReconnectConfig())
	return p, nil
}

// Publish sends one JSON message to the exchange.
func (p *AMQPPublisher) Publish(routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return fmt.Errorf("not connected")
	}

	return p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
}

// Close shuts the publisher down permanently.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) connect() error {
	logger.Printf("[AMQP] Connecting to %s...", p.url)

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = channel
	p.mu.Unlock()

	logger.Printf("[AMQP] ✅ Connected, exchange %q declared", p.exchange)
	return nil
}

func (p *AMQPPublisher) monitorConnection(config *ReconnectConfig) {
	retryCount := 0
	currentDelay := config.InitialDelay

	for {
		p.mu.Lock()
		conn := p.conn
		closed := p.closed
		p.mu.Unlock()
		if closed || conn == nil {
			return
		}

		closeErr := <-conn.NotifyClose(make(chan *amqp.Error))
		if closeErr == nil {
			logger.Println("[AMQP] Connection closed normally")
			return
		}

		logger.Errorf("[AMQP] ⚠️  Connection lost: %v", closeErr)

		p.mu.Lock()
		p.channel = nil
		p.conn = nil
		closed = p.closed
		p.mu.Unlock()
		if closed {
			return
		}

		for {
			if config.MaxRetries > 0 && retryCount >= config.MaxRetries {
				logger.Errorf("[AMQP] ❌ Max retries (%d) reached, giving up", config.MaxRetries)
				return
			}

			retryCount++
			logger.Printf("[AMQP] 🔄 Reconnecting in %v (attempt %d)...", currentDelay, retryCount)
			time.Sleep(currentDelay)

			if err := p.connect(); err != nil {
				logger.Errorf("[AMQP] ❌ Reconnect failed: %v", err)
				currentDelay = time.Duration(float64(currentDelay) * config.BackoffFactor)
				if currentDelay > config.MaxDelay {
					currentDelay = config.MaxDelay
				}
				continue
			}

			logger.Println("[AMQP] ✅ Reconnected successfully")
			retryCount = 0
			currentDelay = config.InitialDelay
			break
		}
	}
}
