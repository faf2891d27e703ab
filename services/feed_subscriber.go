package services

import (
	"errors"
	"time"

	"livescore-service/config"
	"livescore-service/logger"
	"livescore-service/thesports"
)

const (
	// feedConnectTimeout bounds the initial broker handshake; past it
	// the service proceeds without realtime data while the client
	// keeps retrying in the background.
	feedConnectTimeout = 10 * time.Second

	// feedQueueSize bounds the decode→reconcile queue.
	feedQueueSize = 256
)

// FeedSubscriber owns the push-feed connection. Inbound payloads are
// normalized into units and pushed through a bounded queue consumed by
// a single worker, which preserves per-match processing order.
type FeedSubscriber struct {
	cfg        *config.Config
	reconciler *Reconciler
	client     *thesports.MQTTClient

	queue chan thesports.PushUnit
	stop  chan struct{}
	done  chan struct{}
}

func NewFeedSubscriber(cfg *config.Config, reconciler *Reconciler) *FeedSubscriber {
	return &FeedSubscriber{
		cfg:        cfg,
		reconciler: reconciler,
		queue:      make(chan thesports.PushUnit, feedQueueSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start connects to the feed and begins processing. Missing
// credentials and connect failures are not fatal: the service degrades
// to poll-only mode and the poll path stays the sole data source.
func (s *FeedSubscriber) Start() error {
	if !s.cfg.HasFeedCredentials() {
		logger.Println("[Feed] ⚠️  No feed credentials configured, running in poll-only mode")
		close(s.done)
		return nil
	}

	s.client = thesports.NewMQTTClient(s.cfg.MQTTBroker, s.cfg.TheSportsUser, s.cfg.TheSportsSecret)

	// Register before connecting so the subscription is replayed on
	// the first connect and on every reconnect.
	if err := s.client.Subscribe(s.cfg.FeedTopic, s.handleMessage); err != nil {
		logger.Errorf("[Feed] ❌ Subscribe failed: %v", err)
	}

	go s.worker()

	logger.Printf("[Feed] 🔌 Connecting to %s...", s.cfg.MQTTBroker)
	if err := s.client.Connect(feedConnectTimeout); err != nil {
		if errors.Is(err, thesports.ErrConnectTimeout) {
			logger.Errorf("[Feed] ⚠️  Connect timed out after %v, continuing without realtime", feedConnectTimeout)
		} else {
			logger.Errorf("[Feed] ⚠️  Connect failed, continuing without realtime: %v", err)
		}
		return nil
	}

	logger.Printf("[Feed] ✅ Subscribed to %s", s.cfg.FeedTopic)
	return nil
}

// Stop tears down the connection and drains the worker.
func (s *FeedSubscriber) Stop() {
	close(s.stop)
	if s.client != nil {
		s.client.Disconnect()
	}
	<-s.done
}

// handleMessage runs on the MQTT client's callback goroutine; it only
// normalizes the payload and enqueues units, the worker does the rest.
func (s *FeedSubscriber) handleMessage(topic string, payload []byte) {
	units, dropped, err := thesports.ParsePushPayload(payload)
	if err != nil {
		logger.Errorf("[Feed] Malformed payload on %s: %v", topic, err)
		return
	}
	if dropped > 0 {
		logger.Errorf("[Feed] Dropped %d malformed units on %s", dropped, topic)
	}

	for _, unit := range units {
		select {
		case s.queue <- unit:
		default:
			logger.Errorf("[Feed] ⚠️  Queue full, dropping unit for match %s (poll sync will repair)", unit.ID)
		}
	}
}

func (s *FeedSubscriber) worker() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case unit := <-s.queue:
			s.process(unit)
		}
	}
}

// process decodes and reconciles one unit. Errors are isolated to the
// unit: a bad message never blocks the rest of the stream.
func (s *FeedSubscriber) process(unit thesports.PushUnit) {
	d, err := DecodeUnit(unit)
	if err != nil {
		logger.Errorf("[Feed] Skipping unit: %v", err)
		return
	}

	if d.Fragment != nil {
		if err := s.reconciler.ApplyStateFragment(d.MatchID, *d.Fragment); err != nil {
			logger.Errorf("[Feed] Failed to apply state for match %s: %v", d.MatchID, err)
		}
	}

	if d.HasEvents {
		if err := s.reconciler.ReplaceSubEvents(d.MatchID, d.Events); err != nil {
			logger.Errorf("[Feed] Failed to replace events for match %s: %v", d.MatchID, err)
		}
	}
}
