package handlers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/rad_plants/internal/cart"
	"github.com/Skotchmaster/rad_plants/internal/checkout"
	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/mykafka"
)

const publishTimeout = 5 * time.Second

type pendingEvent struct {
	ctx   context.Context
	topic string
	key   string
	event map[string]any
}

// Events turns domain changes into Kafka messages. Publish failures are
// logged and otherwise ignored. After Start, events are handed to a single
// background writer and callers never wait on the broker; a full queue
// drops the event.
type Events struct {
	Producer mykafka.Publisher
	Logger   *slog.Logger

	mu     sync.Mutex
	queue  chan pendingEvent
	closed bool
	wg     sync.WaitGroup
}

func (e *Events) Start(buffer int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.queue != nil || e.closed {
		return
	}
	e.queue = make(chan pendingEvent, buffer)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for p := range e.queue {
			e.write(p)
		}
	}()
}

// Close stops accepting events and waits for queued ones to be written.
func (e *Events) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.queue != nil {
		close(e.queue)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Events) logger(ctx context.Context) *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logging.FromContext(ctx)
}

func (e *Events) publish(ctx context.Context, topic, key string, event map[string]any) {
	if e == nil || e.Producer == nil {
		return
	}
	event["at"] = time.Now().UTC().Format(time.RFC3339)
	p := pendingEvent{ctx: context.WithoutCancel(ctx), topic: topic, key: key, event: event}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.logger(ctx).Warn("kafka_publish_dropped", "topic", topic, "type", event["type"], "reason", "closed")
		return
	}
	if e.queue == nil {
		e.mu.Unlock()
		e.write(p)
		return
	}
	select {
	case e.queue <- p:
	default:
		e.logger(ctx).Warn("kafka_publish_dropped", "topic", topic, "type", event["type"], "reason", "queue_full")
	}
	e.mu.Unlock()
}

func (e *Events) write(p pendingEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, publishTimeout)
	defer cancel()

	if err := e.Producer.PublishEvent(ctx, p.topic, p.key, p.event); err != nil {
		e.logger(ctx).Error("kafka_publish_error", "topic", p.topic, "type", p.event["type"], "error", err)
	}
}

// CartChanged is registered as the cart observer of every session.
func (e *Events) CartChanged(sessionID string, snap cart.Snapshot) {
	e.publish(context.Background(), mykafka.TopicCart, sessionID, map[string]any{
		"type":       string(snap.Op),
		"sessionID":  sessionID,
		"items":      snap.Items,
		"totalItems": snap.TotalItems,
		"totalPrice": snap.TotalPrice,
		"open":       snap.Open,
	})
}

func (e *Events) OrderOutcome(ctx context.Context, sessionID string, o checkout.Outcome) {
	event := map[string]any{"sessionID": sessionID}
	if o.Order != nil {
		event["type"] = "order_placed"
		event["orderID"] = o.Order.ID
		event["total"] = o.Order.Total
		event["paymentMethod"] = o.Order.PaymentMethod
		event["items"] = o.Order.Items
	} else {
		event["type"] = "order_failed"
		if o.Err != nil {
			event["reason"] = o.Err.Error()
		}
	}
	e.publish(ctx, mykafka.TopicOrder, sessionID, event)
}

func (e *Events) NewsletterSubscribed(ctx context.Context, digest string) {
	e.publish(ctx, mykafka.TopicNewsletter, digest, map[string]any{
		"type":   "newsletter_subscribed",
		"digest": digest,
	})
}

func (e *Events) ContactSubmitted(ctx context.Context, sessionID, digest string, length int) {
	e.publish(ctx, mykafka.TopicContact, sessionID, map[string]any{
		"type":          "contact_submitted",
		"sessionID":     sessionID,
		"emailDigest":   digest,
		"messageLength": length,
	})
}
