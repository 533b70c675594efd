package realtime

import (
	"context"
	"fmt"
	"time"

	"campurent/internal/metrics"
	"campurent/internal/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WatcherConfig wires the change-feed consumer to the topic exchange fed by
// the datastore triggers.
type WatcherConfig struct {
	RabbitURL string
	Exchange  string
	Queue     string
	Prefetch  int
}

// Watcher is the single long-lived change-feed subscriber. Events are
// handled sequentially in arrival order: a handler that blocks delays every
// later event. That is deliberate — it preserves per-row ordering — and it
// is the known throughput bottleneck of this design.
type Watcher struct {
	cfg         WatcherConfig
	broadcaster *Broadcaster

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewWatcher(cfg WatcherConfig, b *Broadcaster) *Watcher {
	return &Watcher{cfg: cfg, broadcaster: b}
}

func (w *Watcher) Connect() error {
	conn, err := amqp.Dial(w.cfg.RabbitURL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}

	if err := ch.ExchangeDeclare(w.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange failed: %w", err)
	}

	q, err := ch.QueueDeclare(w.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue failed: %w", err)
	}

	for _, key := range []string{RKTaskUpdated, RKReportCreated, RKPaymentUpdated} {
		if err := ch.QueueBind(q.Name, key, w.cfg.Exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("bind key=%s failed: %w", key, err)
		}
	}

	prefetch := w.cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 8
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("set qos failed: %w", err)
	}

	w.conn = conn
	w.ch = ch
	return nil
}

func (w *Watcher) Close() {
	if w.ch != nil {
		_ = w.ch.Close()
	}
	if w.conn != nil {
		_ = w.conn.Close()
	}
}

// Run consumes until the context is cancelled or the channel closes.
func (w *Watcher) Run(ctx context.Context) error {
	msgs, err := w.ch.ConsumeWithContext(ctx, w.cfg.Queue, "campurent-realtime", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	utils.LogEvent("", "realtime", "subscribe", "watching delivery_tasks, reports, payments")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			start := time.Now()
			if err := w.handleDelivery(d); err != nil {
				utils.LogEvent("", "realtime", "handle",
					fmt.Sprintf("key=%s error=%v, nack+requeue", d.RoutingKey, err))
				_ = d.Nack(false, true)
				continue
			}
			metrics.EventProcessingDuration.Observe(time.Since(start).Seconds())
			_ = d.Ack(false)
		}
	}
}

func (w *Watcher) handleDelivery(d amqp.Delivery) error {
	switch d.RoutingKey {
	case RKTaskUpdated:
		env, err := DecodeEnvelope[TaskRow](d.Body)
		if err != nil {
			return err
		}
		w.broadcaster.HandleTaskUpdated(env)

	case RKReportCreated:
		env, err := DecodeEnvelope[ReportRow](d.Body)
		if err != nil {
			return err
		}
		w.broadcaster.HandleReportCreated(env)

	case RKPaymentUpdated:
		env, err := DecodeEnvelope[PaymentRow](d.Body)
		if err != nil {
			return err
		}
		w.broadcaster.HandlePaymentUpdated(env)

	default:
		// unknown key: acknowledge and move on
		utils.LogEvent("", "realtime", "skip", "unknown key="+d.RoutingKey)
	}
	return nil
}
