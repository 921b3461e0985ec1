package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"academy-platform/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderPublisher announces newly placed orders. Publish must not block on the
// broker.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.ShopOrder) error
}

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages in memory and writes them from a single goroutine.
type Producer struct {
	w      messageWriter
	inbox  chan kafka.Message
	done   chan struct{}
	logger *zap.Logger

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewProducer creates a Producer writing to topic on brokers with room for buf
// pending messages.
func NewProducer(brokers []string, topic string, buf int, logger *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	return newProducer(w, buf, logger)
}

func newProducer(w messageWriter, buf int, logger *zap.Logger) *Producer {
	return &Producer{
		w:      w,
		inbox:  make(chan kafka.Message, buf),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start runs the write loop until Close is called. Calls after the first, or
// after Close, do nothing.
func (p *Producer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	go func() {
		defer close(p.done)
		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				p.logger.Error("Failed to write kafka message",
					zap.Error(err),
					zap.ByteString("key", m.Key),
				)
			}
			cancel()
		}
		p.closeWriter()
	}()
}

func (p *Producer) closeWriter() {
	if err := p.w.Close(); err != nil {
		p.logger.Warn("Failed to close kafka writer", zap.Error(err))
	}
}

// Publish enqueues a message. It returns an error instead of blocking when the
// buffer is full or the producer is closed.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("producer is closed")
	}

	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}:
		return nil
	default:
		return fmt.Errorf("producer buffer full")
	}
}

// Close stops accepting messages, flushes what is buffered and waits for the
// writer to close. Without a running write loop buffered messages are
// dropped.
func (p *Producer) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
		if !p.started {
			if n := len(p.inbox); n > 0 {
				p.logger.Warn("Dropping kafka messages of a producer that never started", zap.Int("pending", n))
			}
			p.closeWriter()
			close(p.done)
		}
	}
	p.mu.Unlock()
	<-p.done
}

// PublishOrderCreated implements OrderPublisher. The order id is the partition
// key so every event of one order stays in sequence.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.ShopOrder) error {
	payload, err := json.Marshal(NewOrderCreated(order))
	if err != nil {
		return fmt.Errorf("failed to encode order payload: %w", err)
	}

	envelope, err := json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: order.ID.String(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event envelope: %w", err)
	}

	return p.Publish(
		[]byte(order.ID.String()),
		envelope,
		kafka.Header{Key: "event_type", Value: []byte(EventOrderCreated)},
	)
}

// NoopPublisher drops every event. It is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, *domain.ShopOrder) error { return nil }
