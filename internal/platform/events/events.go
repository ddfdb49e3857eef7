package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeScoreRecorded  = "score.recorded"
	TypeCycleActivated = "cycle.activated"
	TypeCycleClosed    = "cycle.closed"
	TypeCycleExpired   = "cycle.expired"
	TypeImportFinished = "import.finished"
)

const (
	defaultQueueSize = 1024
	deliveryTimeout  = 10 * time.Second
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   string    `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType, entityID string, payload any)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events to a single topic. Publish only puts the
// event on an in-memory queue; a background goroutine hands it to the writer.
// When the queue is full the event is dropped and logged. Delivery failures
// are logged and never reach the caller.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
	queue  chan kafka.Message
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewKafkaPublisher(broker, topic string) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		Async:                  true,
		Completion:             logDeliveryFailure,
	}, defaultQueueSize)
}

func newKafkaPublisher(writer messageWriter, queueSize int) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: writer,
		now:    time.Now,
		queue:  make(chan kafka.Message, queueSize),
		done:   make(chan struct{}),
	}
	go p.deliver()
	return p
}

// New returns a Kafka publisher, or a no-op one when broker is empty.
func New(broker, topic string) Publisher {
	if broker == "" {
		return Noop{}
	}
	return NewKafkaPublisher(broker, topic)
}

func (p *KafkaPublisher) Publish(_ context.Context, eventType, entityID string, payload any) {
	evt := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	}
	value, err := json.Marshal(evt)
	if err != nil {
		slog.Warn("event marshal failed", "type", eventType, "err", err)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		slog.Warn("event dropped after close", "type", eventType, "entityId", entityID)
		return
	}
	select {
	case p.queue <- kafka.Message{Key: []byte(entityID), Value: value}:
	default:
		slog.Warn("event queue full, dropping event", "type", eventType, "entityId", entityID)
	}
}

func (p *KafkaPublisher) deliver() {
	defer close(p.done)
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			slog.Warn("event publish failed", "key", string(msg.Key), "err", err)
		}
		cancel()
	}
}

func logDeliveryFailure(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range messages {
		slog.Warn("event delivery failed", "key", string(msg.Key), "err", err)
	}
}

// Close stops accepting events, waits for the queue to drain and closes the
// writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) {}

// Close releases the publisher's writer when it has one.
func Close(p Publisher) error {
	if closer, ok := p.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
