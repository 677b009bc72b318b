package matching

import (
	"context"

	"github.com/rs/xid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// kafkaEventEnvelope wraps an event with its type discriminator for the wire.
type kafkaEventEnvelope struct {
	EventType string         `json:"event_type"`
	Event     protocol.Event `json:"event"`
}

// KafkaEventPublisher writes engine events to a Kafka topic. Publication is
// best effort: a write failure is logged and the engine moves on, it never
// blocks matching.
type KafkaEventPublisher struct {
	writer     *kafka.Writer
	serializer protocol.Serializer
}

// NewKafkaEventPublisher creates a publisher writing to the given brokers
// and topic.
func NewKafkaEventPublisher(brokers []string, topic string) *KafkaEventPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})

	return &KafkaEventPublisher{
		writer:     writer,
		serializer: &protocol.DefaultJSONSerializer{},
	}
}

// Publish writes the events to the topic, one message per event.
func (p *KafkaEventPublisher) Publish(events ...protocol.Event) {
	if len(events) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		bytes, err := p.serializer.Marshal(kafkaEventEnvelope{
			EventType: event.EventType(),
			Event:     event,
		})
		if err != nil {
			logger.Error("failed to marshal event",
				zap.String("event_type", event.EventType()), zap.Error(err))
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(xid.New().String()),
			Value: bytes,
		})
	}

	if err := p.writer.WriteMessages(context.Background(), msgs...); err != nil {
		logger.Error("failed to publish events", zap.Error(err))
	}
}

// Close flushes and closes the underlying writer.
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// KafkaRequestReader consumes request envelopes from a Kafka topic.
type KafkaRequestReader struct {
	reader     *kafka.Reader
	serializer protocol.Serializer
}

// NewKafkaRequestReader creates a reader consuming from the given brokers,
// topic and consumer group.
func NewKafkaRequestReader(brokers []string, topic, groupID string) *KafkaRequestReader {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &KafkaRequestReader{
		reader:     reader,
		serializer: &protocol.DefaultJSONSerializer{},
	}
}

// ReadRequest blocks until the next request envelope arrives or the context
// is cancelled.
func (r *KafkaRequestReader) ReadRequest(ctx context.Context) (*protocol.Request, error) {
	msg, err := r.reader.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}

	req := &protocol.Request{}
	if err := r.serializer.Unmarshal(msg.Value, req); err != nil {
		logger.Error("failed to unmarshal request message",
			zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil, err
	}
	return req, nil
}

// Close properly closes the underlying reader.
func (r *KafkaRequestReader) Close() error {
	return r.reader.Close()
}
