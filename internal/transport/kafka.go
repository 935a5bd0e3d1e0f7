package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const channelHeader = "channel"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes every notification to one Kafka topic, keyed by its
// logical channel so one auction's notifications stay in one partition.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher creates a publisher writing to topic on brokers
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			MaxAttempts:  3,
			WriteTimeout: 5 * time.Second,
			BatchTimeout: 20 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.w.WriteMessages(ctx, newMessage(topic, payload)); err != nil {
		return fmt.Errorf("transport: kafka write %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) SendToSubscriber(ctx context.Context, subscriberID string, payload []byte) error {
	return p.Publish(ctx, SubscriberChannel(subscriberID), payload)
}

func newMessage(channel string, payload []byte) kafka.Message {
	return kafka.Message{
		Key:   []byte(channel),
		Value: payload,
		Headers: []kafka.Header{
			{Key: channelHeader, Value: []byte(channel)},
		},
	}
}
