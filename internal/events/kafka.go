package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/internal/types"
)

// KafkaPublisher writes audit events to a kafka topic, keyed by wallet
// address so per-wallet ordering is preserved.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logrus.Logger
	mu     sync.Mutex
}

func NewKafkaPublisher(brokerAddress, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerAddress),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		logger: logrus.WithField("module", "kafka_publisher").Logger,
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, event types.Event) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("fail to marshal event, err: %w", err)
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   event.Wallet.Bytes(),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("fail to write event to kafka, err: %w", err)
	}
	k.logger.WithFields(logrus.Fields{
		"kind":   event.Kind,
		"wallet": event.Wallet.Hex(),
	}).Debug("audit event published")
	return nil
}

func (k *KafkaPublisher) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.writer != nil {
		err := k.writer.Close()
		k.writer = nil
		return err
	}
	return nil
}
