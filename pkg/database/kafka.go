package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaRepo definition kafka writer repo
type KafkaRepo interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaRepo struct {
	writer *kafka.Writer
}

// NewKafkaRepository wrap an established writer
func NewKafkaRepository(writer *kafka.Writer) KafkaRepo {
	return &kafkaRepo{writer: writer}
}

// NewKafkaWriterWithRetry builds a Kafka writer and probes the connection
// with a test message before handing it back.
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	var writer *kafka.Writer
	var err error

	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers:  k.Brokers,
			Topic:    k.Topic,
			Balancer: &kafka.LeastBytes{},
		})

		err = writer.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte("ping"),
			Value: []byte("ping"),
		})
		if err == nil {
			log.Printf("Kafka writer ready (attempt %d)", attempt)
			return writer, nil
		}

		log.Printf("Kafka writer failed (attempt %d/%d): %v", attempt, k.RetryCount, err)
		writer.Close()
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("unable to build Kafka writer after %d attempts: %v", k.RetryCount, err)
}

func (r *kafkaRepo) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return r.writer.WriteMessages(ctx, msgs...)
}

func (r *kafkaRepo) Close() error {
	return r.writer.Close()
}
