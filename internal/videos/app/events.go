package app

import (
	"context"
	"encoding/json"
	"fmt"

	"video_transcode_service/internal/videos/domain"
	"video_transcode_service/pkg/database"
	"video_transcode_service/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// EventPublisher fans lifecycle notifications out to interested consumers.
// Publishing is best effort; a broker outage never stalls the pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.VideoEvent)
}

type kafkaEventPublisher struct {
	writer database.KafkaRepo
}

// NewKafkaEventPublisher create an EventPublisher backed by a Kafka topic
func NewKafkaEventPublisher(writer database.KafkaRepo) EventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, event domain.VideoEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorf(fmt.Sprintf("videoID[%s] marshal event[%s] failed :", event.VideoID, event.Event), err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.VideoID),
		Value: data,
	})
	if err != nil {
		logger.Log.Errorf(fmt.Sprintf("videoID[%s] publish event[%s] failed :", event.VideoID, event.Event), err)
	}
}
