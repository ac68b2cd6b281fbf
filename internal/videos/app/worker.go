package app

import (
	"context"
	"encoding/json"
	"fmt"

	"video_transcode_service/internal/videos/domain"
	"video_transcode_service/pkg/logger"

	"github.com/streadway/amqp"
)

// Consumer 定義一個消息消費者, the transcode worker consuming the queue.
type Consumer struct {
	rabbitChannel *amqp.Channel
	usecase       VideoUseCase
	queueName     string
}

// NewConsumer 建構 Consumer 實例
func NewConsumer(rabbitChannel *amqp.Channel, usecase VideoUseCase, queueName string) *Consumer {
	return &Consumer{
		rabbitChannel: rabbitChannel,
		usecase:       usecase,
		queueName:     queueName,
	}
}

// StartConsumer consumes transcode jobs until ctx is cancelled. Job outcomes
// are recorded on the video record, so every delivery is acked exactly once:
// one delivery, at most one transcode attempt, no broker-side retry loop.
func (c *Consumer) StartConsumer(ctx context.Context) {
	msgs, err := c.rabbitChannel.Consume(
		c.queueName, // queue
		"",          // consumer tag, assigned by the broker
		false,       // autoAck off, ack manually
		false,       // exclusive
		false,       // noLocal
		false,       // noWait
		nil,         // arguments
	)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("consume RabbitMQ queue[%s] failed: %v", c.queueName, err))
	}

	logger.Log.Info(fmt.Sprintf("transcode consumer started on queue[%s]", c.queueName))

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				logger.Log.Warn("RabbitMQ consume channel closed")
				return
			}

			var job domain.TranscodeJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				logger.Log.Errorf("parse transcode job message failed :", err)
				// poison message, drop without requeue
				if err := d.Nack(false, false); err != nil {
					logger.Log.Errorf("nack message failed :", err)
				}
				continue
			}

			logger.Log.Info(fmt.Sprintf("received transcode job videoID[%s] originalKey[%s]", job.ID, job.OriginalKey))

			c.usecase.HandleTranscodeJob(ctx, job)

			if err := d.Ack(false); err != nil {
				logger.Log.Errorf(fmt.Sprintf("ack message for videoID[%s] failed :", job.ID), err)
			}
		case <-ctx.Done():
			logger.Log.Info("transcode consumer received stop signal")
			return
		}
	}
}
