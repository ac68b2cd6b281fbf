package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"video_transcode_service/internal/videos/api/handlers"
	"video_transcode_service/internal/videos/api/router"
	"video_transcode_service/internal/videos/app"
	"video_transcode_service/internal/videos/domain"
	"video_transcode_service/internal/videos/repository"
	"video_transcode_service/pkg/config"
	"video_transcode_service/pkg/database"
	"video_transcode_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.VideoService, config.EnvConfig.VideoServiceLogPath)

	cfg := config.LoadConfig[config.VideoService](config.EnvConfig.VideoService, config.EnvConfig.VideoServiceYAMLPath)

	// 1. object store
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:   config.Addr(cfg.MinIO.Host, cfg.MinIO.Port),
		User:       cfg.MinIO.User,
		Password:   cfg.MinIO.Password,
		BucketName: cfg.MinIO.BucketName,
		UseSSL:     cfg.MinIO.UseSSL,

		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: cfg.MinIO.RetryInterval,
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to minio after retries",
			zap.String("address", config.Addr(cfg.MinIO.Host, cfg.MinIO.Port)),
			zap.Error(err),
		)
	}

	// 2. transcode queue
	rabbitURL := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.IP, cfg.RabbitMQ.Port)
	conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    rabbitURL,
		RetryCount:    cfg.RabbitMQ.RetryCount,
		RetryInterval: cfg.RabbitMQ.RetryInterval,
	})
	if err != nil {
		log.Fatalf("RabbitMQ connect failed: %v", err)
	}
	defer conn.Close()

	rabbitChannel, err := database.GetRabbitMQChannelWithRetry(conn, cfg.RabbitMQ.RetryCount, cfg.RabbitMQ.RetryInterval)
	if err != nil {
		log.Fatalf("get RabbitMQ channel failed: %v", err)
	}
	defer rabbitChannel.Close()

	if _, err := rabbitChannel.QueueDeclare(
		domain.QueueName, // queue name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // arguments
	); err != nil {
		log.Fatalf("Queue Declare failed: %v", err)
	}

	// 3. lifecycle event topic, best effort, the pipeline runs without it
	var events app.EventPublisher
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: cfg.Kafka.RetryInterval,
	})
	if err != nil {
		logger.Log.Warn(fmt.Sprintf("Kafka writer unavailable, lifecycle events disabled: %v", err))
	} else {
		defer kafkaWriter.Close()
		events = app.NewKafkaEventPublisher(database.NewKafkaRepository(kafkaWriter))
	}

	// 4. record index and usecase
	records := repository.NewRecordStore()
	usecase := app.NewVideoUseCase(
		minioClient,
		records,
		database.NewRabbitRepository(rabbitChannel),
		events,
		time.Duration(cfg.SignedURLExpires)*time.Second,
		time.Duration(cfg.UploadURLExpires)*time.Second,
	)

	// 5. transcode worker
	consumer := app.NewConsumer(rabbitChannel, usecase, domain.QueueName)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.StartConsumer(ctx)

	// 6. HTTP surface
	maxUpload := cfg.MaxUploadSizeMB
	if maxUpload <= 0 {
		maxUpload = 200
	}
	r := fiber.New(fiber.Config{
		BodyLimit: maxUpload * 1024 * 1024,
	})
	r.Use(fiber_log.New())

	videoHandler := &handlers.VideoHandler{
		Usecase:      usecase,
		UploadTmpDir: cfg.UploadTmpDir,
	}
	router.RegisterRoutes(r, videoHandler)

	logger.Log.Info(fmt.Sprintf("VideoService listening on : %s", cfg.Port))
	if err := r.Listen(cfg.IP + ":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}
