package app

import (
	"context"
	"io"
	"time"

	"video_transcode_service/internal/videos/domain"
	"video_transcode_service/pkg/database"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/mock"
)

// MockMinIOClient 是 MinIOClientRepo 的 Mock
type MockMinIOClient struct {
	mock.Mock
}

// UploadFile mock upload
func (m *MockMinIOClient) UploadFile(ctx context.Context, objectName, filePath, contentType string) error {
	args := m.Called(ctx, objectName, filePath, contentType)
	return args.Error(0)
}

// DownloadToTemp mock download to a temp path
func (m *MockMinIOClient) DownloadToTemp(ctx context.Context, objectName, ext string) (string, error) {
	args := m.Called(ctx, objectName, ext)
	return args.String(0), args.Error(1)
}

// Exists mock object existence check
func (m *MockMinIOClient) Exists(ctx context.Context, objectName string) (bool, error) {
	args := m.Called(ctx, objectName)
	return args.Bool(0), args.Error(1)
}

// GetMetadata mock object metadata
func (m *MockMinIOClient) GetMetadata(ctx context.Context, objectName string) (database.ObjectMetadata, error) {
	args := m.Called(ctx, objectName)
	return args.Get(0).(database.ObjectMetadata), args.Error(1)
}

// GetReadStream mock object stream
func (m *MockMinIOClient) GetReadStream(ctx context.Context, objectName string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectName)
	if args.Get(0) != nil {
		return args.Get(0).(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// PresignGetURL mock read signed URL
func (m *MockMinIOClient) PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

// PresignPutURL mock write signed URL
func (m *MockMinIOClient) PresignPutURL(ctx context.Context, objectName, contentType string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, contentType, expiry)
	return args.String(0), args.Error(1)
}

// MockRabbitChannel 是 RabbitMQ 的 Mock
type MockRabbitChannel struct {
	mock.Mock
}

// GetRabbit mock channel getter
func (m *MockRabbitChannel) GetRabbit() *amqp.Channel {
	args := m.Called()
	return args.Get(0).(*amqp.Channel)
}

// Publish mock queue publish
func (m *MockRabbitChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

// MockEventPublisher 是 EventPublisher 的 Mock
type MockEventPublisher struct {
	mock.Mock
}

// Publish mock event publish
func (m *MockEventPublisher) Publish(ctx context.Context, event domain.VideoEvent) {
	m.Called(ctx, event)
}
