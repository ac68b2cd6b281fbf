package config

import "time"

// VideoService definition video_service YAML structure
type VideoService struct {
	Port string `mapstructure:"port"`
	IP   string `mapstructure:"ip"`

	// TTL for read signed URLs, in seconds
	SignedURLExpires int `mapstructure:"signed_url_expires"`
	// TTL for write signed URLs handed to direct-upload clients, in seconds
	UploadURLExpires int `mapstructure:"upload_url_expires"`
	// directory where multipart uploads are staged before hitting the store
	UploadTmpDir string `mapstructure:"upload_tmp_dir"`
	// max accepted multipart body, in megabytes
	MaxUploadSizeMB int `mapstructure:"max_upload_size_mb"`

	MinIO    MinIOConfig    `mapstructure:"minio"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	BucketName    string        `mapstructure:"bucket_name"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RetryCount    int           `mapstructure:"retry_count"`
}

// RabbitMQConfig definition rabbitmq setting
type RabbitMQConfig struct {
	IP            string        `mapstructure:"ip"`
	Port          string        `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RetryCount    int           `mapstructure:"retry_count"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	Topic         string        `mapstructure:"topic"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RetryCount    int           `mapstructure:"retry_count"`
}
