package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOEndpoint save minio endpoint
var MinIOEndpoint string

// MinIOClientRepo is the object store gateway the pipeline consumes.
type MinIOClientRepo interface {
	UploadFile(ctx context.Context, objectName, filePath, contentType string) error
	DownloadToTemp(ctx context.Context, objectName, ext string) (string, error)
	Exists(ctx context.Context, objectName string) (bool, error)
	GetMetadata(ctx context.Context, objectName string) (ObjectMetadata, error)
	GetReadStream(ctx context.Context, objectName string) (io.ReadCloser, error)
	PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	PresignPutURL(ctx context.Context, objectName, contentType string, expiry time.Duration) (string, error)
}

// MinIOClient definition minio client
type MinIOClient struct {
	Client     *minio.Client
	BucketName string
}

// NewMinIOConnection create a new minio connection have retry
func NewMinIOConnection(d MinIOConnection) (*MinIOClient, error) {
	var mc *MinIOClient
	var err error

	for i := 1; i <= d.RetryCount; i++ {
		mc, err = NewMinioClient(d.Endpoint, d.User, d.Password, d.BucketName, d.UseSSL)
		if err == nil {
			MinIOEndpoint = d.Endpoint
			log.Printf("minIO[%s] connected (attempt %d)", d.Endpoint, i)
			return mc, nil
		}

		log.Printf("minIO[%s] connect failed (attempt %d/%d): %v", d.Endpoint, i, d.RetryCount, err)
		time.Sleep(d.RetryInterval * time.Second)
	}

	return mc, err
}

// NewMinioClient create a new minio client and ensure the bucket exists
func NewMinioClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOClient, error) {
	minioClient, err := minio.New(endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
			Secure: useSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("init MinIO failed: %v", err)
	}

	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket [%s] failed: %v", bucketName, err)
	}

	if !exists {
		if err = minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket [%s] failed: %v", bucketName, err)
		}
		log.Printf("Bucket [%s] created", bucketName)
	} else {
		log.Printf("Bucket [%s] already exists", bucketName)
	}

	return &MinIOClient{
		Client:     minioClient,
		BucketName: bucketName,
	}, nil
}

// UploadFile minio upload file func
func (m *MinIOClient) UploadFile(ctx context.Context, objectName, filePath, contentType string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file failed: %v", err)
	}
	defer file.Close()

	_, err = m.Client.PutObject(ctx, m.BucketName, objectName, file, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// DownloadToTemp fetches the object into a uniquely named file under the OS
// temp dir and returns the local path. The caller owns the file.
func (m *MinIOClient) DownloadToTemp(ctx context.Context, objectName, ext string) (string, error) {
	obj, err := m.Client.GetObject(ctx, m.BucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("get object failed: %v", err)
	}
	defer obj.Close()

	destPath := filepath.Join(os.TempDir(), uuid.New().String()+ext)
	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create temp file failed: %v", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, obj); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("download object failed: %v", err)
	}
	return destPath, nil
}

// Exists reports whether the object is present in the bucket
func (m *MinIOClient) Exists(ctx context.Context, objectName string) (bool, error) {
	_, err := m.Client.StatObject(ctx, m.BucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetMetadata returns content type and size for the object
func (m *MinIOClient) GetMetadata(ctx context.Context, objectName string) (ObjectMetadata, error) {
	info, err := m.Client.StatObject(ctx, m.BucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		return ObjectMetadata{}, fmt.Errorf("stat object failed: %v", err)
	}
	return ObjectMetadata{
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

// GetReadStream opens the object for streaming reads
func (m *MinIOClient) GetReadStream(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := m.Client.GetObject(ctx, m.BucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object failed: %v", err)
	}
	return obj, nil
}

// PresignGetURL generates a presigned URL granting reads on the object
func (m *MinIOClient) PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	reqParams := make(url.Values)
	presignedURL, err := m.Client.PresignedGetObject(ctx, m.BucketName, objectName, expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("presign GET URL failed: %w", err)
	}
	return presignedURL.String(), nil
}

// PresignPutURL generates a presigned URL granting a single PUT on the
// object, with the content type bound into the signature.
func (m *MinIOClient) PresignPutURL(ctx context.Context, objectName, contentType string, expiry time.Duration) (string, error) {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	presignedURL, err := m.Client.PresignHeader(ctx, http.MethodPut, m.BucketName, objectName, expiry, url.Values{}, header)
	if err != nil {
		return "", fmt.Errorf("presign PUT URL failed: %w", err)
	}
	return presignedURL.String(), nil
}
