package database

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	testtool "video_transcode_service/pkg/test_tool"

	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// **測試用的容器**
var minioContainer testcontainers.Container

var minioClient MinIOClientRepo

var (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
	minioBucket   = "video-bucket"
)

// **TestMain - 初始化測試環境**
func TestMain(m *testing.M) {
	ctx := context.Background()
	var err error

	// **啟動 MinIO**
	minioContainer, minioHost, minioPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image: "minio/minio:latest",
		Cmd:   []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start MinIO: %v", err)
	}
	fmt.Printf("✅ MinIO running at %s:%s\n", minioHost, minioPort)

	minioClient, err = NewMinIOConnection(MinIOConnection{
		Endpoint:   fmt.Sprintf("%s:%s", minioHost, minioPort),
		User:       minioUser,
		Password:   minioPassword,
		BucketName: minioBucket,
		UseSSL:     false,

		RetryCount:    5,
		RetryInterval: 5,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to MinIO: %v", err)
	}

	code := m.Run()

	_ = minioContainer.Terminate(ctx)

	os.Exit(code)
}

func stageLocalFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.mp4")
	assert.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestIntegrationUploadAndStat(t *testing.T) {
	ctx := context.Background()
	content := []byte("fake mp4 payload for the round trip")
	localPath := stageLocalFile(t, content)

	err := minioClient.UploadFile(ctx, "original/it-1.mp4", localPath, "video/mp4")
	assert.NoError(t, err)

	exists, err := minioClient.Exists(ctx, "original/it-1.mp4")
	assert.NoError(t, err)
	assert.True(t, exists)

	meta, err := minioClient.GetMetadata(ctx, "original/it-1.mp4")
	assert.NoError(t, err)
	assert.Equal(t, "video/mp4", meta.ContentType)
	assert.Equal(t, int64(len(content)), meta.Size)
}

func TestIntegrationExists_MissingObject(t *testing.T) {
	ctx := context.Background()

	exists, err := minioClient.Exists(ctx, "original/never-uploaded.mp4")

	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestIntegrationDownloadToTemp(t *testing.T) {
	ctx := context.Background()
	content := []byte("round trip payload")
	localPath := stageLocalFile(t, content)
	assert.NoError(t, minioClient.UploadFile(ctx, "original/it-2.mp4", localPath, "video/mp4"))

	downloaded, err := minioClient.DownloadToTemp(ctx, "original/it-2.mp4", ".mp4")
	assert.NoError(t, err)
	defer os.Remove(downloaded)

	assert.True(t, strings.HasSuffix(downloaded, ".mp4"))
	got, err := os.ReadFile(downloaded)
	assert.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestIntegrationGetReadStream(t *testing.T) {
	ctx := context.Background()
	content := []byte("streamed payload")
	localPath := stageLocalFile(t, content)
	assert.NoError(t, minioClient.UploadFile(ctx, "low/it-3_low.mp4", localPath, "video/mp4"))

	stream, err := minioClient.GetReadStream(ctx, "low/it-3_low.mp4")
	assert.NoError(t, err)
	defer stream.Close()

	got, err := io.ReadAll(stream)
	assert.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestIntegrationPresignGetURL(t *testing.T) {
	ctx := context.Background()
	content := []byte("presigned read payload")
	localPath := stageLocalFile(t, content)
	assert.NoError(t, minioClient.UploadFile(ctx, "original/it-4.mp4", localPath, "video/mp4"))

	signedURL, err := minioClient.PresignGetURL(ctx, "original/it-4.mp4", time.Minute)
	assert.NoError(t, err)

	resp, err := http.Get(signedURL)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestIntegrationPresignPutURL(t *testing.T) {
	ctx := context.Background()
	content := strings.NewReader("direct upload payload")

	signedURL, err := minioClient.PresignPutURL(ctx, "original/it-5.mp4", "video/mp4", time.Minute)
	assert.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, signedURL, content)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "video/mp4")
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 上傳後的物件應可被 Stat 取得
	meta, err := minioClient.GetMetadata(ctx, "original/it-5.mp4")
	assert.NoError(t, err)
	assert.Equal(t, "video/mp4", meta.ContentType)
}
