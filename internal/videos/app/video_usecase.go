package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"video_transcode_service/internal/videos/domain"
	"video_transcode_service/internal/videos/repository"
	"video_transcode_service/pkg/database"
	errprocess "video_transcode_service/pkg/err"
	"video_transcode_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// VideoUseCase 這裡封裝了對外提供的應用服務: the ingestion, read and
// transcode services of the pipeline.
type VideoUseCase interface {
	List(ctx context.Context, page, pageSize int) (*domain.VideoPage, error)
	GetOne(ctx context.Context, id string) (*domain.VideoRecord, error)
	ProcessUpload(ctx context.Context, up domain.UploadVideoReq) (*domain.VideoRecord, error)
	Presign(ctx context.Context, filename, contentType string) (*domain.PresignRes, error)
	CompleteUpload(ctx context.Context, id string, size int64) (*domain.VideoRecord, error)
	Download(ctx context.Context, id string, variant domain.Variant) (*domain.DownloadRes, error)
	HandleTranscodeJob(ctx context.Context, job domain.TranscodeJob)
}

type videoUseCase struct {
	MinioClient   database.MinIOClientRepo
	Records       repository.RecordStore
	RabbitChannel database.RabbitRepo
	Events        EventPublisher

	signedTTL time.Duration // read URL lifetime
	uploadTTL time.Duration // write URL lifetime for the presign path
}

// NewVideoUseCase create a new VideoUseCase
func NewVideoUseCase(minIO database.MinIOClientRepo,
	records repository.RecordStore,
	rabbitChannel database.RabbitRepo,
	events EventPublisher,
	signedTTL, uploadTTL time.Duration,
) VideoUseCase {
	if signedTTL <= 0 {
		signedTTL = 3600 * time.Second
	}
	if uploadTTL <= 0 {
		uploadTTL = 900 * time.Second
	}
	return &videoUseCase{
		MinioClient:   minIO,
		Records:       records,
		RabbitChannel: rabbitChannel,
		Events:        events,
		signedTTL:     signedTTL,
		uploadTTL:     uploadTTL,
	}
}

// test seams for local file handling (wrapper-var pattern, see transcode.go)
var (
	removeStaged = os.Remove
)

// List returns one page of records, most recently created first, each with
// freshly signed URLs. Only the returned page is refreshed.
func (s *videoUseCase) List(ctx context.Context, page, pageSize int) (*domain.VideoPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	items, total := s.Records.List(page, pageSize)
	for i := range items {
		rec, err := s.refreshSignedURLs(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i] = *rec
	}

	return &domain.VideoPage{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Items:    items,
	}, nil
}

// GetOne get a single record with fresh signed URLs
func (s *videoUseCase) GetOne(ctx context.Context, id string) (*domain.VideoRecord, error) {
	if _, err := s.Records.Get(id); err != nil {
		return nil, errprocess.SetKind(errprocess.NotFound, fmt.Sprintf("videoID[%s] video not found", id))
	}
	return s.refreshSignedURLs(ctx, id)
}

// ProcessUpload ingests a locally staged multipart upload: pushes the file to
// the object store, creates a pending record and enqueues the transcode job.
// The record is returned immediately; the low rendition arrives asynchronously.
func (s *videoUseCase) ProcessUpload(ctx context.Context, up domain.UploadVideoReq) (*domain.VideoRecord, error) {
	ext := strings.ToLower(filepath.Ext(up.OriginalFilename))
	if ext == "" {
		ext = ".mp4"
	}
	id := newUploadID(up.OriginalFilename)
	originalKey := fmt.Sprintf("original/%s%s", id, ext)
	lowKey := fmt.Sprintf("low/%s_low%s", id, ext)

	if err := s.MinioClient.UploadFile(ctx, originalKey, up.LocalPath, up.MimeType); err != nil {
		return nil, errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("fileName[%s] upload original to store failed : %v", up.OriginalFilename, err))
	}
	if err := removeStaged(up.LocalPath); err != nil {
		logger.Log.Errorf(fmt.Sprintf("fileName[%s] cleanup staged upload failed :", up.OriginalFilename), err)
	}

	rec := s.Records.Create(&domain.VideoRecord{
		ID:               id,
		OriginalKey:      originalKey,
		CreatedAt:        time.Now().UTC(),
		Status:           domain.VideoPending,
		OriginalFilename: up.OriginalFilename,
		Mime:             up.MimeType,
		Size:             up.Size,
	})

	job := domain.TranscodeJob{
		ID:          id,
		OriginalKey: originalKey,
		LowKey:      lowKey,
		Ext:         ext,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("videoID[%s] marshal transcode job failed : %v", id, err))
	}
	err = s.RabbitChannel.Publish(
		"",               // default exchange
		domain.QueueName, // queue name
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("videoID[%s] enqueue transcode job failed : %v", id, err))
	}

	s.publishEvent(ctx, domain.EventVideoCreated, rec)

	return s.refreshSignedURLs(ctx, id)
}

// Presign starts the direct-to-storage flow: creates a pending record and
// hands back a time-limited write URL scoped to the original key. The byte
// transfer bypasses this service entirely.
func (s *videoUseCase) Presign(ctx context.Context, filename, contentType string) (*domain.PresignRes, error) {
	if !strings.HasPrefix(contentType, "video/") {
		return nil, errprocess.SetKind(errprocess.InvalidArgument,
			fmt.Sprintf("contentType[%s] is not a video media type", contentType))
	}

	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}
	originalKey := fmt.Sprintf("original/%s%s", id, ext)

	uploadURL, err := s.MinioClient.PresignPutURL(ctx, originalKey, contentType, s.uploadTTL)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("videoID[%s] presign upload URL failed : %v", id, err))
	}

	rec := s.Records.Create(&domain.VideoRecord{
		ID:               id,
		OriginalKey:      originalKey,
		CreatedAt:        time.Now().UTC(),
		Status:           domain.VideoPending,
		OriginalFilename: filename,
		Mime:             contentType,
	})

	s.publishEvent(ctx, domain.EventVideoCreated, rec)

	return &domain.PresignRes{
		ID:          id,
		UploadURL:   uploadURL,
		OriginalKey: originalKey,
	}, nil
}

// CompleteUpload confirms a direct upload, corrects size/mime from store
// metadata and transcodes inline. The caller is held for the full transcode;
// a transcode failure lands on the record, it never fails this call.
func (s *videoUseCase) CompleteUpload(ctx context.Context, id string, size int64) (*domain.VideoRecord, error) {
	rec, err := s.Records.Get(id)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.NotFound, fmt.Sprintf("videoID[%s] unknown id", id))
	}

	exists, err := s.MinioClient.Exists(ctx, rec.OriginalKey)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("videoID[%s] check original object failed : %v", id, err))
	}
	if !exists {
		return nil, errprocess.SetKind(errprocess.InvalidArgument,
			fmt.Sprintf("videoID[%s] original object not found in storage", id))
	}

	meta, err := s.MinioClient.GetMetadata(ctx, rec.OriginalKey)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("videoID[%s] read original metadata failed : %v", id, err))
	}
	if _, err := s.Records.Update(id, func(r *domain.VideoRecord) {
		if size > 0 {
			r.Size = size
		} else {
			r.Size = meta.Size
		}
		if meta.ContentType != "" {
			r.Mime = meta.ContentType
		}
	}); err != nil {
		return nil, errprocess.SetKind(errprocess.NotFound, fmt.Sprintf("videoID[%s] unknown id", id))
	}

	ext := strings.ToLower(filepath.Ext(rec.OriginalKey))
	if ext == "" {
		ext = ".mp4"
	}
	lowKey := fmt.Sprintf("low/%s_low%s", id, ext)

	if err := s.transcodeFromStore(ctx, rec.OriginalKey, lowKey, ext); err != nil {
		s.recordFailure(ctx, id, err)
	} else {
		s.recordSuccess(ctx, id, lowKey)
	}

	return s.refreshSignedURLs(ctx, id)
}

// Download resolves a record and variant to an open read stream plus transfer
// headers for the boundary layer.
func (s *videoUseCase) Download(ctx context.Context, id string, variant domain.Variant) (*domain.DownloadRes, error) {
	rec, err := s.Records.Get(id)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.NotFound, fmt.Sprintf("videoID[%s] video not found", id))
	}

	objectKey := variant.ObjectKey(rec)
	if objectKey == "" {
		return nil, errprocess.SetKind(errprocess.NotFound,
			fmt.Sprintf("videoID[%s] variant[%s] not available yet", id, variant))
	}

	meta, err := s.MinioClient.GetMetadata(ctx, objectKey)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.NotFound,
			fmt.Sprintf("videoID[%s] object[%s] not available : %v", id, objectKey, err))
	}

	stream, err := s.MinioClient.GetReadStream(ctx, objectKey)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("videoID[%s] open object[%s] stream failed : %v", id, objectKey, err))
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	base := strings.TrimSuffix(rec.OriginalFilename, filepath.Ext(rec.OriginalFilename))
	filename := base + variant.FilenameSuffix() + filepath.Ext(objectKey)

	return &domain.DownloadRes{
		Stream:      stream,
		ContentType: contentType,
		Size:        meta.Size,
		Filename:    filename,
	}, nil
}

// refreshSignedURLs recomputes the ephemeral read URLs from the object keys
// and stores them, returning the updated record.
func (s *videoUseCase) refreshSignedURLs(ctx context.Context, id string) (*domain.VideoRecord, error) {
	rec, err := s.Records.Get(id)
	if err != nil {
		return nil, errprocess.SetKind(errprocess.NotFound, fmt.Sprintf("videoID[%s] video not found", id))
	}

	var originalURL, lowURL string
	if rec.OriginalKey != "" {
		originalURL, err = s.MinioClient.PresignGetURL(ctx, rec.OriginalKey, s.signedTTL)
		if err != nil {
			return nil, errprocess.SetKind(errprocess.UpstreamFailure,
				fmt.Sprintf("videoID[%s] presign original URL failed : %v", id, err))
		}
	}
	if rec.LowKey != "" {
		lowURL, err = s.MinioClient.PresignGetURL(ctx, rec.LowKey, s.signedTTL)
		if err != nil {
			return nil, errprocess.SetKind(errprocess.UpstreamFailure,
				fmt.Sprintf("videoID[%s] presign low URL failed : %v", id, err))
		}
	}

	return s.Records.Update(id, func(r *domain.VideoRecord) {
		r.OriginalURL = originalURL
		r.LowURL = lowURL
	})
}

// recordSuccess moves the record to its done terminal state
func (s *videoUseCase) recordSuccess(ctx context.Context, id, lowKey string) {
	rec, err := s.Records.Update(id, func(r *domain.VideoRecord) {
		r.LowKey = lowKey
		r.Status = domain.VideoDone
		r.Error = ""
	})
	if err != nil {
		logger.Log.Errorf(fmt.Sprintf("videoID[%s] mark done failed :", id), err)
		return
	}
	s.publishEvent(ctx, domain.EventVideoTranscoded, rec)
}

// recordFailure moves the record to its error terminal state; the cause is
// only visible through subsequent record reads
func (s *videoUseCase) recordFailure(ctx context.Context, id string, cause error) {
	rec, err := s.Records.Update(id, func(r *domain.VideoRecord) {
		r.Status = domain.VideoError
		r.Error = cause.Error()
	})
	if err != nil {
		logger.Log.Errorf(fmt.Sprintf("videoID[%s] mark error failed :", id), err)
		return
	}
	s.publishEvent(ctx, domain.EventVideoFailed, rec)
}

func (s *videoUseCase) publishEvent(ctx context.Context, name string, rec *domain.VideoRecord) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(ctx, domain.VideoEvent{
		Event:   name,
		VideoID: rec.ID,
		Status:  rec.Status,
		Error:   rec.Error,
		At:      time.Now().UTC(),
	})
}
