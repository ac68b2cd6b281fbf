package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	errprocess "video_transcode_service/pkg/err"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// runTranscode drives transcodeFromStore directly with a stubbed download
func runTranscode(t *testing.T, f *usecaseFixture, localSrc string) error {
	t.Helper()
	f.minio.On("DownloadToTemp", mock.Anything, "original/vid.mp4", ".mp4").Return(localSrc, nil)
	uc := f.usecase.(*videoUseCase)
	return uc.transcodeFromStore(context.Background(), "original/vid.mp4", "low/vid_low.mp4", ".mp4")
}

func TestTranscode_DownloadFailure(t *testing.T) {
	f := newFixture()
	f.minio.On("DownloadToTemp", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("connection refused"))
	uc := f.usecase.(*videoUseCase)

	err := uc.transcodeFromStore(context.Background(), "original/vid.mp4", "low/vid_low.mp4", ".mp4")

	assert.Equal(t, errprocess.UpstreamFailure, errprocess.KindOf(err))
}

func TestTranscode_EmptyDownload(t *testing.T) {
	f := newFixture()

	err := runTranscode(t, f, writeTempVideo(t, ".mp4", nil))

	assert.Equal(t, errprocess.InvalidInput, errprocess.KindOf(err))
	assert.Contains(t, err.Error(), "empty download")
}

func TestTranscode_MissingContainerMarker(t *testing.T) {
	f := newFixture()

	err := runTranscode(t, f, writeTempVideo(t, ".mp4", []byte("this is not an mp4 file")))

	assert.Equal(t, errprocess.InvalidInput, errprocess.KindOf(err))
	assert.Contains(t, err.Error(), "ftyp")
}

func TestTranscode_ProbeFailure(t *testing.T) {
	f := newFixture()
	stubPipeline(t, "", errors.New("ffprobe exited 1"), nil)

	err := runTranscode(t, f, writeTempVideo(t, ".mp4", mp4Header))

	assert.Equal(t, errprocess.EncoderFailure, errprocess.KindOf(err))
}

func TestTranscode_UnparsableProbeOutput(t *testing.T) {
	f := newFixture()
	stubPipeline(t, "{not json", nil, nil)

	err := runTranscode(t, f, writeTempVideo(t, ".mp4", mp4Header))

	assert.Equal(t, errprocess.EncoderFailure, errprocess.KindOf(err))
}

func TestTranscode_NoVideoStream(t *testing.T) {
	f := newFixture()
	stubPipeline(t, probeAudioOnly, nil, nil)

	err := runTranscode(t, f, writeTempVideo(t, ".mp4", mp4Header))

	assert.Equal(t, errprocess.InvalidInput, errprocess.KindOf(err))
	assert.Contains(t, err.Error(), "no video stream")
}

func TestTranscode_EncodeFailure(t *testing.T) {
	f := newFixture()
	stubPipeline(t, probeWithVideo, nil, errors.New("ffmpeg exited 1"))

	err := runTranscode(t, f, writeTempVideo(t, ".mp4", mp4Header))

	assert.Equal(t, errprocess.EncoderFailure, errprocess.KindOf(err))
}

func TestTranscode_LowUploadFailure(t *testing.T) {
	f := newFixture()
	stubPipeline(t, probeWithVideo, nil, nil)
	f.minio.On("UploadFile", mock.Anything, "low/vid_low.mp4", mock.Anything, "video/mp4").
		Return(errors.New("bucket gone"))

	err := runTranscode(t, f, writeTempVideo(t, ".mp4", mp4Header))

	assert.Equal(t, errprocess.UpstreamFailure, errprocess.KindOf(err))
}

func TestTranscode_SuccessCleansUpTempFiles(t *testing.T) {
	f := newFixture()
	stubPipeline(t, probeWithVideo, nil, nil)
	localSrc := writeTempVideo(t, ".mp4", mp4Header)
	localDst := filepath.Join(filepath.Dir(localSrc), "src_low.mp4")
	f.minio.On("UploadFile", mock.Anything, "low/vid_low.mp4", localDst, "video/mp4").Return(nil)

	err := runTranscode(t, f, localSrc)

	assert.NoError(t, err)
	_, statErr := os.Stat(localSrc)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(localDst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEncodeArgs_FixedRenditionParameters(t *testing.T) {
	args := encodeArgs("/tmp/in.mp4", "/tmp/out.mp4")

	assert.Contains(t, args, `scale=w=min(1280\,iw):h=-2:flags=lanczos`)
	assert.Contains(t, args, "libx264")
	assert.Contains(t, args, "yuv420p")
	assert.Contains(t, args, "veryfast")
	assert.Contains(t, args, "28")
	assert.Contains(t, args, "aac")
	assert.Contains(t, args, "96k")
	assert.Contains(t, args, "+faststart")
	assert.Equal(t, "/tmp/out.mp4", args[len(args)-1])
}
