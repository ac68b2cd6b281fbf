package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"video_transcode_service/internal/videos/domain"
	errprocess "video_transcode_service/pkg/err"
	"video_transcode_service/pkg/logger"
)

// fixed low-rendition parameters: max width 1280 keeping aspect (even height),
// H.264 yuv420p, veryfast preset, CRF 28, AAC 96k, moov atom up front for
// streaming playback
func encodeArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-vf", `scale=w=min(1280\,iw):h=-2:flags=lanczos`,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", "veryfast",
		"-crf", "28",
		"-c:a", "aac",
		"-b:a", "96k",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}
}

// probeResult is the slice of ffprobe -show_streams output we care about
type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// wrapper vars so tests can stub the external tool and the filesystem
// 測試時可直接替換這些 wrapper function
var (
	statFile = os.Stat

	readHeader = func(path string) ([]byte, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		buf := make([]byte, 4096)
		n, err := f.Read(buf)
		if err != nil && err != io.EOF {
			return nil, err
		}
		return buf[:n], nil
	}

	runProbe = func(ctx context.Context, inputPath string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, "ffprobe",
			"-v", "error",
			"-print_format", "json",
			"-show_streams",
			inputPath,
		)
		return cmd.Output()
	}

	runEncode = func(ctx context.Context, inputPath, outputPath string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, "ffmpeg", encodeArgs(inputPath, outputPath)...)
		return cmd.CombinedOutput()
	}
)

// HandleTranscodeJob processes one dequeued transcode job. A job whose record
// is gone is silently discarded; every other outcome lands on the record.
// This never fails past its boundary, the queue sees every delivery as
// handled.
func (s *videoUseCase) HandleTranscodeJob(ctx context.Context, job domain.TranscodeJob) {
	if _, err := s.Records.Get(job.ID); err != nil {
		logger.Log.Warn(fmt.Sprintf("videoID[%s] transcode job for unknown record, discarded", job.ID))
		return
	}

	if err := s.transcodeFromStore(ctx, job.OriginalKey, job.LowKey, job.Ext); err != nil {
		s.recordFailure(ctx, job.ID, err)
	} else {
		s.recordSuccess(ctx, job.ID, job.LowKey)
	}

	if _, err := s.refreshSignedURLs(ctx, job.ID); err != nil {
		logger.Log.Errorf(fmt.Sprintf("videoID[%s] refresh signed URLs after transcode failed :", job.ID), err)
	}
}

// transcodeFromStore runs the transcode procedure:
// 1. download the original to a local temp file
// 2. reject empty downloads and files without an MP4 container marker
// 3. probe with ffprobe, reject sources without a video stream
// 4. encode the low rendition with ffmpeg
// 5. upload the result under lowKey
// 6. best-effort cleanup of both temp files
func (s *videoUseCase) transcodeFromStore(ctx context.Context, originalKey, lowKey, ext string) error {
	localSrc, err := s.MinioClient.DownloadToTemp(ctx, originalKey, ext)
	if err != nil {
		return errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("download original[%s] failed : %v", originalKey, err))
	}
	localDst := strings.TrimSuffix(localSrc, ext) + "_low" + ext
	defer func() {
		// cleanup failures are swallowed, the files are uniquely named
		os.Remove(localSrc)
		os.Remove(localDst)
	}()

	st, err := statFile(localSrc)
	if err != nil {
		return errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("stat downloaded original[%s] failed : %v", originalKey, err))
	}
	if st.Size() == 0 {
		return errprocess.SetKind(errprocess.InvalidInput,
			fmt.Sprintf("original[%s] empty download (size=0)", originalKey))
	}

	header, err := readHeader(localSrc)
	if err != nil {
		return errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("read original[%s] header failed : %v", originalKey, err))
	}
	if !bytes.Contains(header, []byte("ftyp")) {
		return errprocess.SetKind(errprocess.InvalidInput,
			fmt.Sprintf("original[%s] not a recognized video container (no ftyp marker)", originalKey))
	}

	probeOut, err := runProbe(ctx, localSrc)
	if err != nil {
		return errprocess.SetKind(errprocess.EncoderFailure,
			fmt.Sprintf("ffprobe original[%s] failed : %v", originalKey, err))
	}
	var info probeResult
	if err := json.Unmarshal(probeOut, &info); err != nil {
		return errprocess.SetKind(errprocess.EncoderFailure,
			fmt.Sprintf("parse ffprobe output for original[%s] failed : %v", originalKey, err))
	}
	hasVideo := false
	for _, stream := range info.Streams {
		if stream.CodecType == "video" {
			hasVideo = true
			break
		}
	}
	if !hasVideo {
		return errprocess.SetKind(errprocess.InvalidInput,
			fmt.Sprintf("original[%s] has no video stream", originalKey))
	}

	if out, err := runEncode(ctx, localSrc, localDst); err != nil {
		return errprocess.SetKind(errprocess.EncoderFailure,
			fmt.Sprintf("ffmpeg encode original[%s] failed : %v, output: %s", originalKey, err, string(out)))
	}

	if err := s.MinioClient.UploadFile(ctx, lowKey, localDst, "video/mp4"); err != nil {
		return errprocess.SetKind(errprocess.UpstreamFailure,
			fmt.Sprintf("upload low rendition[%s] failed : %v", lowKey, err))
	}

	return nil
}
