package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/models"
	"github.com/noah-isme/eduworld-api/internal/observability"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the detected MIME type does not match the resource kind.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadMissing indicates no file was attached.
	ErrUploadMissing = errors.New("file is required")
)

// MediaStorage abstracts where unit media is written.
type MediaStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// MediaService validates, stores and removes unit videos and pdfs.
type MediaService interface {
	Store(ctx context.Context, kind string, file *multipart.FileHeader, uploadedBy *uint) (dto.UploadResponse, error)
	Remove(ctx context.Context, urls []string)
}

type mediaService struct {
	storage MediaStorage
	repo    repository.UploadRepository
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewMediaService constructs a media service.
func NewMediaService(storage MediaStorage, repo repository.UploadRepository, maxBytes int64, logger zerolog.Logger) MediaService {
	if maxBytes <= 0 {
		maxBytes = 100 << 20
	}
	return &mediaService{
		storage: storage,
		repo:    repo,
		logger:  logger.With().Str("component", "media_service").Logger(),
		maxSize: maxBytes,
		tracer:  otel.Tracer("github.com/noah-isme/eduworld-api/internal/service/media"),
	}
}

func (s *mediaService) Store(ctx context.Context, kind string, file *multipart.FileHeader, uploadedBy *uint) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "media.store")
	defer span.End()

	span.SetAttributes(
		attribute.String("media.kind", kind),
		attribute.Int64("media.max_bytes", s.maxSize),
	)

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		span.RecordError(ErrUploadMissing)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, ErrUploadMissing
	}
	span.SetAttributes(
		attribute.String("media.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("media.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		return dto.UploadResponse{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return dto.UploadResponse{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	detected := strings.ToLower(mimetype.Detect(buf.Bytes()).String())
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = detected[:idx]
	}
	span.SetAttributes(attribute.String("media.detected_mime", detected))
	if !mimeMatchesKind(kind, detected) {
		return dto.UploadResponse{}, s.reject(span, "type", ErrUploadTypeNotAllowed)
	}

	checksum := sha256.Sum256(buf.Bytes())
	storedName := storedFileName(file.Filename, detected)
	span.SetAttributes(attribute.String("media.stored_name", storedName))

	url, err := s.storage.Upload(ctx, storedName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.UploadResponse{}, fmt.Errorf("store media: %w", err)
	}

	record := models.UploadRecord{
		UploadedBy: uploadedBy,
		Kind:       kind,
		FileName:   storedName,
		URL:        url,
		MimeType:   detected,
		SizeBytes:  int64(buf.Len()),
		Checksum:   hex.EncodeToString(checksum[:]),
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		s.Remove(ctx, []string{url})
		return dto.UploadResponse{}, fmt.Errorf("record media: %w", err)
	}

	observability.UploadRequests().WithLabelValues(kind).Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.UploadResponse{
		URL:      url,
		FileName: record.FileName,
		MimeType: record.MimeType,
		Size:     record.SizeBytes,
		Checksum: record.Checksum,
	}, nil
}

// Remove deletes files best-effort. Failures are logged and counted, never returned.
func (s *mediaService) Remove(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}

	for _, url := range urls {
		if strings.TrimSpace(url) == "" {
			continue
		}
		if err := s.storage.Delete(ctx, url); err != nil {
			observability.MediaDeleteFailures().Inc()
			s.logger.Warn().Err(err).Str("url", url).Msg("failed to delete media file")
		}
	}

	if err := s.repo.DeleteByURLs(ctx, urls); err != nil {
		s.logger.Warn().Err(err).Int("count", len(urls)).Msg("failed to delete upload records")
	}
}

func (s *mediaService) reject(span trace.Span, reason string, err error) error {
	observability.UploadRejected().WithLabelValues(reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	return err
}

func mimeMatchesKind(kind, detected string) bool {
	switch kind {
	case models.ResourceTypeVideo:
		return strings.HasPrefix(detected, "video/")
	case models.ResourceTypePDF:
		return detected == "application/pdf"
	default:
		return false
	}
}

func storedFileName(original, detected string) string {
	ext := strings.ToLower(filepath.Ext(original))
	ext = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, ext)
	if len(ext) < 2 {
		if extension := mimetype.Lookup(detected); extension != nil {
			ext = extension.Extension()
		}
	}
	if ext == "" {
		ext = ".bin"
	}
	return uuid.NewString() + ext
}

// displayName picks the supplied name, then the original file name, then a numbered fallback.
func displayName(supplied []string, idx int, file *multipart.FileHeader, fallback string) string {
	if idx < len(supplied) {
		if name := strings.TrimSpace(supplied[idx]); name != "" {
			return name
		}
	}
	if file != nil && strings.TrimSpace(file.Filename) != "" {
		return strings.TrimSpace(file.Filename)
	}
	return fmt.Sprintf("%s %d", fallback, idx+1)
}
