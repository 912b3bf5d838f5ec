// Package upload validates project images, stages them on disk and hands
// them to the configured hosting sink.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxFileSize is the largest accepted image (5 MiB).
const MaxFileSize = 5 * 1024 * 1024

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrSinkFailed          = errors.New("image hosting failed")
)

var allowedTypes = map[string]struct{}{
	"jpeg": {},
	"jpg":  {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

// File is an uploaded image as received from the client. Size is the
// declared size and is not trusted.
type File struct {
	Reader   io.Reader
	Filename string
	MIMEType string
	Size     int64
}

// Sink hosts a staged file and returns its public URL.
type Sink interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
}

// Handler accepts image uploads.
type Handler struct {
	stagingDir string
	folder     string
	maxBytes   int64
	sink       Sink
	logger     *zap.Logger
	now        func() time.Time
}

// NewHandler creates a handler staging files under stagingDir and uploading
// them into folder on sink.
func NewHandler(stagingDir, folder string, sink Sink, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		stagingDir: stagingDir,
		folder:     folder,
		maxBytes:   MaxFileSize,
		sink:       sink,
		logger:     logger.Named("upload"),
		now:        time.Now,
	}
}

// Accept validates f, stages it, uploads it to the sink and returns the
// hosted URL. The staged copy is removed whatever the outcome.
func (h *Handler) Accept(ctx context.Context, f File) (string, error) {
	ext, err := validate(f)
	if err != nil {
		return "", err
	}
	if f.Size > h.maxBytes {
		return "", ErrFileTooLarge
	}

	if err := os.MkdirAll(h.stagingDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	name := fmt.Sprintf("projeto-%d-%s.%s", h.now().UnixMilli(), uuid.NewString(), ext)
	staged := filepath.Join(h.stagingDir, name)

	if err := h.stage(staged, f.Reader); err != nil {
		return "", err
	}
	defer h.discard(staged)

	url, err := h.sink.Upload(ctx, staged, h.folder)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSinkFailed, err)
	}

	h.logger.Info("image uploaded",
		zap.String("filename", f.Filename),
		zap.String("url", url),
	)
	return url, nil
}

// stage copies at most maxBytes+1 bytes so an understated Size cannot
// bypass the limit.
func (h *Handler) stage(path string, r io.Reader) error {
	// Create destination file
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return fmt.Errorf("failed to create staged file: %w", err)
	}

	// Copy content
	n, err := io.Copy(dst, io.LimitReader(r, h.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to save staged file: %w", err)
	}
	if n > h.maxBytes {
		os.Remove(path)
		return ErrFileTooLarge
	}
	return nil
}

func (h *Handler) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.logger.Warn("failed to remove staged file", zap.String("path", path), zap.Error(err))
	}
}

// validate checks extension then declared MIME type and returns the
// lower-cased extension.
func validate(f File) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), ".")
	if _, ok := allowedTypes[ext]; !ok {
		return "", ErrUnsupportedFileType
	}

	mime := strings.ToLower(strings.TrimSpace(f.MIMEType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	sub, ok := strings.CutPrefix(mime, "image/")
	if !ok {
		return "", ErrUnsupportedFileType
	}
	if _, ok := allowedTypes[sub]; !ok {
		return "", ErrUnsupportedFileType
	}

	return ext, nil
}
