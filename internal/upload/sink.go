package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinarySink hosts images on Cloudinary.
type CloudinarySink struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinarySink creates a sink for the given account. A non-empty
// uploadPrefix overrides the API endpoint.
func NewCloudinarySink(cloudName, apiKey, apiSecret, uploadPrefix string) (*CloudinarySink, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	if uploadPrefix != "" {
		cld.Config.API.UploadPrefix = uploadPrefix
	}
	return &CloudinarySink{cld: cld}, nil
}

func (s *CloudinarySink) Upload(ctx context.Context, localPath, folder string) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", errors.New("cloudinary returned no secure_url")
	}
	return resp.SecureURL, nil
}

// LocalSink keeps images on local disk under dir, served at urlPrefix.
type LocalSink struct {
	dir       string
	urlPrefix string
}

// NewLocalSink creates a sink writing into dir.
func NewLocalSink(dir, urlPrefix string) *LocalSink {
	return &LocalSink{dir: dir, urlPrefix: urlPrefix}
}

func (s *LocalSink) Upload(ctx context.Context, localPath, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	destDir := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(destDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := filepath.Base(localPath)
	if err := copyFile(localPath, filepath.Join(destDir, name)); err != nil {
		return "", err
	}

	return path.Join(s.urlPrefix, folder, name), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return out.Close()
}
