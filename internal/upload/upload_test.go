package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	calls   int
	path    string
	folder  string
	content []byte
	err     error
}

func (s *recordingSink) Upload(_ context.Context, localPath, folder string) (string, error) {
	s.calls++
	s.path = localPath
	s.folder = folder
	s.content, _ = os.ReadFile(localPath)
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example/" + folder + "/" + filepath.Base(localPath), nil
}

func newTestHandler(t *testing.T, sink Sink) (*Handler, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "staging")
	return NewHandler(dir, "projetos", sink, nil), dir
}

func stagedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAcceptValidImage(t *testing.T) {
	sink := &recordingSink{}
	h, dir := newTestHandler(t, sink)

	data := bytes.Repeat([]byte{0xAB}, 2*1024*1024)
	url, err := h.Accept(context.Background(), File{
		Reader:   bytes.NewReader(data),
		Filename: "Screenshot.WEBP",
		MIMEType: "image/webp",
		Size:     int64(len(data)),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, "projetos", sink.folder)
	assert.Equal(t, data, sink.content)
	assert.Regexp(t, regexp.MustCompile(`^projeto-\d+-[0-9a-f-]{36}\.webp$`), filepath.Base(sink.path))
	assert.True(t, strings.HasPrefix(url, "https://cdn.example/projetos/projeto-"))
	assert.Empty(t, stagedFiles(t, dir), "staged copy is removed")
}

func TestAcceptRejections(t *testing.T) {
	tests := []struct {
		name    string
		file    File
		wantErr error
	}{
		{
			name:    "executable mime with image extension",
			file:    File{Filename: "cat.png", MIMEType: "application/x-msdownload", Size: 10},
			wantErr: ErrUnsupportedFileType,
		},
		{
			name:    "image mime with wrong extension",
			file:    File{Filename: "doc.pdf", MIMEType: "image/png", Size: 10},
			wantErr: ErrUnsupportedFileType,
		},
		{
			name:    "no extension",
			file:    File{Filename: "image", MIMEType: "image/png", Size: 10},
			wantErr: ErrUnsupportedFileType,
		},
		{
			name:    "svg is not allowed",
			file:    File{Filename: "logo.svg", MIMEType: "image/svg+xml", Size: 10},
			wantErr: ErrUnsupportedFileType,
		},
		{
			name:    "declared size too large",
			file:    File{Filename: "big.jpg", MIMEType: "image/jpeg", Size: 6 * 1024 * 1024},
			wantErr: ErrFileTooLarge,
		},
		{
			name:    "type checked before size",
			file:    File{Filename: "big.exe", MIMEType: "image/jpeg", Size: 6 * 1024 * 1024},
			wantErr: ErrUnsupportedFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			h, dir := newTestHandler(t, sink)
			tt.file.Reader = bytes.NewReader(make([]byte, 10))

			_, err := h.Accept(context.Background(), tt.file)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, sink.calls)
			assert.Empty(t, stagedFiles(t, dir))
		})
	}
}

func TestAcceptUnderstatedSize(t *testing.T) {
	sink := &recordingSink{}
	h, dir := newTestHandler(t, sink)

	_, err := h.Accept(context.Background(), File{
		Reader:   io.LimitReader(zeroReader{}, 6*1024*1024),
		Filename: "liar.png",
		MIMEType: "image/png",
		Size:     100,
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Zero(t, sink.calls)
	assert.Empty(t, stagedFiles(t, dir))
}

func TestAcceptExactLimit(t *testing.T) {
	sink := &recordingSink{}
	h, _ := newTestHandler(t, sink)

	_, err := h.Accept(context.Background(), File{
		Reader:   io.LimitReader(zeroReader{}, MaxFileSize),
		Filename: "edge.gif",
		MIMEType: "image/gif",
		Size:     MaxFileSize,
	})
	assert.NoError(t, err)
}

func TestAcceptSinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("503 from provider")}
	h, dir := newTestHandler(t, sink)

	_, err := h.Accept(context.Background(), File{
		Reader:   strings.NewReader("png bytes"),
		Filename: "a.png",
		MIMEType: "image/png; charset=binary",
		Size:     9,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSinkFailed)
	assert.Contains(t, err.Error(), "503 from provider")
	assert.Empty(t, stagedFiles(t, dir), "staged copy is removed after a failed upload")
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
