package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrOutsideRoot is returned when a url does not point below the public path.
var ErrOutsideRoot = errors.New("file is outside the upload directory")

// Local stores media on the local filesystem and serves it under a public path.
type Local struct {
	dir        string
	publicPath string
	logger     zerolog.Logger
}

// NewLocal prepares the upload directory.
func NewLocal(dir, publicPath string, logger zerolog.Logger) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory must be provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	publicPath = "/" + strings.Trim(publicPath, "/")

	return &Local{
		dir:        dir,
		publicPath: publicPath,
		logger:     logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Dir returns the directory files are written to.
func (l *Local) Dir() string {
	return l.dir
}

// PublicPath returns the url prefix files are served under.
func (l *Local) PublicPath() string {
	return l.publicPath
}

// Upload writes the reader to dir/name and returns the public url.
func (l *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name")
	}

	target := filepath.Join(l.dir, name)
	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close file: %w", err)
	}

	l.logger.Debug().Str("file", name).Msg("file stored on disk")
	return path.Join(l.publicPath, name), nil
}

// Delete removes the file behind a public url. Missing files are not an error.
func (l *Local) Delete(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := l.fileName(rawURL)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(l.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (l *Local) fileName(rawURL string) (string, error) {
	urlPath := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		urlPath = parsed.Path
	}

	prefix := strings.TrimSuffix(l.publicPath, "/") + "/"
	if !strings.HasPrefix(urlPath, prefix) {
		return "", ErrOutsideRoot
	}

	name := strings.TrimPrefix(urlPath, prefix)
	if name == "" || strings.Contains(name, "/") || name == ".." {
		return "", ErrOutsideRoot
	}
	return name, nil
}
