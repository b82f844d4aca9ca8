// Package upload stores attribute attachments on local disk and exposes them
// under a public URL prefix.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicPrefix is the URL prefix under which stored files are served.
const PublicPrefix = "/uploads/"

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

// StoredFile describes a file written to the store.
type StoredFile struct {
	Path     string // public path, e.g. /uploads/1712345-abc.png
	Name     string // original client file name
	Category string // coarse type: image, document, audio, video, other
	Size     int64  // bytes
}

// Store writes uploaded files to a directory with unique names.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory files are written to, for static serving.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes returns the per-file upload limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save writes the uploaded file to disk under a unique name derived from the
// upload time, keeping the original extension.
func (s *Store) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening uploaded file: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s%s",
		time.Now().UnixMilli(), uuid.NewString(), filepath.Ext(fh.Filename))

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating stored file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dst.Name())
		return nil, fmt.Errorf("writing stored file: %w", err)
	}

	return &StoredFile{
		Path:     PublicPrefix + name,
		Name:     fh.Filename,
		Category: Categorize(fh.Header.Get("Content-Type")),
		Size:     written,
	}, nil
}

// Remove deletes a stored file given its public path. The path is reduced to
// its base name so callers cannot escape the upload directory.
func (s *Store) Remove(publicPath string) error {
	name := path.Base(publicPath)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stored file: %w", err)
	}
	return nil
}

// Categorize maps a MIME type to a coarse category for display.
func Categorize(contentType string) string {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return "image"
	case strings.HasPrefix(mediaType, "audio/"):
		return "audio"
	case strings.HasPrefix(mediaType, "video/"):
		return "video"
	case strings.HasPrefix(mediaType, "text/"),
		mediaType == "application/pdf",
		mediaType == "application/msword",
		strings.HasPrefix(mediaType, "application/vnd.openxmlformats-officedocument"),
		strings.HasPrefix(mediaType, "application/vnd.ms-"):
		return "document"
	default:
		return "other"
	}
}
