package pkg

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/simp-lee/colocmatching/internal/domain"
)

// allowedImageTypes maps accepted content types to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// FileStore saves uploaded pictures to a local directory.
type FileStore struct {
	dir      string
	maxBytes int64
}

// NewFileStore creates dir if needed and returns a store limiting uploads to maxBytes.
func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory files are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

// SaveImage stores an uploaded image under a random name and returns that name.
// The content type is sniffed from the first bytes, never trusted from the client.
func (s *FileStore) SaveImage(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", domain.NewValidationError("validation error", map[string]string{"file": "required"})
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", domain.NewValidationError("validation error", map[string]string{
			"file": fmt.Sprintf("must not exceed %d bytes", s.maxBytes),
		})
	}

	src, err := fh.Open()
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "open upload", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", domain.NewAppError(domain.CodeInternal, "read upload", err)
	}
	ext, ok := allowedImageTypes[http.DetectContentType(head[:n])]
	if !ok {
		return "", domain.NewValidationError("validation error", map[string]string{
			"file": "must be a jpeg, png or gif image",
		})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "read upload", err)
	}

	name := uuid.NewString() + ext
	out, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "store upload", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(out.Name())
		return "", domain.NewAppError(domain.CodeInternal, "store upload", err)
	}
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *FileStore) Remove(name string) error {
	if name == "" || filepath.Base(name) != name {
		return domain.NewInvalidParameter("invalid file name")
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return domain.NewAppError(domain.CodeInternal, "remove upload", err)
	}
	return nil
}
