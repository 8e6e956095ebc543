package upload

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Staging writes incoming multipart files to a local directory before they
// are forwarded to the asset host.
type Staging struct {
	dir string
}

func NewStaging(dir string) (*Staging, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging dir: %w", err)
	}
	return &Staging{dir: dir}, nil
}

// Stage copies the named multipart file part to the staging directory and
// returns its local path. When the part is absent it returns "" with no
// error so callers can treat the file as optional.
func (s *Staging) Stage(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read multipart %q: %w", field, err)
	}
	defer file.Close()

	name := fmt.Sprintf("%s-%d-%s%s",
		field, time.Now().UnixMilli(), uuid.New().String(), filepath.Ext(header.Filename))
	path := filepath.Join(s.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage %q: %w", field, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("stage %q: %w", field, err)
	}
	return path, nil
}

// Discard removes a staged file. Empty paths and already-removed files are
// not errors, so it is safe to defer unconditionally.
func (s *Staging) Discard(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
