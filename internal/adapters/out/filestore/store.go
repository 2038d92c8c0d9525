// Package filestore keeps proof images on a filesystem and serves them under a public base
// URL. Files are laid out as <dir>/<yyyy>/<mm>/<uuid><ext>.
package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"shoecare/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// MaxImageSize bounds a single upload.
const MaxImageSize = 5 << 20

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// Store implements ports.ImageStore.
type Store struct {
	fs      afero.Fs
	baseURL string
	now     func() time.Time
}

// New stores files under dir on the OS filesystem.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL), nil
}

// NewWithFs stores files on fs, whose root is the upload directory.
func NewWithFs(fs afero.Fs, baseURL string) *Store {
	return &Store{
		fs:      fs,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Upload writes r under a generated name and returns its public URL. Only image extensions
// are accepted and the content is capped at MaxImageSize.
func (s *Store) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", errs.NewValueIsInvalidErrorWithCause("image", fmt.Errorf("extension %q is not allowed", ext))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	at := s.now().UTC()
	rel := path.Join(at.Format("2006"), at.Format("01"), uuid.NewString()+ext)
	if err := s.fs.MkdirAll(path.Dir(rel), 0o755); err != nil {
		return "", fmt.Errorf("filestore: %w", err)
	}

	f, err := s.fs.Create(rel)
	if err != nil {
		return "", fmt.Errorf("filestore: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > MaxImageSize {
		err = errs.NewValueIsOutOfRangeError("image size", n, 1, MaxImageSize)
	}
	if err == nil && n == 0 {
		err = errs.NewValueIsRequiredError("image")
	}
	if err != nil {
		_ = s.fs.Remove(rel)
		return "", err
	}
	return s.baseURL + "/" + rel, nil
}

// Delete removes the file behind url. Unknown or foreign URLs are ignored.
func (s *Store) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return nil
	}
	err := s.fs.Remove(rel)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: %w", err)
	}
	return nil
}
