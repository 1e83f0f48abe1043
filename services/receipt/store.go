// Package receiptsvc keeps uploaded payment receipts on disk, with a JPEG thumbnail next to each image.
package receiptsvc

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/payment"
)

const (
	thumbDir   = "thumbs"
	thumbWidth = 320
)

var errReceiptNotFound = core.NewNotFoundError("receipt file not found")

// FileStore saves receipts under root. Writes go to a temporary file first, then get renamed.
type FileStore struct {
	root   string
	logger core.Logger
}

var _ payment.ReceiptStore = (*FileStore)(nil)

func NewFileStore(root string, logger core.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(root, thumbDir), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating receipt directories")
	}
	return &FileStore{root: root, logger: logger}, nil
}

// path resolves name inside root; names with path separators are refused.
func (s *FileStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.Errorf("invalid receipt name %q", name)
	}
	return filepath.Join(s.root, name), nil
}

func thumbName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
}

func (s *FileStore) Save(ctx context.Context, name string, content []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err = writeFile(p, content); err != nil {
		return errors.Wrapf(err, "writing receipt %s", name)
	}

	if strings.HasPrefix(mimetype.Detect(content).String(), "image/") {
		if err = s.saveThumbnail(name, content); err != nil {
			// thumbnails are best effort
			s.logger.Warn("creating receipt thumbnail", err, map[string]interface{}{"receipt": name})
		}
	}
	return ctx.Err()
}

func (s *FileStore) saveThumbnail(name string, content []byte) error {
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return errors.Wrap(err, "decoding image")
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return errors.Wrap(err, "encoding thumbnail")
	}
	return writeFile(filepath.Join(s.root, thumbDir, thumbName(name)), buf.Bytes())
}

func (s *FileStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return openFile(p)
}

// OpenThumbnail opens the thumbnail of an image receipt.
func (s *FileStore) OpenThumbnail(_ context.Context, name string) (io.ReadCloser, error) {
	if _, err := s.path(name); err != nil {
		return nil, err
	}
	return openFile(filepath.Join(s.root, thumbDir, thumbName(name)))
}

// Delete removes the receipt and its thumbnail. Missing files are not an error.
func (s *FileStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	for _, fp := range []string{p, filepath.Join(s.root, thumbDir, thumbName(name))} {
		if err = os.Remove(fp); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %s", fp)
		}
	}
	return nil
}

func openFile(p string) (io.ReadCloser, error) {
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errReceiptNotFound
		}
		return nil, err
	}
	return f, nil
}

func writeFile(p string, content []byte) error {
	tmp := filepath.Join(filepath.Dir(p), ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
