// Package uploads stores product images on the local filesystem.
package uploads

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var ErrNotImage = errors.New("uploaded file is not a supported image")

// allowed maps sniffed image types to the extension they are stored with
var allowed = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStore writes images under Dir with collision-free names
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir}
}

// Save sniffs the content, then writes it as <uuid>_<slug><ext>
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(3072)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	ext, ok := allowed[mimetype.Detect(head).String()]
	if !ok {
		return "", ErrNotImage
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := FileName(originalName, ext)
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, br); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close image: %w", err)
	}
	return name, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *LocalStore) Delete(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid image name %q", name)
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// FileName builds a random, filesystem-safe name that keeps a readable stem
func FileName(originalName, ext string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "image"
	}
	return fmt.Sprintf("%s_%s%s", strings.ReplaceAll(uuid.NewString(), "-", ""), stem, ext)
}
