// Package images stores uploaded post images on disk and serves them back
// as "/static/<name>" references.
package images

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// RefPrefix is the URL path under which stored files are served.
const RefPrefix = "/static/"

// ErrUnsupportedType is returned for files outside the extension whitelist.
var ErrUnsupportedType = errors.New("images: unsupported file type")

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Store writes files under a single directory with random hex names, so an
// uploaded filename never influences where anything lands on disk.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are stored in, for the static file
// server.
func (s *Store) Dir() string {
	return s.dir
}

// Save stores one uploaded file and returns its "/static/<name>" reference.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	ext := extension(fh.Filename)
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := randomName() + "." + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	return RefPrefix + name, nil
}

// Remove deletes the files behind the given references. Unknown or already
// missing references are skipped; deletion failures must not block the
// post delete that triggered them.
func (s *Store) Remove(refs []string) {
	for _, ref := range refs {
		name := strings.TrimPrefix(ref, RefPrefix)
		if name == ref || name == "" {
			continue
		}
		// path.Base guards against references escaping the uploads dir.
		_ = os.Remove(filepath.Join(s.dir, path.Base(name)))
	}
}

func extension(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext
}

func randomName() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure means the host is broken
	}
	return hex.EncodeToString(b)
}
