// Package filex contains small filesystem helpers for the CLI client.
package filex

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageSize bounds a single attached image.
const MaxImageSize = 10 << 20

// ErrNotImage is returned by ReadImage for files whose content is not an image.
var ErrNotImage = errors.New("file is not an image")

// EnsureParentDir creates the directory that will hold filePath.
// Paths without a directory component (or SQLite ":memory:" DSNs) are left alone.
func EnsureParentDir(filePath string) error {
	if filePath == "" || strings.HasPrefix(filePath, ":memory:") || strings.HasPrefix(filePath, "file:") {
		return nil
	}
	dir := filepath.Dir(filePath)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Image is a local image file loaded for upload.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadImage loads path and sniffs its content type. Non-image content and
// files above MaxImageSize are rejected.
func ReadImage(path string) (*Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxImageSize {
		return nil, fmt.Errorf("%s: %d bytes exceeds %d", path, fi.Size(), MaxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%s (%s): %w", path, ct, ErrNotImage)
	}
	return &Image{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
