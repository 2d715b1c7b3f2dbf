// files.go - In-memory file descriptors for tests
package testutil

import (
	"bytes"
	"errors"
	"io"

	"github.com/md2xlsx/webui/internal/models"
)

// BytesContent is a ContentSource over a byte slice.
type BytesContent []byte

// Open returns a reader over the bytes.
func (b BytesContent) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FailingContent is a ContentSource whose Open always fails.
type FailingContent struct{ Err error }

// Open returns the configured error.
func (f FailingContent) Open() (io.ReadCloser, error) {
	if f.Err == nil {
		return nil, errors.New("content unavailable")
	}
	return nil, f.Err
}

// File builds a descriptor whose size matches data.
func File(name string, data string) models.FileDescriptor {
	return models.FileDescriptor{Name: name, Size: int64(len(data)), Content: BytesContent(data)}
}

// SizedFile builds a descriptor that only declares a size. Its content is empty.
func SizedFile(name string, size int64) models.FileDescriptor {
	return models.FileDescriptor{Name: name, Size: size, Content: BytesContent(nil)}
}

// Names returns the names of files in order.
func Names(files []models.FileDescriptor) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}
