// Package storage stages the content of files the browser sends until a session
// submits or discards them.
package storage

import (
	"io"

	"github.com/md2xlsx/webui/internal/models"
)

// content is the ContentSource of a staged file.
type content struct {
	store Store
	id    string
}

func (c content) Open() (io.ReadCloser, error) {
	return c.store.Open(c.id)
}

// Descriptor returns the FileDescriptor of a staged file. declaredSize is the size
// the browser reported, which the validator checks; it may differ from the staged
// byte count when the browser withheld oversized content.
func Descriptor(store Store, info *models.StagedFile, declaredSize int64) models.FileDescriptor {
	return models.FileDescriptor{
		ID:      info.ID,
		Name:    info.Name,
		Size:    declaredSize,
		Content: content{store: store, id: info.ID},
	}
}
