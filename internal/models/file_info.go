package models

import (
	"io"
	"time"
)

// ContentSource is the opaque handle to a file's bytes.
type ContentSource interface {
	Open() (io.ReadCloser, error)
}

// FileDescriptor describes a file offered by the drop zone or the file picker.
type FileDescriptor struct {
	ID      string        `json:"id,omitempty"` // Staging id, empty when not staged
	Name    string        `json:"name"`
	Size    int64         `json:"size"`
	Content ContentSource `json:"-"`
}

// ValidationVerdict is the result of validating a single FileDescriptor.
type ValidationVerdict struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// StagedFile is the metadata of file content held for a UI session until it is
// submitted or the session ends.
type StagedFile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	StagedAt time.Time `json:"stagedAt"`
}
