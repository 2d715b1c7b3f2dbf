package intake

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/md2xlsx/webui/internal/messages"
	"github.com/md2xlsx/webui/internal/models"
)

// PreviewLimit is the number of characters shown before the preview is cut.
const PreviewLimit = 1000

// ErrNoContent is returned when a descriptor has no content handle.
var ErrNoContent = errors.New("intake: file has no content")

// FileReadError reports a failed content read. It never affects submission state.
type FileReadError struct {
	File string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.File, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// ReadContent reads the whole file. Reads beyond max bytes fail so that a content
// handle larger than its declared size cannot bypass the policy.
func ReadContent(f models.FileDescriptor, max int64) ([]byte, error) {
	if f.Content == nil {
		return nil, &FileReadError{File: f.Name, Err: ErrNoContent}
	}
	rc, err := f.Content.Open()
	if err != nil {
		return nil, &FileReadError{File: f.Name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, max+1))
	if err != nil {
		return nil, &FileReadError{File: f.Name, Err: err}
	}
	if int64(len(data)) > max {
		return nil, &FileReadError{File: f.Name, Err: fmt.Errorf("content exceeds %s", FormatSize(max))}
	}
	return data, nil
}

// Preview returns the first PreviewLimit characters of the file's text, with the
// catalog's continuation marker appended when the text was cut.
func Preview(f models.FileDescriptor, max int64, msgs *messages.Catalog) (string, error) {
	if msgs == nil {
		msgs = messages.Default(messages.DefaultLocale)
	}
	data, err := ReadContent(f, max)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", &FileReadError{File: f.Name, Err: errors.New("content is not valid UTF-8 text")}
	}

	text := string(data)
	if utf8.RuneCountInString(text) <= PreviewLimit {
		return text, nil
	}
	runes := []rune(text)
	return string(runes[:PreviewLimit]) + msgs.Text(messages.Continued), nil
}
