// Package messages provides the localised texts shown by notifications and controls.
package messages

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Message keys.
const (
	DisallowedType = "validation.disallowed_type"
	TooLarge       = "validation.too_large"
	Empty          = "validation.empty"
	NoValidFiles   = "drop.no_valid"
	FilesExcluded  = "drop.excluded"
	NoFile         = "submit.no_file"
	InvalidFile    = "submit.invalid"
	Busy           = "submit.busy"
	NetworkFailure = "submit.network"
	Succeeded      = "submit.succeeded"
	ServerWarning  = "submit.warning"
	Rejected       = "submit.rejected"
	BusyCaption    = "button.busy_caption"
	ProgressLabel  = "progress.label"
	GenericError   = "error.generic"
	NetworkError   = "error.network"
	FileError      = "error.file"
	Continued      = "preview.continued"
	ReadFailed     = "preview.read_failed"
)

// DefaultLocale is used when a requested locale is unknown.
const DefaultLocale = "en"

//go:embed messages.yaml
var defaultMessages []byte

// Catalog maps message keys to texts for one locale.
type Catalog struct {
	locale string
	texts  map[string]string
}

// Default returns the built-in catalog for locale, falling back to English.
func Default(locale string) *Catalog {
	all, err := parse(defaultMessages)
	if err != nil {
		// The embedded file is part of the build.
		panic(fmt.Sprintf("messages: embedded catalog: %v", err))
	}
	return pick(all, all, locale)
}

// Load reads a YAML catalog ({locale: {key: text}}) from r. Keys missing from the
// requested locale fall back to the built-in English texts.
func Load(r io.Reader, locale string) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	custom, err := parse(data)
	if err != nil {
		return nil, err
	}
	builtin, _ := parse(defaultMessages)
	return pick(custom, builtin, locale), nil
}

// LoadFile is Load for a file path.
func LoadFile(path, locale string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, locale)
}

func parse(data []byte) (map[string]map[string]string, error) {
	var all map[string]map[string]string
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse messages: %w", err)
	}
	return all, nil
}

func pick(custom, builtin map[string]map[string]string, locale string) *Catalog {
	texts := make(map[string]string)
	for k, v := range builtin[DefaultLocale] {
		texts[k] = v
	}
	for k, v := range builtin[locale] {
		texts[k] = v
	}
	for k, v := range custom[locale] {
		texts[k] = v
	}
	if _, ok := custom[locale]; !ok {
		if _, ok := builtin[locale]; !ok {
			locale = DefaultLocale
		}
	}
	return &Catalog{locale: locale, texts: texts}
}

// Locale returns the catalog's effective locale.
func (c *Catalog) Locale() string { return c.locale }

// Text returns the text for key, or the key itself when unknown.
func (c *Catalog) Text(key string) string {
	if t, ok := c.texts[key]; ok {
		return t
	}
	return key
}

// Format applies args to the text for key.
func (c *Catalog) Format(key string, args ...any) string {
	return fmt.Sprintf(c.Text(key), args...)
}
