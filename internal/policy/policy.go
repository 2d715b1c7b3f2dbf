// Package policy holds the immutable file intake policy shared by every UI component.
package policy

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/md2xlsx/webui/internal/config"
)

// Defaults used when no configuration file overrides them.
const (
	DefaultMaxFileSize = 16 * 1024 * 1024
	DefaultEndpoint    = "/api/convert"
)

// DefaultSuffixes are the Markdown suffixes accepted out of the box.
var DefaultSuffixes = []string{".md", ".markdown"}

// Policy is the size limit, allowed suffixes and conversion endpoint.
// A Policy never changes after construction; copy it freely.
type Policy struct {
	maxFileSize int64
	suffixes    map[string]struct{}
	endpoint    string
}

// New builds a Policy. Suffixes are normalised to lower case with a leading dot.
func New(maxFileSize int64, suffixes []string, endpoint string) (Policy, error) {
	if maxFileSize <= 0 {
		return Policy{}, fmt.Errorf("policy: max file size must be positive, got %d", maxFileSize)
	}
	if endpoint == "" {
		return Policy{}, fmt.Errorf("policy: endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return Policy{}, fmt.Errorf("policy: invalid endpoint: %w", err)
	}

	set := make(map[string]struct{}, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		set[s] = struct{}{}
	}
	if len(set) == 0 {
		return Policy{}, fmt.Errorf("policy: at least one allowed suffix is required")
	}

	return Policy{maxFileSize: maxFileSize, suffixes: set, endpoint: endpoint}, nil
}

// Default returns the stock Markdown policy posting to DefaultEndpoint.
func Default() Policy {
	p, _ := New(DefaultMaxFileSize, DefaultSuffixes, DefaultEndpoint)
	return p
}

// FromConfig builds the Policy described by the Policy section of cfg.
func FromConfig(cfg *config.AppConfig) (Policy, error) {
	return New(cfg.MaxFileSizeBytes(), cfg.AllowedSuffixes(), cfg.Policy.Endpoint)
}

// MaxFileSize returns the size ceiling in bytes.
func (p Policy) MaxFileSize() int64 { return p.maxFileSize }

// Endpoint returns the conversion endpoint URI.
func (p Policy) Endpoint() string { return p.endpoint }

// Allows reports whether suffix (".md", case-insensitive) is accepted.
func (p Policy) Allows(suffix string) bool {
	_, ok := p.suffixes[strings.ToLower(suffix)]
	return ok
}

// Suffixes returns the allowed suffixes in sorted order.
func (p Policy) Suffixes() []string {
	out := make([]string, 0, len(p.suffixes))
	for s := range p.suffixes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
