// Package config provides XML-based configuration management for the conversion UI host.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"MarkdownToExcelUI"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Upload policy
	Policy PolicyConfig `xml:"Policy"`

	// Browser-facing UI settings
	UI UIConfig `xml:"UI"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// PolicyConfig contains the file intake policy. It is read once at startup.
type PolicyConfig struct {
	MaxFileSize     string `xml:"MaxFileSize"`
	AllowedSuffixes string `xml:"AllowedSuffixes"`
	Endpoint        string `xml:"Endpoint"`
}

// UIConfig contains per-session UI settings
type UIConfig struct {
	Locale                  string `xml:"Locale"`
	MessagesFile            string `xml:"MessagesFile"`
	SessionTimeoutMinutes   int    `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes  int    `xml:"CleanupIntervalMinutes"`
	WebSocketMaxMessageSize int    `xml:"WebSocketMaxMessageSizeKB"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	EnableRequestLogging bool `xml:"EnableRequestLogging"`
	EnableMetrics        bool `xml:"EnableMetrics"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   false,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "64M",
		},
		Policy: PolicyConfig{
			MaxFileSize:     "16M",
			AllowedSuffixes: ".md,.markdown",
			Endpoint:        "http://localhost:8080/api/convert",
		},
		UI: UIConfig{
			Locale:                  "en",
			SessionTimeoutMinutes:   30,
			CleanupIntervalMinutes:  5,
			WebSocketMaxMessageSize: 96 * 1024,
		},
		Advanced: AdvancedConfig{
			EnableRequestLogging: true,
			EnableMetrics:        true,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Markdown to Excel UI Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that cannot be repaired with a default.
func (c *AppConfig) Validate() error {
	if _, err := ParseSize(c.Policy.MaxFileSize); err != nil {
		return fmt.Errorf("invalid Policy/MaxFileSize: %w", err)
	}
	if len(c.AllowedSuffixes()) == 0 {
		return fmt.Errorf("invalid Policy/AllowedSuffixes: no suffixes configured")
	}
	if strings.TrimSpace(c.Policy.Endpoint) == "" {
		return fmt.Errorf("invalid Policy/Endpoint: empty")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// CONVERT_ENDPOINT override
	if endpoint := os.Getenv("CONVERT_ENDPOINT"); endpoint != "" {
		c.Policy.Endpoint = endpoint
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// CORSOrigins returns the origins allowed to call the host from another site, or nil
// when CORS is disabled.
func (c *AppConfig) CORSOrigins() []string {
	if !c.Server.EnableCORS {
		return nil
	}
	var out []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// MaxFileSizeBytes returns the policy size ceiling in bytes.
func (c *AppConfig) MaxFileSizeBytes() int64 {
	n, err := ParseSize(c.Policy.MaxFileSize)
	if err != nil {
		return 0
	}
	return n
}

// AllowedSuffixes returns the configured suffixes, lower-cased and dot-prefixed.
func (c *AppConfig) AllowedSuffixes() []string {
	var out []string
	for _, s := range strings.Split(c.Policy.AllowedSuffixes, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		out = append(out, s)
	}
	return out
}

// ParseSize parses sizes such as "16M", "512K", "2G" or a plain byte count.
// Units are binary (1K = 1024 bytes); an optional trailing "B" or "iB" is accepted.
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	s = strings.TrimSuffix(s, "IB")
	s = strings.TrimSuffix(s, "B")

	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1 << 10
	case strings.HasSuffix(s, "M"):
		mult = 1 << 20
	case strings.HasSuffix(s, "G"):
		mult = 1 << 30
	}
	if mult > 1 {
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size %d", n)
	}
	return n * mult, nil
}
