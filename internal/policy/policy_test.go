package policy

import (
	"testing"

	"github.com/md2xlsx/webui/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NormalisesSuffixes(t *testing.T) {
	p, err := New(1024, []string{"MD", " .Markdown ", ""}, "http://example.test/api/convert")
	require.NoError(t, err)

	assert.Equal(t, []string{".markdown", ".md"}, p.Suffixes())
	assert.True(t, p.Allows(".MD"))
	assert.False(t, p.Allows(".txt"))
	assert.Equal(t, int64(1024), p.MaxFileSize())
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(0, DefaultSuffixes, DefaultEndpoint)
	assert.Error(t, err)

	_, err = New(10, nil, DefaultEndpoint)
	assert.Error(t, err)

	_, err = New(10, DefaultSuffixes, "")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, int64(16*1024*1024), p.MaxFileSize())
	assert.Equal(t, []string{".markdown", ".md"}, p.Suffixes())
	assert.Equal(t, "/api/convert", p.Endpoint())
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	p, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Policy.Endpoint, p.Endpoint())
	assert.Equal(t, int64(16<<20), p.MaxFileSize())
}

func TestSuffixesReturnsCopy(t *testing.T) {
	p := Default()
	s := p.Suffixes()
	s[0] = ".exe"
	assert.False(t, p.Allows(".exe"))
}
