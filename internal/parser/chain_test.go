package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		expected  bool
	}{
		{"pdf", "application/pdf", true},
		{"image", "image/png", true},
		{"video", "video/mp4", true},
		{"audio", "audio/mpeg", true},
		{"octet-stream", "application/octet-stream", true},
		{"zip", "application/zip", true},
		{"gzip", "application/gzip", true},
		{"uppercase pdf", "APPLICATION/PDF", true},
		{"html is text", "text/html", false},
		{"plain is text", "text/plain", false},
		{"empty is text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBinary(tt.mediaType))
		})
	}
}

func TestChain_HTMLMatchesBeforePassthrough(t *testing.T) {
	chain := NewChain()
	result, err := chain.Parse([]byte("<html><head><title>Hi</title></head><body>x</body></html>"), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "<html>")
	assert.Equal(t, "Hi", result.ExtraMetadata["title"])
}

func TestChain_PassthroughForUnknownMediaType(t *testing.T) {
	chain := NewChain()
	result, err := chain.Parse([]byte("just some bytes"), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "just some bytes", result.Text)
	assert.Equal(t, "application/json", result.ExtraMetadata["original_type"])
}

func TestChain_PassthroughForEmptyMediaType(t *testing.T) {
	chain := NewChain()
	result, err := chain.Parse([]byte("hello"), "")
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Text)
}

func TestHTMLParser_NoTitleLeavesMetadataEmpty(t *testing.T) {
	p := NewHTMLParser()
	result, err := p.Parse([]byte("<html><body>no title here</body></html>"), "text/html")
	require.NoError(t, err)
	_, ok := result.ExtraMetadata["title"]
	assert.False(t, ok)
}

func TestHTMLParser_PreservesMarkupVerbatim(t *testing.T) {
	p := NewHTMLParser()
	html := "<html><body><p class=\"x\">hello <b>world</b></p></body></html>"
	result, err := p.Parse([]byte(html), "text/html")
	require.NoError(t, err)
	assert.Equal(t, html, result.Text)
}

func TestPassthroughParser_AlwaysMatches(t *testing.T) {
	p := NewPassthroughParser()
	assert.True(t, p.Matches("anything/at-all"))
	assert.True(t, p.Matches(""))
}
