// Package parser implements the Parser Chain: an ordered list of
// (predicate, parser) pairs that decodes a fetched byte blob into UTF-8
// text based on its media type. PDF and HTML get dedicated handling;
// everything else falls through to a passthrough identity parser.
package parser

import (
	"strings"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

// binaryMarkers are media-type substrings that mark a response as binary,
// per the binary vs. text routing rule. A backend must deliver raw
// bytes (not a decoded string) for any of these.
var binaryMarkers = []string{
	"pdf", "image/", "video/", "audio/", "octet-stream", "zip", "gzip",
}

// IsBinary reports whether mediaType requires binary handling.
func IsBinary(mediaType string) bool {
	lower := strings.ToLower(mediaType)
	for _, marker := range binaryMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Chain dispatches to the first parser whose predicate matches, in fixed
// order: PDF, then HTML, then passthrough. The passthrough parser always
// matches, so Parse never fails to find a handler.
type Chain struct {
	parsers []domain.Parser
}

// NewChain builds the default Parser Chain: PDF, then HTML, then passthrough.
func NewChain() *Chain {
	return &Chain{
		parsers: []domain.Parser{
			NewPDFParser(),
			NewHTMLParser(),
			NewPassthroughParser(),
		},
	}
}

// Parse decodes raw using the first matching parser.
func (c *Chain) Parse(raw []byte, mediaType string) (domain.ParsedContent, error) {
	for _, p := range c.parsers {
		if p.Matches(mediaType) {
			return p.Parse(raw, mediaType)
		}
	}
	// Unreachable: PassthroughParser.Matches always returns true.
	return NewPassthroughParser().Parse(raw, mediaType)
}
