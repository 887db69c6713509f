package parser

import "github.com/quantmind-br/scrape-go/internal/domain"

// PassthroughParser is the identity element of the Parser Chain: it always
// matches, so the chain never fails to produce a result.
type PassthroughParser struct{}

// NewPassthroughParser builds the passthrough parser.
func NewPassthroughParser() *PassthroughParser { return &PassthroughParser{} }

// Matches always returns true: passthrough is the last-resort parser.
func (p *PassthroughParser) Matches(mediaType string) bool { return true }

// Parse treats raw as UTF-8 text and returns it unchanged.
func (p *PassthroughParser) Parse(raw []byte, mediaType string) (domain.ParsedContent, error) {
	return domain.ParsedContent{
		Text:              string(raw),
		OriginalMediaType: mediaType,
		ExtraMetadata:     map[string]string{"original_type": mediaType},
	}, nil
}
