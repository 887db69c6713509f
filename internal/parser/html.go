package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

// HTMLParser decodes HTML content. This engine deliberately does
// not distil the markup in the core: the output text is the original HTML
// verbatim, and only a title is lifted into metadata. Semantic
// distillation is the Extraction Adapter's job, not the parser's.
type HTMLParser struct{}

// NewHTMLParser builds the HTML parser.
func NewHTMLParser() *HTMLParser { return &HTMLParser{} }

// Matches reports whether mediaType names an HTML payload.
func (p *HTMLParser) Matches(mediaType string) bool {
	lower := strings.ToLower(mediaType)
	return strings.Contains(lower, "html")
}

// Parse decodes raw as UTF-8 (falling back to Latin-1 on decode failure)
// and returns the HTML unchanged, with the page title in metadata when
// easily detectable.
func (p *HTMLParser) Parse(raw []byte, mediaType string) (domain.ParsedContent, error) {
	text := decodeHTMLBytes(raw)

	metadata := map[string]string{}
	if title := detectTitle(text); title != "" {
		metadata["title"] = title
	}

	return domain.ParsedContent{
		Text:              text,
		OriginalMediaType: mediaType,
		ExtraMetadata:     metadata,
	}, nil
}

// decodeHTMLBytes detects the page's declared or sniffed charset and
// transcodes it to UTF-8, the way a browser would before rendering.
func decodeHTMLBytes(raw []byte) string {
	return string(toUTF8(raw))
}

// detectTitle extracts the <title> element's text via goquery.
func detectTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
