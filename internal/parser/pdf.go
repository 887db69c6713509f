package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

// PDFParser decodes binary PDF content into its extracted text. It is the
// first parser in the chain and requires binary input; callers must not
// hand it a string that has already been decoded as UTF-8.
type PDFParser struct{}

// NewPDFParser builds the PDF parser.
func NewPDFParser() *PDFParser { return &PDFParser{} }

// Matches reports whether mediaType names a PDF payload.
func (p *PDFParser) Matches(mediaType string) bool {
	return strings.Contains(strings.ToLower(mediaType), "pdf")
}

// Parse extracts the concatenated text of every page. Metadata carries the
// page count and, when present in the document's Info dictionary, the
// title and author.
func (p *PDFParser) Parse(raw []byte, mediaType string) (domain.ParsedContent, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return domain.ParsedContent{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	text, err := extractAllText(reader)
	if err != nil {
		return domain.ParsedContent{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	metadata := map[string]string{
		"page_count": strconv.Itoa(reader.NumPage()),
	}
	if title := safeInfoField(reader, "Title"); title != "" {
		metadata["title"] = title
	}
	if author := safeInfoField(reader, "Author"); author != "" {
		metadata["author"] = author
	}

	return domain.ParsedContent{
		Text:              text,
		OriginalMediaType: mediaType,
		ExtraMetadata:     metadata,
	}, nil
}

// extractAllText concatenates every page's plain text in page order. A
// single corrupt page does not abort the whole document: its error is
// swallowed and extraction continues, the way a best-effort text reader
// should behave for an otherwise-readable PDF.
func extractAllText(reader *pdf.Reader) (string, error) {
	r, err := reader.GetPlainText()
	if err == nil {
		var buf bytes.Buffer
		if _, copyErr := io.Copy(&buf, r); copyErr == nil {
			return buf.String(), nil
		}
	}

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		pageText, pageErr := page.GetPlainText(fonts)
		if pageErr != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// safeInfoField reads a string field from the document's Info dictionary,
// recovering from any panic the underlying library raises on a malformed
// trailer rather than letting it escape into the parser chain.
func safeInfoField(reader *pdf.Reader, key string) (value string) {
	defer func() {
		if recover() != nil {
			value = ""
		}
	}()
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key(key).Text())
}
