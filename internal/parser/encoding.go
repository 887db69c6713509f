package parser

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// detectCharset returns the declared or sniffed charset name for raw HTML.
// It prefers an explicit <meta charset> declaration over the statistical
// sniffing golang.org/x/net/html/charset falls back to.
func detectCharset(raw []byte) string {
	head := raw
	if len(head) > 1024 {
		head = head[:1024]
	}
	if enc := charsetFromMeta(string(head)); enc != "" {
		return enc
	}
	// Undeclared but valid UTF-8 stays UTF-8; the statistical sniffer
	// would otherwise guess windows-1252 for plain ASCII.
	if utf8.Valid(raw) {
		return "utf-8"
	}
	_, name, _ := charset.DetermineEncoding(raw, "")
	if name != "" {
		return name
	}
	return "utf-8"
}

func charsetFromMeta(html string) string {
	lower := strings.ToLower(html)
	idx := strings.Index(lower, "charset=")
	if idx == -1 {
		return ""
	}
	start := idx + len("charset=")
	if start < len(lower) && (lower[start] == '"' || lower[start] == '\'') {
		start++
	}
	end := start
	for end < len(lower) {
		c := lower[end]
		if c == '"' || c == '\'' || c == ';' || c == '>' || c == ' ' {
			break
		}
		end++
	}
	return strings.TrimSpace(lower[start:end])
}

// toUTF8 transcodes raw HTML to UTF-8 using its detected charset. When the
// declared charset is unrecognized or the transcode itself fails, it falls
// back to a literal Latin-1 (ISO-8859-1) decode rather than returning the
// raw bytes, since every byte sequence is valid Latin-1.
func toUTF8(raw []byte) []byte {
	name := detectCharset(raw)
	if (name == "utf-8" || name == "utf8") && utf8.Valid(raw) {
		return raw
	}
	if name != "utf-8" && name != "utf8" {
		if enc, err := htmlindex.Get(name); err == nil {
			if decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), enc.NewDecoder())); err == nil {
				return decoded
			}
		}
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		return raw
	}
	return decoded
}
