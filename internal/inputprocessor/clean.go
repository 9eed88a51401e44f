package inputprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const maxBinaryCheckBytes = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var charReplacer = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201C", "\"", "\u201D", "\"",
	"\u2013", "-", "\u2014", "--", "\u2026", "...", "\u00a0", " ",
	"\u0096", "-", "\u0097", "--", "\u0091", "'", "\u0092", "'",
	"\u0093", "\"", "\u0094", "\"",
)

// IsLikelyBinary reports whether the first bytes of path contain a NUL.
func IsLikelyBinary(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buffer := make([]byte, maxBinaryCheckBytes)
	n, err := file.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	return bytes.Contains(buffer[:n], []byte{0}), nil
}

// CleanContent drops a BOM, repairs invalid UTF-8 and folds typographic
// punctuation to ASCII.
func CleanContent(data []byte, src string) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		log.Warnf("%s invalid UTF-8, replacing invalid chars", src)
		data = bytes.ToValidUTF8(data, []byte(string(utf8.RuneError)))
	}

	str := charReplacer.Replace(string(data))
	if !utf8.ValidString(str) {
		return "", fmt.Errorf("invalid UTF-8 after replacements: %s", src)
	}
	return str, nil
}

// NormalizeText applies NFKC (so "５０％" reads as "50%"), removes control
// characters other than newline and tab, and trims.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return strings.TrimSpace(normed)
}

var skipTags = map[string]bool{
	"script": true, "style": true, "head": true, "nav": true,
	"footer": true, "noscript": true, "template": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "section": true,
	"article": true, "table": true, "ul": true, "ol": true, "blockquote": true,
}

// HTMLToText returns the visible text of an HTML document, one block per line.
// Unparseable input is returned unchanged.
func HTMLToText(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		log.Warnf("Failed to parse HTML input, using it as text: %v", err)
		return s
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(strings.Map(func(r rune) rune {
				if r == '\n' || r == '\r' || r == '\t' {
					return ' '
				}
				return r
			}, n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
