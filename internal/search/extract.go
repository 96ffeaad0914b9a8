package search

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// ignoredElements never contribute visible text.
const ignoredElements = "script, style, noscript, template, iframe, svg"

// ExtractHTML parses an HTML document and returns its title and visible text.
// Whitespace runs in both are collapsed to single spaces.
func ExtractHTML(r io.Reader) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse html: %w", err)
	}

	title = collapseSpace(doc.Find("head > title, title").First().Text())

	doc.Find(ignoredElements).Remove()
	body := doc.Find("body")
	if body.Length() == 0 {
		text = collapseSpace(doc.Text())
	} else {
		var sb strings.Builder
		writeText(&sb, body.Contents())
		text = collapseSpace(sb.String())
	}

	return title, text, nil
}

// blockElements break words apart; inline elements do not.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "caption": true, "dd": true, "details": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "option": true,
	"p": true, "pre": true, "section": true, "summary": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true,
	"tr": true, "ul": true,
}

// writeText appends the visible text of s to sb, padding block elements with spaces.
func writeText(sb *strings.Builder, s *goquery.Selection) {
	s.Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)
		switch {
		case name == "#text":
			sb.WriteString(sel.Text())
		case strings.HasPrefix(name, "#"):
			// comments and doctypes
		case blockElements[name]:
			sb.WriteByte(' ')
			writeText(sb, sel.Contents())
			sb.WriteByte(' ')
		default:
			writeText(sb, sel.Contents())
		}
	})
}

// Keywords splits a file name into lower-case words, dropping the extension.
func Keywords(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(strings.Join(words, " "))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
