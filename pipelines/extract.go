package pipelines

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const DefaultSelector = "body"

// ExtractText returns the text of every node matching selector, one node
// per line.
func ExtractText(r io.Reader, selector string) (string, error) {
	document, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	return DocumentText(document, selector), nil
}

// DocumentText is ExtractText for an already parsed document. It removes
// scripts and styles from document.
func DocumentText(document *goquery.Document, selector string) string {
	if selector == "" {
		selector = DefaultSelector
	}
	document.Find("script, style, noscript").Remove()
	var lines []string
	document.Find(selector).Each(func(i int, selection *goquery.Selection) {
		text := strings.TrimSpace(selection.Text())
		if text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}

// ExtractTitle returns the trimmed <title> of an html document.
func ExtractTitle(document *goquery.Document) string {
	return strings.TrimSpace(document.Find("title").First().Text())
}
