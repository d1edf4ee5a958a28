// Package extract reads contract text out of local documents. It is a
// collaborator of the conflict engine, not part of it: a document that cannot
// be read fails individually and the rest of the batch continues.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// DocumentReader extracts plain text from contract documents
type DocumentReader struct {
	maxBytes int64
}

// NewDocumentReader creates a reader that caps extracted text at maxBytes
// (bounds the prompt sent to the LLM)
func NewDocumentReader(maxBytes int64) *DocumentReader {
	if maxBytes <= 0 {
		maxBytes = 200_000
	}
	return &DocumentReader{maxBytes: maxBytes}
}

// Document is the extracted text of one contract plus its identity
type Document struct {
	ContractID string // Base filename, used as the record's contract_id
	Path       string
	Text       string
}

// Read extracts text from a single document. Supported formats: .txt, .md,
// .html/.htm, .pdf, .docx. Unsupported extensions are an error for that
// document only.
func (r *DocumentReader) Read(path string) (*Document, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		text, err = r.readPlain(path)
	case ".html", ".htm":
		text, err = r.readHTML(path)
	case ".pdf":
		text, err = r.readPDF(path)
	case ".docx":
		text, err = r.readDOCX(path)
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text extracted from %s", path)
	}
	if int64(len(text)) > r.maxBytes {
		text = text[:r.maxBytes]
	}

	return &Document{
		ContractID: filepath.Base(path),
		Path:       path,
		Text:       text,
	}, nil
}

func (r *DocumentReader) readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

func (r *DocumentReader) readHTML(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	return extractVisibleText(doc), nil
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.TrimSpace(buf.String())
}
