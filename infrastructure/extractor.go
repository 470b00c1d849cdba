package infrastructure

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/sirupsen/logrus"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"career-coach/domain"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var xmlTag = regexp.MustCompile(`<[^>]+>`)

// DocumentExtractor turns uploaded resumes into plain text.
type DocumentExtractor struct {
	log logrus.FieldLogger
}

func NewDocumentExtractor(logger logrus.FieldLogger) *DocumentExtractor {
	return &DocumentExtractor{log: logger.WithField("component", "extractor")}
}

// Extract picks a reader from the MIME type, or the file extension when the
// MIME type is missing or generic.
func (e *DocumentExtractor) Extract(filename, mime string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch detectKind(filename, mime) {
	case mimeText:
		text = string(data)
	case mimePDF:
		text, err = e.extractPDF(data)
	case mimeDocx:
		text, err = extractDocxText(data)
	default:
		return "", &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("unsupported file type %q", mime)}
	}
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &domain.ValidationError{Field: "file", Reason: "no text could be extracted"}
	}
	return text, nil
}

func detectKind(filename, mime string) string {
	mime = strings.ToLower(strings.TrimSpace(strings.Split(mime, ";")[0]))
	switch mime {
	case mimeText, mimePDF, mimeDocx:
		return mime
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return mimeText
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	}
	return mime
}

func (e *DocumentExtractor) extractPDF(data []byte) (string, error) {
	text, err := extractTextFromPDF(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	e.log.WithError(err).Debug("unipdf extraction failed, trying fallback reader")

	text, fallbackErr := extractPDFPlain(data)
	if fallbackErr != nil {
		if err == nil {
			err = fallbackErr
		}
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	return text, nil
}

func extractTextFromPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var textBuilder strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil || pageText == "" {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}
	return textBuilder.String(), nil
}

func extractPDFPlain(data []byte) (string, error) {
	pdfReader, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var textBuilder strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("failed to parse docx: %v", err)}
	}
	defer doc.Close()

	return stripXML(doc.Editable().GetContent()), nil
}

// stripXML turns WordprocessingML into text, one paragraph per line.
func stripXML(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = xmlTag.ReplaceAllString(content, "")
	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
