package extract_service

import (
	"bytes"
	"fmt"
	"log/slog"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"
)

// DocumentExtractor pulls plain text out of uploaded documents. PDFs keep
// their page boundaries so chunks can cite a page number; Word documents
// come back as a single page.
type DocumentExtractor struct {
	logger *slog.Logger
}

func NewDocumentExtractor(logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{logger: logger}
}

// ExtractPDFPages returns the text of each page, 1-based order preserved.
// Pages that fail to parse are skipped with a warning rather than failing
// the whole document.
func (e *DocumentExtractor) ExtractPDFPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	totalPages := reader.NumPage()
	pages := make([]string, 0, totalPages)
	extracted := 0

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered", slog.Int("page_number", pageIndex))
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				slog.Int("page_number", pageIndex),
				slog.String("error", err.Error()))
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
		if len(text) > 0 {
			extracted++
		}
	}

	if extracted == 0 {
		return nil, fmt.Errorf("no text content extracted from PDF")
	}

	e.logger.Info("Extracted text from PDF",
		slog.Int("total_pages", totalPages),
		slog.Int("pages_with_text", extracted))
	return pages, nil
}

// ExtractWordText converts a .doc/.docx into plain text.
func (e *DocumentExtractor) ExtractWordText(data []byte) (string, error) {
	mimeType := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	result, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		return "", fmt.Errorf("failed to convert Word document: %w", err)
	}
	if len(result.Body) == 0 {
		return "", fmt.Errorf("no text content extracted from Word document")
	}

	e.logger.Info("Extracted text from Word document",
		slog.Int("text_length", len(result.Body)))
	return result.Body, nil
}
