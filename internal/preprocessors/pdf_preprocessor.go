// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"phone-scan/internal/observability"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages bounds the number of pages read from one document
const maxPDFPages = 500

// PDFPreprocessor extracts the text layer of PDF documents
type PDFPreprocessor struct {
	observer    *observability.StandardObserver
	maxFileSize int64
}

// NewPDFPreprocessor creates a PDF preprocessor that rejects files and
// extracted text larger than maxFileSize bytes
func NewPDFPreprocessor(maxFileSize int64) *PDFPreprocessor {
	return &PDFPreprocessor{maxFileSize: maxFileSize}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process extracts text from every page, one page after another
func (pp *PDFPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)
	}

	result, err := pp.extract(filePath)
	if finishTiming != nil {
		if err != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		} else {
			finishTiming(true, map[string]interface{}{
				"page_count": result.PageCount,
				"char_count": len(result.Text),
			})
		}
	}
	return result, err
}

func (pp *PDFPreprocessor) extract(filePath string) (*ProcessedContent, error) {
	if info, err := os.Stat(filePath); err != nil {
		return nil, newProcessingError(filePath, StageOpen, err)
	} else if pp.maxFileSize > 0 && info.Size() > pp.maxFileSize {
		return nil, newProcessingError(filePath, StageOpen,
			fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, info.Size(), pp.maxFileSize))
	}

	f, r, err := pdf.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, newProcessingError(filePath, StageOpen, fmt.Errorf("error opening PDF: %w", err))
	}
	defer f.Close()

	pageCount := min(r.NumPage(), maxPDFPages)

	var buf bytes.Buffer
	for i := 1; i <= pageCount; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p)
		if err != nil {
			// Unreadable pages are skipped; the rest of the document still counts
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(text)

		if pp.maxFileSize > 0 && int64(buf.Len()) > pp.maxFileSize {
			return nil, newProcessingError(filePath, StageExtract,
				fmt.Errorf("%w: extracted text exceeds %d bytes", ErrFileTooLarge, pp.maxFileSize))
		}
	}

	text := buf.Bytes()
	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        "PDF",
		PageCount:     pageCount,
		LineCount:     bytes.Count(text, []byte("\n")) + 1,
		ProcessorType: "pdf",
	}, nil
}

// pageText rebuilds the rows of a page, falling back to the plain text
// stream when row grouping fails
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	var buf bytes.Buffer
	for _, row := range rows {
		if row == nil || len(row.Content) == 0 {
			continue
		}
		buf.WriteString(rowText(row.Content))
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// rowText joins the text runs of a row left to right, inserting a space
// where the gap between runs is wider than a fifth of the font size
func rowText(elements []pdf.Text) string {
	sorted := make([]pdf.Text, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf bytes.Buffer
	for i, element := range sorted {
		buf.WriteString(element.S)
		if i == len(sorted)-1 {
			break
		}

		fontSize := element.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if sorted[i+1].X-(element.X+element.W) > fontSize*0.2 {
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}
