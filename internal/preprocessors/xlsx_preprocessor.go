// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"phone-scan/internal/observability"

	"github.com/xuri/excelize/v2"
)

const (
	// maxColumns bounds the cells read from one row of very wide sheets
	maxColumns = 1000

	// cellSeparator keeps numbers in neighbouring cells from running together
	cellSeparator = " | "
)

// XLSXPreprocessor extracts cell text from Excel workbooks
type XLSXPreprocessor struct {
	observer    *observability.StandardObserver
	maxFileSize int64
}

// NewXLSXPreprocessor creates a workbook preprocessor that rejects files and
// extracted text larger than maxFileSize bytes
func NewXLSXPreprocessor(maxFileSize int64) *XLSXPreprocessor {
	return &XLSXPreprocessor{maxFileSize: maxFileSize}
}

// SetObserver sets the observability component
func (xp *XLSXPreprocessor) SetObserver(observer *observability.StandardObserver) {
	xp.observer = observer
}

// GetName returns the name of this preprocessor
func (xp *XLSXPreprocessor) GetName() string {
	return "XLSX Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (xp *XLSXPreprocessor) GetSupportedExtensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// CanProcess checks if this preprocessor can handle the given file
func (xp *XLSXPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, xp.GetSupportedExtensions())
}

// Process writes one line per row with cells joined by " | " and a blank
// line between sheets
func (xp *XLSXPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	if xp.observer != nil {
		finishTiming = xp.observer.StartTiming("xlsx_preprocessor", "process_file", filePath)
	}

	result, err := xp.extract(filePath)
	if finishTiming != nil {
		if err != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		} else {
			finishTiming(true, map[string]interface{}{
				"sheet_count": result.PageCount,
				"char_count":  len(result.Text),
			})
		}
	}
	return result, err
}

func (xp *XLSXPreprocessor) extract(filePath string) (*ProcessedContent, error) {
	if info, err := os.Stat(filePath); err != nil {
		return nil, newProcessingError(filePath, StageOpen, err)
	} else if xp.maxFileSize > 0 && info.Size() > xp.maxFileSize {
		return nil, newProcessingError(filePath, StageOpen,
			fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, info.Size(), xp.maxFileSize))
	}

	f, err := excelize.OpenFile(filepath.Clean(filePath))
	if err != nil {
		return nil, newProcessingError(filePath, StageOpen, fmt.Errorf("error opening workbook: %w", err))
	}
	defer f.Close()

	var buf bytes.Buffer
	sheets := f.GetSheetList()
	for _, sheet := range sheets {
		if err := xp.writeSheet(&buf, f, sheet); err != nil {
			return nil, newProcessingError(filePath, StageExtract, err)
		}
		if xp.maxFileSize > 0 && int64(buf.Len()) > xp.maxFileSize {
			return nil, newProcessingError(filePath, StageExtract,
				fmt.Errorf("%w: extracted text exceeds %d bytes", ErrFileTooLarge, xp.maxFileSize))
		}
	}

	text := buf.Bytes()
	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        "XLSX",
		PageCount:     len(sheets),
		LineCount:     bytes.Count(text, []byte("\n")) + 1,
		ProcessorType: "xlsx",
	}, nil
}

func (xp *XLSXPreprocessor) writeSheet(buf *bytes.Buffer, f *excelize.File, sheet string) error {
	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("sheet %q: %w", sheet, err)
		}
		for i, cell := range cells {
			if i >= maxColumns {
				break
			}
			if i > 0 {
				buf.WriteString(cellSeparator)
			}
			buf.WriteString(cell)
		}
		buf.WriteByte('\n')
	}
	return rows.Error()
}
