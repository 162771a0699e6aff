// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"phone-scan/internal/core"
	"phone-scan/internal/detector"
	"phone-scan/internal/formatters"
	formatterShared "phone-scan/internal/formatters/shared"
	"phone-scan/internal/phone"
	"phone-scan/internal/preprocessors"
	"phone-scan/internal/suppressions"
	"phone-scan/internal/version"

	"github.com/google/uuid"
)

// maxUploadSize bounds the multipart form accepted by /scan
const maxUploadSize = 32 << 20

// ScanResponse is the JSON body returned by /extract and /scan
type ScanResponse struct {
	Success    bool                             `json:"success"`
	RequestID  string                           `json:"request_id,omitempty"`
	Count      int                              `json:"count"`
	Results    []formatterShared.JSONMatch      `json:"results"`
	Suppressed []formatterShared.JSONSuppressed `json:"suppressed,omitempty"`
	Error      string                           `json:"error,omitempty"`
}

// extractRequest is the JSON form of an /extract body
type extractRequest struct {
	Text string `json:"text"`
}

// requestParams are the output options read from the query string
type requestParams struct {
	format     string
	categories map[phone.Category]bool
	options    formatters.FormatterOptions
}

func (ws *WebServer) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	versionInfo := version.Full()
	healthData := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "phone-scan-web",
		"version":   versionInfo["version"],
		"build_info": map[string]any{
			"version":    versionInfo["version"],
			"commit":     versionInfo["commit"],
			"build_date": versionInfo["buildDate"],
			"go_version": versionInfo["goVersion"],
			"platform":   versionInfo["platform"],
		},
	}

	ws.writeJSON(responseWriter, http.StatusOK, healthData)
}

func (ws *WebServer) handleFormats(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ws.writeJSON(responseWriter, http.StatusOK, map[string]any{
		"formats": formatters.GetSupportedFormats(),
	})
}

// handleExtract scans a request body for phone numbers. The body is raw
// text, or {"text": "..."} when sent as application/json.
func (ws *WebServer) handleExtract(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()
	var finishTiming func(bool, map[string]interface{})
	if ws.opts.Observer != nil {
		finishTiming = ws.opts.Observer.StartTiming("web", "extract", requestID)
	}

	params, err := ws.parseParams(request.URL.Query())
	if err != nil {
		ws.sendError(responseWriter, err.Error())
		finish(finishTiming, false, nil)
		return
	}

	text, status, err := readExtractBody(responseWriter, request)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), status)
		finish(finishTiming, false, map[string]interface{}{"status": status})
		return
	}

	result, err := core.ScanText(text, "", core.ScanConfig{
		Categories:         params.categories,
		SuppressionManager: ws.opts.SuppressionManager,
		Observer:           ws.opts.Observer,
	})
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), statusForError(err))
		finish(finishTiming, false, nil)
		return
	}

	ws.writeResults(responseWriter, requestID, result.Matches, result.SuppressedMatches, params)
	finish(finishTiming, true, map[string]interface{}{
		"match_count":    len(result.Matches),
		"content_length": len(text),
	})
}

// handleScan scans uploaded files with the same preprocessors as the CLI,
// so PDF and XLSX uploads are supported
func (ws *WebServer) handleScan(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()
	params, err := ws.parseParams(request.URL.Query())
	if err != nil {
		ws.sendError(responseWriter, err.Error())
		return
	}

	request.Body = http.MaxBytesReader(responseWriter, request.Body, maxUploadSize)
	if err := request.ParseMultipartForm(maxUploadSize); err != nil {
		ws.sendError(responseWriter, "Failed to parse form data")
		return
	}
	files := request.MultipartForm.File["files"]
	if len(files) == 0 {
		ws.sendError(responseWriter, "No files uploaded")
		return
	}

	tempDir, err := os.MkdirTemp("", "phone-scan-upload-*")
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, "Failed to create temporary directory", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	paths := make([]string, 0, len(files))
	originalNames := make(map[string]string, len(files))
	for i, fileHeader := range files {
		path, err := saveUpload(fileHeader, tempDir, i)
		if err != nil {
			ws.sendErrorWithStatus(responseWriter, err.Error(), http.StatusInternalServerError)
			return
		}
		paths = append(paths, path)
		originalNames[path] = sanitizeFilename(fileHeader.Filename)
	}

	result, err := core.ScanFiles(request.Context(), core.ScanConfig{
		Paths:              paths,
		Categories:         params.categories,
		Workers:            ws.opts.Settings.Workers,
		MaxFileSize:        ws.opts.Settings.MaxFileSize,
		SuppressionManager: ws.opts.SuppressionManager,
		Observer:           ws.opts.Observer,
	})
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("scanning failed: %v", err), http.StatusInternalServerError)
		return
	}
	if len(result.SkippedFiles) > 0 {
		skipped := result.SkippedFiles[0]
		ws.sendErrorWithStatus(responseWriter,
			fmt.Sprintf("scanning %s failed: %s", originalNames[skipped.Path], skipped.Reason),
			http.StatusRequestEntityTooLarge)
		return
	}
	if len(result.Stats.Failures) > 0 {
		failure := result.Stats.Failures[0]
		name := originalNames[failure.FilePath]
		ws.sendErrorWithStatus(responseWriter,
			fmt.Sprintf("scanning %s failed: %s", name, uploadError(failure.Err, tempDir, failure.FilePath, name)),
			statusForError(failure.Err))
		return
	}

	for i := range result.Matches {
		result.Matches[i].Filename = originalNames[result.Matches[i].Filename]
	}
	for i := range result.SuppressedMatches {
		result.SuppressedMatches[i].Match.Filename = originalNames[result.SuppressedMatches[i].Match.Filename]
	}

	ws.writeResults(responseWriter, requestID, result.Matches, result.SuppressedMatches, params)
}

func (ws *WebServer) handleSuppressions(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rules := []suppressions.SuppressionRule{}
	if ws.opts.SuppressionManager != nil {
		rules = append(rules, ws.opts.SuppressionManager.ListSuppressions()...)
	}
	ws.writeJSON(responseWriter, http.StatusOK, map[string]any{
		"success": true,
		"rules":   rules,
	})
}

// parseParams reads format, confidence, categories, show_match and verbose
// from the query, falling back to the configured defaults
func (ws *WebServer) parseParams(query url.Values) (*requestParams, error) {
	params := &requestParams{format: "json"}
	if format := query.Get("format"); format != "" {
		params.format = strings.ToLower(format)
	}
	if _, ok := formatters.Get(params.format); !ok {
		return nil, fmt.Errorf("unsupported format '%s'. Available formats: %s", params.format, strings.Join(formatters.List(), ", "))
	}

	confidence := query.Get("confidence")
	if confidence == "" {
		confidence = ws.opts.Settings.ConfidenceLevels
	}

	categories := query.Get("categories")
	if categories == "" {
		categories = ws.opts.Settings.Categories
	}
	parsed, err := core.ParseCategories([]string{categories})
	if err != nil {
		return nil, err
	}
	params.categories = parsed

	showMatch, err := boolParam(query, "show_match", true)
	if err != nil {
		return nil, err
	}
	verbose, err := boolParam(query, "verbose", false)
	if err != nil {
		return nil, err
	}

	params.options = formatters.FormatterOptions{
		ConfidenceLevel: core.ParseConfidenceLevels(confidence),
		Verbose:         verbose,
		NoColor:         true,
		ShowMatch:       showMatch,
	}
	return params, nil
}

func boolParam(query url.Values, name string, fallback bool) (bool, error) {
	value := query.Get(name)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q", name, value)
	}
	return b, nil
}

// readExtractBody returns the text to scan and, on failure, the HTTP status
// to report
func readExtractBody(responseWriter http.ResponseWriter, request *http.Request) ([]byte, int, error) {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		text, err := preprocessors.ReadText(request.Body, phone.MaxInputSize)
		if err != nil {
			return nil, statusForError(err), err
		}
		return text, http.StatusOK, nil
	}

	// Escaping can double the size of the text inside a JSON document
	body := http.MaxBytesReader(responseWriter, request.Body, 2*phone.MaxInputSize+1024)
	var req extractRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: request body over %d bytes", preprocessors.ErrFileTooLarge, tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("invalid JSON in request body: %v", err)
	}
	if len(req.Text) > phone.MaxInputSize {
		err := fmt.Errorf("%w: %d bytes exceeds the %d byte limit", preprocessors.ErrFileTooLarge, len(req.Text), phone.MaxInputSize)
		return nil, http.StatusRequestEntityTooLarge, err
	}
	return []byte(req.Text), http.StatusOK, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, preprocessors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, preprocessors.ErrBinaryContent), errors.Is(err, preprocessors.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

// saveUpload copies an uploaded file into dir, keeping its extension so the
// preprocessor router can pick the right extractor
func saveUpload(fileHeader *multipart.FileHeader, dir string, index int) (string, error) {
	filename := fileHeader.Filename
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %v", sanitizeFilename(filename), err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	dst, err := os.CreateTemp(dir, fmt.Sprintf("upload_%d_*%s", index, ext))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to copy file content: %v", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to write file content: %v", err)
	}
	return dst.Name(), nil
}

// uploadError renders err with the server side temp path replaced by the
// client's file name
func uploadError(err error, tempDir, path, name string) string {
	message := strings.ReplaceAll(err.Error(), path, name)
	return strings.ReplaceAll(message, tempDir+string(filepath.Separator), "")
}

// sanitizeFilename strips directories and control characters from a client
// supplied name before it is echoed back
func sanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	cleaned := strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, base)
	if len(cleaned) > 255 {
		cleaned = cleaned[:255]
	}
	return cleaned
}

// writeResults renders matches in the requested format. JSON is wrapped in
// ScanResponse; other formats are returned as produced by the formatter.
func (ws *WebServer) writeResults(responseWriter http.ResponseWriter, requestID string, matches []detector.Match, suppressed []detector.SuppressedMatch, params *requestParams) {
	if params.format == "json" {
		filtered := formatterShared.FilterMatchesByConfidence(matches, params.options)
		converted := formatterShared.ConvertMatchesToJSONFormat(filtered, suppressed, params.options)
		ws.writeJSON(responseWriter, http.StatusOK, ScanResponse{
			Success:    true,
			RequestID:  requestID,
			Count:      len(converted.Results),
			Results:    converted.Results,
			Suppressed: converted.Suppressed,
		})
		return
	}

	content, mimeType, filename, err := formatters.ExportForWeb(params.format, matches, suppressed, params.options)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("Failed to format results: %v", err), http.StatusInternalServerError)
		return
	}
	responseWriter.Header().Set("Content-Type", mimeType)
	responseWriter.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	responseWriter.Header().Set("X-Request-ID", requestID)
	responseWriter.WriteHeader(http.StatusOK)
	io.WriteString(responseWriter, content)
}

func (ws *WebServer) writeJSON(responseWriter http.ResponseWriter, status int, body any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)
	json.NewEncoder(responseWriter).Encode(body)
}

func (ws *WebServer) sendError(responseWriter http.ResponseWriter, message string) {
	ws.sendErrorWithStatus(responseWriter, message, http.StatusBadRequest)
}

// sendErrorWithStatus sends an error response with a specific HTTP status code
func (ws *WebServer) sendErrorWithStatus(responseWriter http.ResponseWriter, message string, statusCode int) {
	ws.writeJSON(responseWriter, statusCode, ScanResponse{
		Success: false,
		Results: []formatterShared.JSONMatch{},
		Error:   enhanceErrorMessage(message, statusCode),
	})
}

// enhanceErrorMessage adds troubleshooting information to error messages
func enhanceErrorMessage(message string, statusCode int) string {
	switch {
	case strings.Contains(message, "Failed to parse form data"):
		return message + "\nTroubleshooting: upload files as multipart/form-data in the 'files' field"
	case statusCode == http.StatusRequestEntityTooLarge:
		return message + fmt.Sprintf("\nTroubleshooting: split the input into chunks of at most %d bytes", phone.MaxInputSize)
	case statusCode == http.StatusUnsupportedMediaType:
		return message + "\nTroubleshooting: send UTF-8 or ASCII text, or upload a PDF or XLSX file to /scan"
	default:
		return message
	}
}

func finish(finishTiming func(bool, map[string]interface{}), success bool, metadata map[string]interface{}) {
	if finishTiming != nil {
		finishTiming(success, metadata)
	}
}
