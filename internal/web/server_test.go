// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phone-scan/internal/config"
	"phone-scan/internal/detector"
	"phone-scan/internal/phone"
	"phone-scan/internal/preprocessors"
	"phone-scan/internal/suppressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, manager *suppressions.SuppressionManager) *httptest.Server {
	t.Helper()
	return newTestServerWithSettings(t, manager, config.Settings{Format: "text", ConfidenceLevels: "all", Categories: "all"})
}

func newTestServerWithSettings(t *testing.T, manager *suppressions.SuppressionManager, settings config.Settings) *httptest.Server {
	t.Helper()
	ws := NewWebServer(Options{
		Port:               8080,
		Settings:           settings,
		SuppressionManager: manager,
		Log:                io.Discard,
	})
	server := httptest.NewServer(ws.Handler())
	t.Cleanup(server.Close)
	return server
}

func decodeScanResponse(t *testing.T, resp *http.Response) ScanResponse {
	t.Helper()
	defer resp.Body.Close()
	var body ScanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Server"), "phone-scan/"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "phone-scan-web", body["service"])
	assert.Contains(t, body, "build_info")
}

func TestFormats(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/formats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Formats []struct {
			Name     string `json:"name"`
			MimeType string `json:"mime_type"`
		} `json:"formats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	var names []string
	for _, f := range body.Formats {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"csv", "json", "junit", "sarif", "text", "yaml"}, names)
}

func TestExtract_RawText(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Post(server.URL+"/extract", "text/plain", strings.NewReader("Call (234) 567-8900 now"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeScanResponse(t, resp)
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.RequestID)
	require.Equal(t, 1, body.Count)
	require.Len(t, body.Results, 1)

	match := body.Results[0]
	assert.Equal(t, "(234) 567-8900", match.Text)
	assert.Equal(t, "2345678900", match.Digits)
	assert.Equal(t, phone.FormattedDomestic.String(), match.Category)
	assert.Equal(t, 5, match.Offset)
	assert.Equal(t, 1, match.LineNumber)
	assert.Equal(t, 6, match.Column)
}

func TestExtract_JSONBody(t *testing.T) {
	server := newTestServer(t, nil)

	payload, _ := json.Marshal(map[string]string{"text": "+44 20 7946 0958 and 9876543210"})
	resp, err := http.Post(server.URL+"/extract", "application/json; charset=utf-8", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeScanResponse(t, resp)
	require.Len(t, body.Results, 2)
	assert.Equal(t, phone.InternationalPlus.String(), body.Results[0].Category)
	assert.Equal(t, phone.Mobile10Digit.String(), body.Results[1].Category)
}

func TestExtract_NoMatches(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Post(server.URL+"/extract", "text/plain", strings.NewReader("nothing to see"))
	require.NoError(t, err)

	body := decodeScanResponse(t, resp)
	assert.True(t, body.Success)
	assert.NotNil(t, body.Results)
	assert.Empty(t, body.Results)
}

func TestExtract_RedactedWhenShowMatchOff(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Post(server.URL+"/extract?show_match=false", "text/plain", strings.NewReader("Call (234) 567-8900"))
	require.NoError(t, err)

	body := decodeScanResponse(t, resp)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "[REDACTED]", body.Results[0].Text)
	assert.Empty(t, body.Results[0].Digits)
}

func TestExtract_Categories(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Post(server.URL+"/extract?categories=mobile_10_digit", "text/plain",
		strings.NewReader("(234) 567-8900 or 9876543210"))
	require.NoError(t, err)

	body := decodeScanResponse(t, resp)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "9876543210", body.Results[0].Text)
}

func TestExtract_CSVFormat(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Post(server.URL+"/extract?format=csv", "text/plain", strings.NewReader("Call (234) 567-8900"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "phone-scan-results.csv")

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(string(content), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Filename,Category"))
	assert.Contains(t, lines[1], phone.FormattedDomestic.String())
}

func TestExtract_Errors(t *testing.T) {
	server := newTestServer(t, nil)

	tests := []struct {
		name        string
		query       string
		contentType string
		body        string
		status      int
	}{
		{"unknown format", "?format=xml", "text/plain", "9876543210", http.StatusBadRequest},
		{"unknown category", "?categories=PAGER", "text/plain", "9876543210", http.StatusBadRequest},
		{"bad show_match", "?show_match=maybe", "text/plain", "9876543210", http.StatusBadRequest},
		{"invalid json", "", "application/json", "{not json", http.StatusBadRequest},
		{"binary body", "", "application/octet-stream", "abc\x00def", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/extract"+tt.query, tt.contentType, strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decodeScanResponse(t, resp)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestExtract_TooLarge(t *testing.T) {
	server := newTestServer(t, nil)

	oversized := bytes.Repeat([]byte("a"), phone.MaxInputSize+1)
	resp, err := http.Post(server.URL+"/extract", "text/plain", bytes.NewReader(oversized))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	body := decodeScanResponse(t, resp)
	assert.False(t, body.Success)
}

func TestExtract_MethodNotAllowed(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/extract")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestExtract_Suppressed(t *testing.T) {
	manager := suppressions.NewSuppressionManager(filepath.Join(t.TempDir(), "suppressions.yaml"))
	require.NoError(t, manager.AddSuppression(detector.Match{
		Text:     "234-567-8900",
		Digits:   "2345678900",
		Category: phone.FormattedDomestic,
	}, "switchboard", "tester", nil))
	server := newTestServer(t, manager)

	resp, err := http.Post(server.URL+"/extract", "text/plain", strings.NewReader("Call (234) 567-8900 or 9876543210"))
	require.NoError(t, err)

	body := decodeScanResponse(t, resp)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "9876543210", body.Results[0].Text)
	require.Len(t, body.Suppressed, 1)
	assert.Equal(t, "switchboard", body.Suppressed[0].RuleReason)

	listResp, err := http.Get(server.URL + "/suppressions")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list struct {
		Rules []suppressions.SuppressionRule `json:"rules"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list.Rules, 1)
	assert.Equal(t, "SUP-00000001", list.Rules[0].ID)
}

func TestSuppressions_NoManager(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/suppressions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []any{}, body["rules"])
}

func TestScan_Upload(t *testing.T) {
	server := newTestServer(t, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Mobile: 9876543210\n"))
	require.NoError(t, err)
	part, err = writer.CreateFormFile("files", "empty.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("no numbers\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/scan", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeScanResponse(t, resp)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "notes.txt", body.Results[0].Filename)
	assert.Equal(t, "9876543210", body.Results[0].Text)
	assert.Equal(t, 9, body.Results[0].Column)
}

func TestScan_NoFiles(t *testing.T) {
	server := newTestServer(t, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	resp, err := http.Post(server.URL+"/scan", writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeScanResponse(t, resp)
	assert.Contains(t, body.Error, "No files uploaded")
}

func uploadForm(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestScan_OversizeUpload(t *testing.T) {
	server := newTestServerWithSettings(t, nil, config.Settings{
		Format:           "text",
		ConfidenceLevels: "all",
		Categories:       "all",
		MaxFileSize:      config.DefaultMaxFileSize,
	})

	content := append([]byte("call 9876543210\n"), bytes.Repeat([]byte("a"), 11<<20)...)
	buf, contentType := uploadForm(t, "big.txt", content)

	resp, err := http.Post(server.URL+"/scan", contentType, buf)
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	body := decodeScanResponse(t, resp)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "big.txt")
	assert.Contains(t, body.Error, "file too large")
}

func TestScan_BinaryUploadHidesTempPath(t *testing.T) {
	server := newTestServer(t, nil)

	buf, contentType := uploadForm(t, "data.txt", []byte("abc\x00def 9876543210"))

	resp, err := http.Post(server.URL+"/scan", contentType, buf)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	body := decodeScanResponse(t, resp)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "data.txt")
	assert.NotContains(t, body.Error, "phone-scan-upload-")
	assert.NotContains(t, body.Error, "upload_0_")
}

func TestUploadError(t *testing.T) {
	tempDir := filepath.Join(os.TempDir(), "phone-scan-upload-123")
	path := filepath.Join(tempDir, "upload_0_456.txt")
	err := fmt.Errorf("processing failed for %s: %w", path, preprocessors.ErrBinaryContent)

	message := uploadError(err, tempDir, path, "notes.txt")
	assert.Equal(t, "processing failed for notes.txt: binary content", message)

	other := fmt.Errorf("open %s: permission denied", filepath.Join(tempDir, "other.txt"))
	assert.Equal(t, "open other.txt: permission denied", uploadError(other, tempDir, path, "notes.txt"))
}

func TestSaveUpload(t *testing.T) {
	buf, contentType := uploadForm(t, "../report.CSV", []byte("a,b\n9876543210,x\n"))
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	form, err := multipart.NewReader(buf, params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	fileHeader := form.File["files"][0]

	dir := t.TempDir()
	path, err := saveUpload(fileHeader, dir, 3)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "upload_3_"))
	assert.Equal(t, ".csv", filepath.Ext(path))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n9876543210,x\n", string(written))

	_, err = saveUpload(fileHeader, filepath.Join(dir, "missing"), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create temporary file")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report.txt", sanitizeFilename("../../etc/report.txt"))
	assert.Equal(t, "a.txt", sanitizeFilename(`C:\dir\a.txt`))
	assert.Equal(t, "scriptx.txt", sanitizeFilename("<script>x.txt"))
}
