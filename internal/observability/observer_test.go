// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardObserver_MetricsLevelIsSilent(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, &buf)

	obs.StartTiming("phone_validator", "validate_content", "a.txt")(true, nil)
	assert.Empty(t, buf.String())
}

func TestStandardObserver_DebugWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityDebug, &buf)

	obs.StartTiming("phone_validator", "validate_content", "a.txt")(true, map[string]interface{}{"match_count": 2})

	var record StandardObservabilityData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "phone_validator", record.Component)
	assert.Equal(t, "validate_content", record.Operation)
	assert.Equal(t, "a.txt", record.FilePath)
	assert.True(t, record.Success)
	assert.True(t, strings.HasPrefix(record.RequestID, "req-"))
	assert.EqualValues(t, 2, record.Metadata["match_count"])
}

func TestStandardObserver_NilIsSafe(t *testing.T) {
	var obs *StandardObserver
	assert.NotPanics(t, func() {
		obs.LogOperation(StandardObservabilityData{Component: "x"})
	})
}

func TestDebugObserver_Steps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf)
	require.Same(t, d, d.StandardObserver.DebugObserver)

	finish := d.StartStep("router", "process_file", "a.pdf")
	d.LogDetail("router", "using pdf preprocessor")
	d.LogMetric("router", "pages", 3)
	finish(false, "bad xref")

	out := buf.String()
	assert.Contains(t, out, "> router: process_file (a.pdf)")
	assert.Contains(t, out, "  - router: using pdf preprocessor")
	assert.Contains(t, out, "# router: pages = 3")
	assert.Contains(t, out, "< router: process_file failed")
	assert.Contains(t, out, "bad xref")
}
