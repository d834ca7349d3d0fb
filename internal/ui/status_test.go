package ui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusInfo_Zero(t *testing.T) {
	info := StatusInfo{}

	assert.Equal(t, 0, info.RegisteredQueries)
	assert.True(t, info.StartedAt.IsZero())
	assert.Equal(t, 0, info.MatchDocumentCalls)
}

func TestStatusInfo_JSONSerialization(t *testing.T) {
	info := StatusInfo{
		RegisteredQueries:  10000,
		StartedAt:          time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		MatchDocumentCalls: 42,
		ProspectiveMatches: 120,
		ActualMatches:      8,
		MatcherPoolSize:    64,
		MatcherPoolInUse:   3,
		AuditDBSize:        2 * 1024 * 1024,
		HTTPStatus:         "running",
		MCPStatus:          "stopped",
	}

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, float64(10000), parsed["registered_queries"])
	assert.Equal(t, float64(42), parsed["match_document_calls"])
	assert.Equal(t, "running", parsed["http_status"])
	assert.Equal(t, "stopped", parsed["mcp_status"])
}

func TestStatusRenderer_Render_Basic(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, false)

	info := StatusInfo{
		RegisteredQueries:  50,
		MatchDocumentCalls: 250,
		ActualMatches:      12,
		MatcherPoolSize:    64,
		MatcherPoolInUse:   4,
		HTTPStatus:         "running",
		MCPStatus:          "running",
	}

	require.NoError(t, r.Render(info, ""))

	output := buf.String()
	assert.Contains(t, output, "50")
	assert.Contains(t, output, "250")
	assert.Contains(t, output, "running")
}

func TestStatusRenderer_RenderJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, false)

	info := StatusInfo{RegisteredQueries: 25, MatchDocumentCalls: 100}

	require.NoError(t, r.RenderJSON(info))

	var parsed StatusInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, 25, parsed.RegisteredQueries)
	assert.Equal(t, 100, parsed.MatchDocumentCalls)
}

func TestStatusRenderer_NoColor(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	info := StatusInfo{RegisteredQueries: 1, HTTPStatus: "running"}

	require.NoError(t, r.Render(info, ""))

	output := buf.String()
	assert.NotContains(t, output, "\x1b[")
	assert.NotContains(t, output, "\033[")
}

func TestStatusRenderer_HTTPStopped(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, false)

	info := StatusInfo{HTTPStatus: "stopped", MCPStatus: "running"}

	require.NoError(t, r.Render(info, ""))

	output := buf.String()
	assert.Contains(t, output, "stopped")
}

func TestStatusRenderer_WithSparkline(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	require.NoError(t, r.Render(StatusInfo{}, "▁▂▃▄▅▆▇█"))

	assert.Contains(t, buf.String(), "▁▂▃▄▅▆▇█")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{1024 * 1024 * 1024, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBytes(tt.bytes))
		})
	}
}
