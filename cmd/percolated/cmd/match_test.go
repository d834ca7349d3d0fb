package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/percolate/internal/apiclient"
)

func TestMatchCmd_ReportsRegisteredMatch(t *testing.T) {
	ts := startTestServer(t)
	serverAddr = ts.URL

	client := apiclient.New(ts.URL)
	_, err := client.RegisterQuery(t.Context(), 7, "body:hello")
	require.NoError(t, err)

	cmd := newMatchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--field", "body=hello world"})

	require.NoError(t, cmd.Execute())
	output := buf.String()
	assert.Contains(t, output, "1 match")
	assert.Contains(t, output, "query 7")
}

func TestMatchCmd_NoMatches(t *testing.T) {
	ts := startTestServer(t)
	serverAddr = ts.URL

	cmd := newMatchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--field", "body=goodbye"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No matches")
}

func TestMatchCmd_RequiresNonEmptyDocument(t *testing.T) {
	ts := startTestServer(t)
	serverAddr = ts.URL

	cmd := newMatchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}

func TestBuildDocument_MergesJSONAndFields(t *testing.T) {
	doc, err := buildDocument(`{"body":"hello"}`, []string{"tag=greeting"})
	require.NoError(t, err)
	assert.Equal(t, "hello", doc["body"])
	assert.Equal(t, "greeting", doc["tag"])
}

func TestBuildDocument_RejectsMalformedField(t *testing.T) {
	_, err := buildDocument("", []string{"no-equals-sign"})
	assert.Error(t, err)
}
