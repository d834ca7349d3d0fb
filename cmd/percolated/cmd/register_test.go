package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCmd_RegistersAgainstRunningServer(t *testing.T) {
	ts := startTestServer(t)
	serverAddr = ts.URL

	cmd := newRegisterCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--id", "7", "--query", "body:hello"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "7")
}

func TestRegisterCmd_RequiresQuery(t *testing.T) {
	ts := startTestServer(t)
	serverAddr = ts.URL

	cmd := newRegisterCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--id", "1"})

	assert.Error(t, cmd.Execute())
}
