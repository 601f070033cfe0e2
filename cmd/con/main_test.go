package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args []string, stdin string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeCommand(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, []string{"encode", "-"}, `{"name":"John","age":30}`)
	require.NoError(t, err)
	assert.Equal(t, "age: 30\nname: John\n", out)
}

func TestDecodeCommand(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, []string{"decode", "-"}, "name: John\nage: 30\n")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "John", got["name"])
	assert.Equal(t, float64(30), got["age"])
}

func TestTokensCommand(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, []string{"tokens", "-"}, `{"name":"John","age":30}`)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, "savings")
	assert.Greater(t, got["con_tokens"], float64(0))
	assert.Greater(t, got["json_tokens"], float64(0))
}

func TestEncodeCommandWithTabDelimiter(t *testing.T) {
	t.Parallel()

	out, err := runCmd(t, []string{"encode", "--delimiter=tab", "-"}, `{"tags":["a","b","c"]}`)
	require.NoError(t, err)
	assert.Equal(t, "tags[3\t]: a\tb\tc\n", out)
}

func TestEncodeCommandRejectsUnknownDelimiter(t *testing.T) {
	t.Parallel()

	_, err := runCmd(t, []string{"encode", "--delimiter=semicolon", "-"}, `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown delimiter")
}

func TestDecodeCommandStrictModeRejectsCountMismatch(t *testing.T) {
	t.Parallel()

	_, err := runCmd(t, []string{"decode", "--strict", "-"}, "tags[3]: a,b\n")
	require.Error(t, err)
}

func TestEncodeCommandRejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := runCmd(t, []string{"encode", "-"}, `not json`)
	require.Error(t, err)
}
