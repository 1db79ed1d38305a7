// Copyright 2025 The go-yaml Project Contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	limitsFlag = "default"
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTokensCommand(t *testing.T) {
	path := writeInput(t, "a: 1\n")
	out, err := runCmd(t, "tokens", path)
	require.NoError(t, err)

	assert.Contains(t, out, "STREAM-START")
	assert.Contains(t, out, "BLOCK-MAPPING-START")
	assert.Contains(t, out, "SCALAR(a, Plain)")
	assert.Contains(t, out, "SCALAR(1, Plain)")
	assert.Contains(t, out, "STREAM-END")
	assert.True(t, strings.HasPrefix(out, "line 1, column 1"))
}

func TestEventsCommand(t *testing.T) {
	path := writeInput(t, "- x\n- y\n")
	out, err := runCmd(t, "events", path)
	require.NoError(t, err)

	assert.Contains(t, out, "DOCUMENT-START(implicit)")
	assert.Contains(t, out, "SEQUENCE-START(block)")
	assert.Contains(t, out, `SCALAR("x", Plain)`)
	assert.Contains(t, out, "SEQUENCE-END")
}

func TestJSONCommand(t *testing.T) {
	path := writeInput(t, "name: db\nports:\n  - 8080\nok: true\n")
	out, err := runCmd(t, "json", path)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"db","ports":[8080],"ok":true}`+"\n", out)
}

func TestJSONCommandMultiDoc(t *testing.T) {
	path := writeInput(t, "1\n---\n[a, b]\n")
	out, err := runCmd(t, "json", path)
	require.NoError(t, err)
	assert.Equal(t, "1\n[\"a\",\"b\"]\n", out)
}

func TestCheckCommand(t *testing.T) {
	path := writeInput(t, "a: 1\n---\nb: [1, 2]\n")
	out, err := runCmd(t, "check", path)
	require.NoError(t, err)

	assert.Contains(t, out, "ok: 2 document(s)")
	assert.Contains(t, out, "document 1:")
	assert.Contains(t, out, "document 2:")
}

func TestCheckCommandFailsOnBadInput(t *testing.T) {
	path := writeInput(t, "a: [1, 2\n")
	_, err := runCmd(t, "check", path)
	require.Error(t, err)
}

func TestLimitsFlag(t *testing.T) {
	deep := strings.Repeat("[", 60) + "1" + strings.Repeat("]", 60)
	path := writeInput(t, deep)

	_, err := runCmd(t, "check", path)
	require.NoError(t, err)

	_, err = runCmd(t, "check", "--limits", "strict", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit exceeded")
}

func TestUnknownLimitsPreset(t *testing.T) {
	path := writeInput(t, "a: 1\n")
	_, err := runCmd(t, "check", "--limits", "nope", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown limits preset "nope"`)
}

func TestMissingFile(t *testing.T) {
	_, err := runCmd(t, "json", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
