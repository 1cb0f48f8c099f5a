package exiftool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes a shell script that answers -ver and otherwise runs body.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake exiftool needs a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "exiftool")
	script := fmt.Sprintf("#!/bin/sh\nif [ \"$1\" = \"-ver\" ]; then echo 12.76; exit 0; fi\n%s\n", body)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func inputFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not really a jpeg"), 0o644))
	return path
}

func readyTool(t *testing.T, body string, timeout time.Duration) *Tool {
	t.Helper()
	tool := New(Config{Path: fakeTool(t, body), Timeout: timeout})
	st := tool.Init()
	require.True(t, st.Ready)
	require.NoError(t, st.Err)
	return tool
}

func TestInit_ResolvesBinaryAndVersion(t *testing.T) {
	path := fakeTool(t, "exit 0")
	tool := New(Config{Path: path})

	assert.False(t, tool.Status().Ready)

	st := tool.Init()
	assert.True(t, st.Ready)
	assert.Equal(t, path, st.Path)
	assert.Equal(t, "12.76", st.Version)
	assert.Equal(t, st, tool.Status())
}

func TestInit_MissingBinary(t *testing.T) {
	tool := New(Config{Path: filepath.Join(t.TempDir(), "no-such-exiftool")})

	st := tool.Init()
	assert.False(t, st.Ready)
	require.Error(t, st.Err)
	assert.True(t, IsSetupError(st.Err))

	_, err := tool.Invoke(context.Background(), inputFile(t))
	var setupErr *SetupError
	assert.True(t, errors.As(err, &setupErr))
}

func TestInvoke_BeforeInit(t *testing.T) {
	tool := New(Config{Path: fakeTool(t, "exit 0")})

	_, err := tool.Invoke(context.Background(), inputFile(t))
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestInvoke_BinaryRemovedAfterInit(t *testing.T) {
	tool := readyTool(t, "exit 0", 0)
	require.NoError(t, os.Remove(tool.Status().Path))

	_, err := tool.Invoke(context.Background(), inputFile(t))
	assert.True(t, IsSetupError(err))
}

func TestInvoke_PassesArguments(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	tool := readyTool(t, fmt.Sprintf("printf '%%s\\n' \"$@\" > %q\necho '[{\"SourceFile\":\"x\"}]'", argsFile), 0)
	input := inputFile(t)

	out, err := tool.Invoke(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, out.Records, 1)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{"-json", "-n", "-charset", "filename=utf8", input}, got)
}

func TestInvoke_DecodesNumbersAndKeepsStderr(t *testing.T) {
	tool := readyTool(t, `echo '[{"GPSLatitude": 48.8584, "Make": "Canon"}]'; echo 'Warning: minor' >&2`, 0)

	out, err := tool.Invoke(context.Background(), inputFile(t))
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "Canon", out.Records[0]["Make"])
	assert.Equal(t, "48.8584", fmt.Sprint(out.Records[0]["GPSLatitude"]))
	assert.Contains(t, out.Stderr, "Warning: minor")
}

func TestInvoke_EmptyArray(t *testing.T) {
	tool := readyTool(t, "echo '[]'", 0)

	out, err := tool.Invoke(context.Background(), inputFile(t))
	require.NoError(t, err)
	assert.Empty(t, out.Records)
	assert.Equal(t, "[]\n", out.Stdout)
}

func TestInvoke_NoOutput(t *testing.T) {
	tool := readyTool(t, "exit 0", 0)

	_, err := tool.Invoke(context.Background(), inputFile(t))
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestInvoke_InvalidJSON(t *testing.T) {
	tool := readyTool(t, "echo 'this is not json'; echo 'oops' >&2", 0)

	_, err := tool.Invoke(context.Background(), inputFile(t))
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "this is not json\n", parseErr.Stdout)
	assert.Equal(t, "oops\n", parseErr.Stderr)
	assert.Equal(t, "Failed to parse exiftool JSON output", parseErr.Error())
}

func TestInvoke_NullRecord(t *testing.T) {
	tool := readyTool(t, "echo '[null]'", 0)

	_, err := tool.Invoke(context.Background(), inputFile(t))
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "[null]\n", parseErr.Stdout)
	assert.EqualError(t, parseErr.Err, "record 0 is null")
}

func TestInvoke_NonZeroExit(t *testing.T) {
	tool := readyTool(t, "echo 'Error: broken' >&2; exit 3", 0)

	_, err := tool.Invoke(context.Background(), inputFile(t))
	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Contains(t, execErr.Stderr, "Error: broken")
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestInvoke_Timeout(t *testing.T) {
	tool := readyTool(t, "exec sleep 5", 100*time.Millisecond)

	start := time.Now()
	_, err := tool.Invoke(context.Background(), inputFile(t))
	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestInvoke_MissingInput(t *testing.T) {
	tool := readyTool(t, "echo '[]'", 0)
	missing := filepath.Join(t.TempDir(), "gone.jpg")

	_, err := tool.Invoke(context.Background(), missing)
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "Input file not found: "+missing, err.Error())
}
