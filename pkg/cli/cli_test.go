package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstardust/geometalens/internal/logger"
)

const fakeExifTool = `#!/bin/sh
if [ "$1" = "-ver" ]; then echo 12.76; exit 0; fi
for last; do :; done
case "$last" in
  *empty*) echo '[]' ;;
  *) printf '[{"SourceFile":"%s","MIMEType":"image/jpeg","Make":"Canon","GPSLatitude":48.8584,"GPSLongitude":2.2945,"DateTimeOriginal":"2025:10:16 22:44:35+05:30"}]\n' "$last" ;;
esac
`

func writeFakeTool(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake exiftool needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "exiftool")
	require.NoError(t, os.WriteFile(path, []byte(fakeExifTool), 0o755))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(logger.Init)

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestExtract_SingleFile(t *testing.T) {
	tool := writeFakeTool(t)
	photo := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg bytes"), 0o644))

	out, err := runCLI(t, "extract", "--exiftool", tool, photo)
	require.NoError(t, err)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, true, res["hasMetadata"])
	gps := res["gps"].(map[string]interface{})
	assert.Equal(t, "https://www.google.com/maps?q=48.8584,2.2945", gps["mapUrl"])
	ts := res["timestamp"].(map[string]interface{})
	assert.Equal(t, "2025-10-16T17:14:35.000Z", ts["dateTimeOriginal"])
	tech := res["technical"].(map[string]interface{})
	assert.Equal(t, float64(len("jpeg bytes")), tech["fileSize"])
}

func TestExtract_DirectoryKeepsOrder(t *testing.T) {
	tool := writeFakeTool(t)
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b_empty.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	out, err := runCLI(t, "extract", "--exiftool", tool, "--concurrency", "2", "--pretty", dir)
	require.NoError(t, err)

	var results []struct {
		File     string                 `json:"file"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "a.jpg"), results[0].File)
	assert.Equal(t, true, results[0].Metadata["hasMetadata"])
	assert.Equal(t, filepath.Join(dir, "b_empty.png"), results[1].File)
	assert.Equal(t, true, results[1].Metadata["success"])
	assert.Equal(t, false, results[1].Metadata["hasMetadata"])
}

func TestExtract_MissingTool(t *testing.T) {
	photo := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("x"), 0o644))

	_, err := runCLI(t, "extract", "--exiftool", filepath.Join(t.TempDir(), "missing"), photo)
	assert.ErrorContains(t, err, "ExifTool not found")
}

func TestExtract_NoMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	_, err := runCLI(t, "extract", dir)
	assert.ErrorContains(t, err, "no files with an allowed extension")
}

func TestCheck(t *testing.T) {
	tool := writeFakeTool(t)

	out, err := runCLI(t, "check", "--exiftool", tool)
	require.NoError(t, err)
	assert.Contains(t, out, "exiftool: ready")
	assert.Contains(t, out, "version: 12.76")

	out, err = runCLI(t, "check", "--exiftool", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.Contains(t, out, "exiftool: not ready")
}

func TestConfigFlagOverridesEnv(t *testing.T) {
	t.Setenv("GEOMETALENS_EXIFTOOL_PATH", "/nonexistent/exiftool")
	tool := writeFakeTool(t)

	out, err := runCLI(t, "check", "--exiftool", tool)
	require.NoError(t, err)
	assert.Contains(t, out, "path: "+tool)
}
