package protool

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunner(t *testing.T, dir string, timeout time.Duration) *Runner {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner("/bin/sh", dir, timeout, logger)
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
}

func TestIndexLibraryParsesOutput(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	writeScript(t, dir, scriptIndex, `
printf '%s\n' '{"info":"scan started"}'
printf '%s\n' '{"uuid":"11111111-1111-1111-1111-111111111111","title":"Living Hope","path":"/lib/Living Hope.pro"}'
printf '%s\n' '{"warn":"unreadable bundle: junk.pro"}'
printf '%s\n' '{"uuid":"22222222-2222-2222-2222-222222222222","title":"Welcome Loop","path":"/lib/Welcome Loop.pro"}'
`)

	r := testRunner(t, dir, 5*time.Second)
	entries, err := r.IndexLibrary(context.Background(), "/lib")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", entries[0].UUID)
	assert.Equal(t, "Living Hope", entries[0].Title)
	assert.Equal(t, "/lib/Living Hope.pro", entries[0].Path)
	assert.Equal(t, "Welcome Loop", entries[1].Title)
}

func TestRunFailureWrapsStderr(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	writeScript(t, dir, scriptNotes, `
echo "Traceback (most recent call last):" >&2
echo "ValueError: malformed rtf data" >&2
exit 3
`)

	r := testRunner(t, dir, 5*time.Second)
	err := r.ApplyNotes(context.Background(), "/lib/Welcome.pro", "hello")
	require.Error(t, err)

	assert.True(t, IsRewrite(err))
	assert.Contains(t, err.Error(), scriptNotes)
	assert.Contains(t, err.Error(), "/lib/Welcome.pro")
	assert.Contains(t, err.Error(), "ValueError: malformed rtf data")
}

func TestRunHonorsDeadline(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	writeScript(t, dir, scriptNotes, "sleep 3\n")

	r := testRunner(t, dir, 100*time.Millisecond)
	err := r.ApplyNotes(context.Background(), "/lib/Welcome.pro", "hello")
	require.Error(t, err)

	assert.True(t, IsRewrite(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestApplySongDeliversPayload(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	writeScript(t, dir, scriptSong, `printf '%s' "$2" > "$1"`+"\n")

	payload := SongPayload{
		Title: "Living Hope",
		Sections: []SongSection{
			{Name: "Verse 1", Slides: [][]string{{"Line one", "Line two"}}},
		},
		Timer: &TimerRef{Name: "Service Timer", AllowsOverrun: true},
	}

	target := filepath.Join(dir, "song.pro")
	r := testRunner(t, dir, 5*time.Second)
	require.NoError(t, r.ApplySong(context.Background(), target, payload))

	data, err := os.ReadFile(target)
	require.NoError(t, err)

	var got SongPayload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, payload, got)
}

func TestParseIndexRejectsMalformedLines(t *testing.T) {
	r := testRunner(t, t.TempDir(), time.Second)

	_, err := r.parseIndex(bytes.NewReader([]byte("{\"uuid\":\"a\",\"path\":\"/p\"}\nnot json\n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not json")
}

func TestParseIndexSkipsBlankAndChatterLines(t *testing.T) {
	r := testRunner(t, t.TempDir(), time.Second)

	out := "\n{\"info\":\"done\",\"count\":1}\n{\"uuid\":\"a\",\"title\":\"T\",\"path\":\"/p\"}\n\n"
	entries, err := r.parseIndex(bytes.NewReader([]byte(out)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].UUID)
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "", lastLines("  \n ", 3))
	assert.Equal(t, "b\nc", lastLines("a\nb\nc", 2))
	assert.Equal(t, "a", lastLines("a", 4))
}
