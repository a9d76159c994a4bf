package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tagnote/internal/platform"
)

func run(t *testing.T, vault string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--vault", vault}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, vault string, args ...string) string {
	t.Helper()
	out, err := run(t, vault, args...)
	require.NoError(t, err, "tagnote %s", strings.Join(args, " "))
	return out
}

func TestNotesLifecycle(t *testing.T) {
	vault := t.TempDir()

	mustRun(t, vault, "init")
	_, err := os.Stat(filepath.Join(vault, platform.ConfigFile))
	require.NoError(t, err)

	mustRun(t, vault, "add", "Groceries", "--content", "milk", "--tag", "home")
	mustRun(t, vault, "add", "Plants", "--tag", "home")
	mustRun(t, vault, "add", "--tag", "work")

	var notes []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Tag   string `json:"tag"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, vault, "list", "--json")), &notes))
	require.Len(t, notes, 3)
	assert.Equal(t, "Untitled Note", notes[2].Title)

	mustRun(t, vault, "edit", notes[0].ID, "--title", "Shopping")
	assert.Contains(t, mustRun(t, vault, "show", notes[0].ID), "Shopping")

	var groups []tagSummary
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, vault, "tags", "--json")), &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, tagSummary{Tag: "home", Label: "home", Count: 2}, groups[0])

	assert.Contains(t, mustRun(t, vault, "search", "SHOP"), notes[0].ID)
	assert.Empty(t, mustRun(t, vault, "search", "   "))

	assert.Contains(t, mustRun(t, vault, "tag", "rename", "home", "house"), "2 note(s)")
	assert.Contains(t, mustRun(t, vault, "list", "--tag", "house"), notes[1].ID)

	mustRun(t, vault, "tag", "delete", "house")
	untagged := mustRun(t, vault, "list", "--tag", "")
	assert.Contains(t, untagged, notes[0].ID)
	assert.Contains(t, untagged, notes[1].ID)

	mustRun(t, vault, "rm", notes[2].ID)
	_, err = run(t, vault, "show", notes[2].ID)
	assert.Error(t, err)
}

func TestTagManagementValidation(t *testing.T) {
	vault := t.TempDir()

	mustRun(t, vault, "tag", "create", "ideas")
	assert.Contains(t, mustRun(t, vault, "tags"), "ideas")

	_, err := run(t, vault, "tag", "create", "  ")
	assert.Error(t, err)
	_, err = run(t, vault, "tag", "create", "ideas")
	assert.Error(t, err)

	_, err = run(t, vault, "--variant", "compact", "tag", "create", "later")
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	vault := t.TempDir()

	assert.Equal(t, "20\n", mustRun(t, vault, "settings", "font"))
	assert.Equal(t, "24\n", mustRun(t, vault, "settings", "font", "24"))
	_, err := run(t, vault, "settings", "font", "40")
	assert.Error(t, err)

	assert.Equal(t, "space\n", mustRun(t, vault, "settings", "background"))
	assert.Equal(t, "blue\n", mustRun(t, vault, "settings", "background", "blue"))
	_, err = run(t, vault, "settings", "background", "mars")
	assert.Error(t, err)

	assert.Equal(t, "20 space\n", mustRun(t, vault, "settings", "reset"))
	assert.Equal(t, "20\n", mustRun(t, vault, "settings", "font"))
}

func TestConfigFileSelectsAdapter(t *testing.T) {
	vault := t.TempDir()
	mustRun(t, vault, "--adapter", "bolt", "--format", "yaml", "init")

	mustRun(t, vault, "add", "Stored in bolt")
	_, err := os.Stat(filepath.Join(vault, "tagnote.db"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(vault, "notes.yaml"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, mustRun(t, vault, "list"), "Stored in bolt")
}

func TestAudioTracks(t *testing.T) {
	vault := t.TempDir()
	assert.Contains(t, mustRun(t, vault, "audio", "tracks"), "Moon")
	assert.Contains(t, mustRun(t, vault, "--variant", "compact", "audio", "tracks"), "Destiny")
}

func TestLogFile(t *testing.T) {
	vault := t.TempDir()
	logFile := filepath.Join(t.TempDir(), "tagnote.log")

	mustRun(t, vault, "-v", "--log-file", logFile, "list")
	info, err := os.Stat(logFile)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestVersion(t *testing.T) {
	assert.Contains(t, mustRun(t, t.TempDir(), "version"), "tagnote version")
}
