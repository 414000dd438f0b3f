package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yok-tottii/typo/internal/config"
	"github.com/yok-tottii/typo/internal/printer"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the root command against dir with fresh flag values
func run(t *testing.T, dir string, args ...string) result {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	color.NoColor = true

	snippetSlot, snippetID, snippetReplace = 0, "", false
	promptFile, promptDisabled = "", false
	usageMonth, usageJSON, usageAll, usageReset = "", false, false, false

	var stdout, stderr bytes.Buffer
	printer.SetOutput(&stdout, &stderr)
	t.Cleanup(func() { printer.SetOutput(os.Stdout, os.Stderr) })

	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--config-dir", dir))
	err := Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestHotkeysSetAndList(t *testing.T) {
	dir := t.TempDir()

	res := run(t, dir, "hotkeys", "set", "correct", "ctrl+alt+k")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "correct bound to Ctrl+Alt+K")

	res = run(t, dir, "hotkeys", "list")
	require.NoError(t, res.err)
	assert.Regexp(t, `correct\s+Ctrl\+Alt\+K`, res.stdout)
	assert.Regexp(t, `snippet_1\s+Ctrl\+Shift\+1`, res.stdout)
}

func TestHotkeysSetRejected(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"conflict", []string{"format", "ctrl+alt+c"}, "already used by: correct"},
		{"no modifier", []string{"format", "f"}, "needs at least"},
		{"unparsable", []string{"format", "meta+x+f"}, "unknown modifier"},
		{"bad action", []string{"snippet_0", "ctrl+alt+0"}, "cannot bind snippet_0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			res := run(t, dir, append([]string{"hotkeys", "set"}, tt.args...)...)
			require.Error(t, res.err)
			assert.Contains(t, res.stderr, tt.expected)

			res = run(t, dir, "hotkeys", "list")
			assert.Regexp(t, `format\s+Ctrl\+Alt\+F`, res.stdout, "rejected binding must not be saved")
		})
	}
}

func TestHotkeysUnsetAndReset(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, run(t, dir, "hotkeys", "unset", "translate").err)
	res := run(t, dir, "hotkeys", "list")
	assert.NotContains(t, res.stdout, "translate")

	require.NoError(t, run(t, dir, "hotkeys", "reset").err)
	res = run(t, dir, "hotkeys", "list")
	assert.Contains(t, res.stdout, "translate")
}

func TestSnippetsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	res := run(t, dir, "snippets", "add", "Signature", "Best regards", "--slot", "1")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "created")
	require.NoError(t, run(t, dir, "snippets", "add", "Address", "1 Main Street").err)

	res = run(t, dir, "snippets", "search", "sig")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Signature")
	assert.NotContains(t, res.stdout, "Address")

	exported := filepath.Join(t.TempDir(), "snippets.yaml")
	require.NoError(t, run(t, dir, "snippets", "export", exported).err)

	other := t.TempDir()
	res = run(t, other, "snippets", "import", exported, "--replace")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "2 snippets imported")

	res = run(t, other, "snippets", "list")
	assert.Regexp(t, `\s1\s+Signature`, res.stdout)
}

func TestSnippetsErrors(t *testing.T) {
	dir := t.TempDir()

	res := run(t, dir, "snippets", "add", "Bad", "x", "--slot", "12")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "invalid slot")

	res = run(t, dir, "snippets", "delete", "missing")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "snippet not found")
}

func TestPromptsCustomLifecycle(t *testing.T) {
	dir := t.TempDir()

	res := run(t, dir, "prompts", "add", "summary", "Summary", "Summarize: {text}")
	require.NoError(t, res.err, res.stderr)
	require.NoError(t, run(t, dir, "hotkeys", "set", "summary", "ctrl+alt+m").err)

	res = run(t, dir, "prompts", "disable", "summary")
	require.NoError(t, res.err)

	res = run(t, dir, "prompts", "list")
	require.NoError(t, res.err)
	assert.Regexp(t, `summary\s+Summary\s+disabled\s+Ctrl\+Alt\+M`, res.stdout)

	require.NoError(t, run(t, dir, "prompts", "delete", "summary").err)
	res = run(t, dir, "hotkeys", "list")
	assert.NotContains(t, res.stdout, "summary", "deleting a prompt unbinds its hotkey")
}

func TestPromptsOverride(t *testing.T) {
	dir := t.TempDir()

	tpl := filepath.Join(t.TempDir(), "correct.txt")
	require.NoError(t, os.WriteFile(tpl, []byte("Only fix typos: {text}\n"), 0600))

	res := run(t, dir, "prompts", "override", "correct", "--file", tpl)
	require.NoError(t, res.err, res.stderr)

	res = run(t, dir, "prompts", "list")
	assert.Contains(t, res.stdout, "* correct        Only fix typos: {text}")

	require.NoError(t, run(t, dir, "prompts", "reset", "correct").err)
	res = run(t, dir, "prompts", "list")
	assert.NotContains(t, res.stdout, "Only fix typos")
}

func TestPromptsRejected(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"missing placeholder", []string{"add", "summary", "Summary", "Summarize"}, "invalid template"},
		{"override custom", []string{"override", "summary", "x {text}"}, "not a built-in action"},
		{"bad id", []string{"add", "Not Valid", "Label", "{text}"}, "invalid prompt id"},
		{"enable missing", []string{"enable", "nothing"}, "custom prompt not found"},
		{"no template", []string{"override", "correct"}, "missing template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, t.TempDir(), append([]string{"prompts"}, tt.args...)...)
			require.Error(t, res.err)
			assert.Contains(t, res.stderr, tt.expected)
		})
	}
}

func TestUsageJSON(t *testing.T) {
	res := run(t, t.TempDir(), "usage", "--json")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, `"requests_count": 0`)
	assert.Contains(t, res.stdout, `"by_action": []`)
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	res := run(t, t.TempDir(), "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "typo 1.2.3")
	assert.Contains(t, res.stdout, "commit:         abc")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "first…", preview("first\nsecond", 10))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
}
