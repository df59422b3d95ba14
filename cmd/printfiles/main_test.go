package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PyBalance/printfiles/internal/discover"
	"github.com/PyBalance/printfiles/internal/format"
	"github.com/PyBalance/printfiles/internal/reader"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into a fresh directory holding files and points HOME at
// another, so no real config file is read.
func chdirTemp(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	if err != nil {
		return 1
	}
	return 0
}

func TestExecute_PrintsDirectory(t *testing.T) {
	chdirTemp(t, map[string]string{
		"dir/a.txt":     "A\n",
		"dir/sub/c.txt": "C\n",
	})

	stdout, stderr, err := execute(t, "dir")
	require.NoError(t, err)
	assert.Equal(t,
		"===dir/a.txt===\nA\n===end of 'dir/a.txt'===\n"+
			"===dir/sub/c.txt===\nC\n===end of 'dir/sub/c.txt'===\n",
		stdout)
	assert.Empty(t, stderr)
}

func TestExecute_NoMatchExitsTwo(t *testing.T) {
	chdirTemp(t, map[string]string{"a.txt": "a\n"})

	stdout, stderr, err := execute(t, "*.nothing")
	assert.Equal(t, 2, exitCode(err))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no files matched")
}

func TestExecute_RequiresItems(t *testing.T) {
	chdirTemp(t, nil)

	_, _, err := execute(t)
	assert.Error(t, err)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestExecute_ClipAndDivider(t *testing.T) {
	chdirTemp(t, map[string]string{"long.txt": "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n"})

	stdout, _, err := execute(t, "-c", "--divider", "triple-backtick", "long.txt")
	require.NoError(t, err)
	assert.Equal(t, "``` long.txt\n1\n2\n3\n4\n5\n... (snipped 2 lines) ...\n8\n9\n10\n```\n", stdout)

	stdout, _, err = execute(t, "--clip=1:1", "long.txt")
	require.NoError(t, err)
	assert.Equal(t, "===long.txt===\n1\n... (snipped 8 lines) ...\n10\n===end of 'long.txt'===\n", stdout)

	_, _, err = execute(t, "--clip=0:0", "long.txt")
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestExecute_InvalidEnum(t *testing.T) {
	chdirTemp(t, map[string]string{"a.txt": "a\n"})

	for _, args := range [][]string{
		{"--reader", "pdf", "a.txt"},
		{"--binary", "zip", "a.txt"},
		{"--sort", "age", "a.txt"},
		{"--divider", "json", "a.txt"},
		{"--jobs", "0", "a.txt"},
		{"--print", "--copy", "a.txt"},
		{"--jobs", "many", "a.txt"},
		{"--no-such-flag", "a.txt"},
		{"--set-default-output", "fax"},
	} {
		_, _, err := execute(t, args...)
		assert.Error(t, err, args)
		assert.Equal(t, exitUsage, exitCode(err), args)
	}
}

func TestExecute_UnreadableFileExitsOne(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	dir := chdirTemp(t, map[string]string{"a.txt": "a\n", "locked.txt": "secret\n"})
	locked := filepath.Join(dir, "locked.txt")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	stdout, stderr, err := execute(t, "a.txt", "locked.txt")
	assert.Equal(t, 1, exitCode(err))
	assert.Equal(t,
		"===a.txt===\na\n===end of 'a.txt'===\n"+
			"===locked.txt===\n(error: permission denied)\n===end of 'locked.txt'===\n",
		stdout)
	assert.Contains(t, stderr, "failed to read file")
}

func TestExecute_ConfigFileDefaults(t *testing.T) {
	chdirTemp(t, map[string]string{
		"a.txt":  "a\n",
		"b.md":   "b\n",
		"big.go": "0123456789",
		configFileName: `divider: xml-tag
max_size: 5
profiles:
  docs:
    ext: [md]
`,
	})

	stdout, stderr, err := execute(t, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "<file path=\"a.txt\">\na\n</file>\n", stdout)
	assert.Empty(t, stderr)

	stdout, _, err = execute(t, "--divider", "equals", "big.go")
	require.NoError(t, err)
	assert.Equal(t, "===big.go===\n"+reader.PlaceholderTooLarge+"===end of 'big.go'===\n", stdout,
		"flags win over the config file")

	stdout, _, err = execute(t, "--profile", "docs", "--max-size", "-1", ".")
	require.NoError(t, err)
	assert.Equal(t, "<file path=\"b.md\">\nb\n</file>\n", stdout)

	_, _, err = execute(t, "--profile", "missing", "a.txt")
	assert.Error(t, err)
}

func TestExecute_UnknownConfigKey(t *testing.T) {
	chdirTemp(t, map[string]string{
		"a.txt":        "a\n",
		configFileName: "colour: always\n",
	})

	_, _, err := execute(t, "a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown setting "colour"`)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestExecute_Copy(t *testing.T) {
	chdirTemp(t, map[string]string{"a.txt": "a\n"})

	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	stdout, _, err := execute(t, "--copy", "a.txt")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, "===a.txt===\na\n===end of 'a.txt'===\n", copied)
}

func TestExecute_SSHCopy(t *testing.T) {
	chdirTemp(t, map[string]string{"a.txt": "a\n"})
	t.Setenv("TMUX", "")
	t.Setenv("TERM", "xterm")

	stdout, _, err := execute(t, "--ssh-copy", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, osc52Sequence("===a.txt===\na\n===end of 'a.txt'===\n"), stdout)
}

func TestExecute_SetDefaultOutput(t *testing.T) {
	chdirTemp(t, nil)

	_, stderr, err := execute(t, "--set-default-output", "ssh-copy")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Default output mode saved")

	path, err := homeConfigPath()
	require.NoError(t, err)
	fileSettings, err := loadSettings([]string{path}, "")
	require.NoError(t, err)
	assert.Equal(t, outputModeSSHCopy, fileSettings[outputKey])
}

func TestOptionsConfig(t *testing.T) {
	o := &options{}
	cmd := &cobra.Command{}
	bindFlags(cmd, o)
	require.NoError(t, cmd.ParseFlags([]string{
		"--reader", "auto",
		"--ext", ".Go, md",
		"--binary", "hex",
		"--sort", "mtime",
		"--divider", "xml-tag",
		"--follow-links=false",
		"--jobs", "4",
		"--exclude", "vendor/,*.pb.go",
		"--gitignore",
	}))

	cfg, err := o.config(cmd, []string{"src"}, "/work")
	require.NoError(t, err)
	assert.Equal(t, reader.BackendAuto, cfg.Backend)
	assert.Equal(t, []string{"go", "md"}, cfg.Extensions)
	assert.Equal(t, reader.BinaryHex, cfg.Binary)
	assert.Equal(t, discover.SortMtime, cfg.Sort)
	assert.Equal(t, format.XMLTag, cfg.Divider)
	assert.False(t, cfg.FollowSymlinks)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, []string{"vendor/", "*.pb.go"}, cfg.Exclude)
	assert.True(t, cfg.GitIgnore)
	assert.Nil(t, cfg.Clip)
	assert.Equal(t, reader.NoSizeLimit, cfg.MaxSize)
	assert.Equal(t, "/work", cfg.WorkDir)
}
