package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings_Precedence(t *testing.T) {
	home := writeConfig(t, t.TempDir(), `
divider: xml-tag
sort: size
output: copy
profiles:
  default:
    jobs: 2
  review:
    ext: [go, md]
    follow_links: false
`)
	local := writeConfig(t, t.TempDir(), `
sort: mtime
max-size: 1024
profiles:
  review:
    clip: "10:2"
`)
	missing := filepath.Join(t.TempDir(), configFileName)

	s, err := loadSettings([]string{home, local, missing}, "")
	require.NoError(t, err)
	assert.Equal(t, settings{
		"divider":  "xml-tag",
		"sort":     "mtime",
		"output":   "copy",
		"max-size": "1024",
		"jobs":     "2",
	}, s)

	s, err = loadSettings([]string{home, local}, "review")
	require.NoError(t, err)
	assert.Equal(t, "go,md", s["ext"])
	assert.Equal(t, "false", s["follow-links"])
	assert.Equal(t, "10:2", s["clip"])
	assert.NotContains(t, s, "jobs")

	_, err = loadSettings([]string{home, local}, "nope")
	assert.Error(t, err)
}

func TestLoadSettings_Invalid(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "divider: [unclosed\n")
	_, err := loadSettings([]string{path}, "")
	assert.Error(t, err)

	path = writeConfig(t, t.TempDir(), "exclude:\n  nested: {a: b}\n")
	_, err = loadSettings([]string{path}, "")
	assert.Error(t, err)
}

func TestApplySettings(t *testing.T) {
	cmd := newRootCmd(nil, nil)
	require.NoError(t, cmd.ParseFlags([]string{"--divider", "equals"}))

	err := applySettings(cmd, settings{
		"divider": "xml-tag",
		"sort":    "size",
		"exclude": "vendor/,dist/",
		"output":  "copy",
	})
	require.NoError(t, err)

	f := cmd.Flags()
	divider, _ := f.GetString("divider")
	sortKey, _ := f.GetString("sort")
	exclude, _ := f.GetStringSlice("exclude")
	assert.Equal(t, "equals", divider)
	assert.Equal(t, "size", sortKey)
	assert.Equal(t, []string{"vendor/", "dist/"}, exclude)

	assert.Error(t, applySettings(newRootCmd(nil, nil), settings{"jobs": "many"}))
	assert.Error(t, applySettings(newRootCmd(nil, nil), settings{"profile": "x"}))
}

func TestConfigFilePaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	work := t.TempDir()
	assert.Equal(t, []string{
		filepath.Join(home, configFileName),
		filepath.Join(work, configFileName),
	}, configFilePaths(work))
	assert.Equal(t, []string{filepath.Join(home, configFileName)}, configFilePaths(home))
}
