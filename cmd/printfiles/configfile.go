package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configFileName = ".printfiles.yaml"

const defaultProfile = "default"

// outputKey is the config setting holding the default output mode. It has no
// flag of its own.
const outputKey = "output"

// configFile mirrors .printfiles.yaml. Top-level keys are flag names; dashes
// and underscores are interchangeable.
type configFile struct {
	Settings map[string]any            `yaml:",inline"`
	Profiles map[string]map[string]any `yaml:"profiles"`
}

// settings is a flattened set of flag values read from config files.
type settings map[string]string

func readConfigFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// configFilePaths lists the files consulted, lowest precedence first.
func configFilePaths(workDir string) []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, configFileName))
	}
	local := filepath.Join(workDir, configFileName)
	if len(paths) == 0 || !samePath(paths[0], local) {
		paths = append(paths, local)
	}
	return paths
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// loadSettings merges the top-level keys of every file, then the selected
// profile of every file. An explicitly named profile must exist somewhere.
func loadSettings(paths []string, profile string) (settings, error) {
	var files []*configFile
	var sources []string
	for _, path := range paths {
		cfg, err := readConfigFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		files = append(files, cfg)
		sources = append(sources, path)
	}

	out := settings{}
	for i, cfg := range files {
		if err := out.merge(cfg.Settings, sources[i]); err != nil {
			return nil, err
		}
	}

	name := profile
	if name == "" {
		name = defaultProfile
	}
	found := false
	for i, cfg := range files {
		prof, ok := cfg.Profiles[name]
		if !ok {
			continue
		}
		found = true
		if err := out.merge(prof, sources[i]); err != nil {
			return nil, err
		}
	}
	if profile != "" && !found {
		return nil, fmt.Errorf("profile %q not found in %s", profile, strings.Join(paths, " or "))
	}
	return out, nil
}

func (s settings) merge(values map[string]any, source string) error {
	for key, raw := range values {
		name := strings.ReplaceAll(strings.ToLower(key), "_", "-")
		value, err := settingString(raw)
		if err != nil {
			return fmt.Errorf("invalid value for %q in %s: %w", key, source, err)
		}
		s[name] = value
	}
	return nil
}

func settingString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, err := settingString(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	}
	return "", fmt.Errorf("unsupported type %T", raw)
}

// applySettings sets every flag the user did not pass on the command line.
func applySettings(cmd *cobra.Command, s settings) error {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	flags := cmd.Flags()
	for _, name := range names {
		if name == outputKey {
			continue
		}
		flag := flags.Lookup(name)
		if flag == nil || name == "profile" || name == "set-default-output" {
			return fmt.Errorf("unknown setting %q in %s", name, configFileName)
		}
		if flag.Changed {
			continue
		}
		if err := flags.Set(name, s[name]); err != nil {
			return fmt.Errorf("invalid %s setting %q: %w", name, s[name], err)
		}
	}
	return nil
}
