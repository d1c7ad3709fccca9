package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// scriptResourcesDir is the reserved folder inside the library that holds
// shared tooling configuration and data files.
const scriptResourcesDir = "#Script Resources"

// managerPreferences mirrors the companion manager's data/preferences.json.
type managerPreferences struct {
	Paths struct {
		ScoresDir string `json:"scores_dir"`
	} `json:"paths"`
}

// managerDefaults mirrors the companion manager's config/default.yaml.
type managerDefaults struct {
	Paths struct {
		ScoresDir string `yaml:"scores_dir"`
	} `yaml:"paths"`
}

// scriptResourcesConfig mirrors "#Script Resources/config.json" inside a
// candidate library root, which may redirect to a different location
// (e.g. a shared library path).
type scriptResourcesConfig struct {
	ScoresDirectory string `json:"scores_directory"`
}

// ResolveLibraryRoot discovers the score library root, trying in order:
//
//  1. the companion manager's paths.scores_dir (data/preferences.json, then
//     config/default.yaml under library.manager_path), with an optional
//     redirect from "#Script Resources/config.json" inside that root
//  2. library.root_path from this application's own config
//
// Every source that does not yield an existing directory is skipped without
// error; only exhausting all sources fails.
func (c *Config) ResolveLibraryRoot() (string, error) {
	if root := c.rootFromManager(); root != "" {
		if override := rootFromScriptResources(root); override != "" {
			return override, nil
		}
		return root, nil
	}

	if root := existingDir(c.Library.RootPath); root != "" {
		return root, nil
	}

	return "", fmt.Errorf("could not discover score library: set library.root_path or library.manager_path in the config file")
}

// DataDir returns the directory holding the practice status store and the
// structure map, shared with the rest of the library tooling.
func DataDir(libraryRoot string) string {
	return filepath.Join(libraryRoot, scriptResourcesDir, "data")
}

// rootFromManager reads the companion manager's configured scores directory,
// preferring user preferences over shipped defaults.
func (c *Config) rootFromManager() string {
	managerPath := existingDir(c.Library.ManagerPath)
	if managerPath == "" {
		return ""
	}

	// preferences.json carries user overrides
	prefsPath := filepath.Join(managerPath, "data", "preferences.json")
	if data, err := os.ReadFile(prefsPath); err == nil {
		var prefs managerPreferences
		if err := json.Unmarshal(data, &prefs); err == nil {
			if root := existingDir(prefs.Paths.ScoresDir); root != "" {
				return root
			}
		}
	}

	defaultsPath := filepath.Join(managerPath, "config", "default.yaml")
	if data, err := os.ReadFile(defaultsPath); err == nil {
		var defaults managerDefaults
		if err := yaml.Unmarshal(data, &defaults); err == nil {
			if root := existingDir(defaults.Paths.ScoresDir); root != "" {
				return root
			}
		}
	}

	return ""
}

// rootFromScriptResources checks a candidate root's "#Script Resources"
// config for a redirect to the real scores directory.
func rootFromScriptResources(candidateRoot string) string {
	configPath := filepath.Join(candidateRoot, scriptResourcesDir, "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return ""
	}
	var src scriptResourcesConfig
	if err := json.Unmarshal(data, &src); err != nil {
		return ""
	}
	return existingDir(src.ScoresDirectory)
}

// existingDir expands a leading "~" and returns the path only if it is an
// existing directory.
func existingDir(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		path = filepath.Join(home, path[1:])
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return ""
	}
	return path
}
