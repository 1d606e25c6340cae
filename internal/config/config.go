// Package config implements the configuration cascade (component I):
// a ConfigContext built once from the process environment, and a
// deep-merge across four precedence-ordered JSON sources plus a
// project-path override that must not itself consult the cascade.
//
// Grounded on spool-core/src/config/mod.rs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// SpoolDirName is the default name of the per-project knowledge base
// directory.
const SpoolDirName = ".spool"

// ConfigContext carries the three environment-derived paths every command
// needs, built once per invocation. No ambient globals are consulted after
// this point.
type ConfigContext struct {
	XDGConfigHome string
	HomeDir       string
	ProjectDir    string // from $PROJECT_DIR, resolved relative to cwd if relative
}

// FromProcessEnv builds a ConfigContext from the current process
// environment and working directory.
func FromProcessEnv() (ConfigContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return ConfigContext{}, fmt.Errorf("getting working directory: %w", err)
	}

	ctx := ConfigContext{
		XDGConfigHome: os.Getenv("XDG_CONFIG_HOME"),
		HomeDir:       homeDir(),
	}

	if pd := os.Getenv("PROJECT_DIR"); pd != "" {
		if filepath.IsAbs(pd) {
			ctx.ProjectDir = pd
		} else {
			ctx.ProjectDir = filepath.Join(cwd, pd)
		}
	}

	return ctx, nil
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		if h := os.Getenv("USERPROFILE"); h != "" {
			return h
		}
	}
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

// SpoolConfigDir returns the directory holding the global (user-level)
// config and telemetry assets: on Windows, $APPDATA (or XDG/home
// fallback) joined "spool"; elsewhere $XDG_CONFIG_HOME (or
// $HOME/.config) joined "spool".
func (c ConfigContext) SpoolConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "spool")
		}
	}
	if c.XDGConfigHome != "" {
		return filepath.Join(c.XDGConfigHome, "spool")
	}
	return filepath.Join(c.HomeDir, ".config", "spool")
}

// GlobalConfigPath returns the path to the global config.json.
func (c ConfigContext) GlobalConfigPath() string {
	return filepath.Join(c.SpoolConfigDir(), "config.json")
}

// FindProjectRoot walks upward from the current directory looking for a
// spool directory (SpoolDirName) or either repo-root override file
// (spool.json / .spool.json).
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, SpoolDirName)); err == nil {
			return dir, nil
		}
		if fileExists(filepath.Join(dir, "spool.json")) || fileExists(filepath.Join(dir, ".spool.json")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found. Run 'spool init' to initialize a project", SpoolDirName)
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// loadJSONObject reads path and decodes it as a JSON object. A missing
// file returns (nil, nil); a file that is present but fails to parse, or
// parses to something other than a JSON object, is ignored with a
// warning on stderr rather than treated as fatal — a single malformed
// cascade source should not break every command.
func loadJSONObject(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring %s: invalid JSON: %v\n", path, err)
		return nil, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		fmt.Fprintf(os.Stderr, "warning: ignoring %s: expected a JSON object\n", path)
		return nil, nil
	}
	return obj, nil
}

// mergeJSON deep-merges overlay into base: nested objects merge key by
// key (recursively); any other value type in overlay replaces base's
// value outright.
func mergeJSON(base, overlay map[string]interface{}) map[string]interface{} {
	if base == nil {
		base = map[string]interface{}{}
	}
	result := make(map[string]interface{}, len(base))
	for k, v := range base {
		result[k] = v
	}
	for k, overlayVal := range overlay {
		baseVal, exists := result[k]
		if !exists {
			result[k] = overlayVal
			continue
		}
		baseObj, baseIsObj := baseVal.(map[string]interface{})
		overlayObj, overlayIsObj := overlayVal.(map[string]interface{})
		if baseIsObj && overlayIsObj {
			result[k] = mergeJSON(baseObj, overlayObj)
		} else {
			result[k] = overlayVal
		}
	}
	return result
}

// LoadProjectPathOverride reads a "projectPath" key from, in order,
// <projectRoot>/spool.json then <projectRoot>/.spool.json — deliberately
// NOT consulting the spool-dir or $PROJECT_DIR config sources, to avoid a
// cycle through the override this function itself computes.
func LoadProjectPathOverride(projectRoot string) (string, error) {
	for _, name := range []string{"spool.json", ".spool.json"} {
		obj, err := loadJSONObject(filepath.Join(projectRoot, name))
		if err != nil {
			return "", err
		}
		if obj == nil {
			continue
		}
		if v, ok := obj["projectPath"].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", nil
}

// CascadingConfig is the merged result of the four-source cascade plus a
// record of which sources actually contributed.
type CascadingConfig struct {
	Merged     map[string]interface{}
	LoadedFrom []string
}

// projectConfigPaths builds the four cascade source paths in increasing
// precedence order.
func projectConfigPaths(ctx ConfigContext, projectRoot, spoolDirName string) []string {
	paths := []string{
		filepath.Join(projectRoot, "spool.json"),
		filepath.Join(projectRoot, ".spool.json"),
		filepath.Join(projectRoot, spoolDirName, "config.json"),
	}
	if ctx.ProjectDir != "" {
		paths = append(paths, filepath.Join(ctx.ProjectDir, "config.json"))
	}
	return paths
}

// LoadCascadingProjectConfig merges the four sources of §4.9 in
// increasing precedence order.
func LoadCascadingProjectConfig(ctx ConfigContext, projectRoot, spoolDirName string) (CascadingConfig, error) {
	merged := map[string]interface{}{}
	var loadedFrom []string

	for _, path := range projectConfigPaths(ctx, projectRoot, spoolDirName) {
		obj, err := loadJSONObject(path)
		if err != nil {
			return CascadingConfig{}, err
		}
		if obj == nil {
			continue
		}
		merged = mergeJSON(merged, obj)
		loadedFrom = append(loadedFrom, path)
	}

	return CascadingConfig{Merged: merged, LoadedFrom: loadedFrom}, nil
}

// LoadGlobalConfig loads the user-level config.json, returning an empty
// object if it does not exist.
func LoadGlobalConfig(ctx ConfigContext) (map[string]interface{}, error) {
	obj, err := loadJSONObject(ctx.GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]interface{}{}
	}
	return obj, nil
}

// Config is the resolved, typed view of the merged cascade that the rest
// of the module consumes.
type Config struct {
	ProjectRoot     string
	SpoolDirName    string
	DefaultSchema   string
	StrictByDefault bool
	Settings        map[string]interface{}
	LoadedFrom      []string
}

// Load resolves the project-path override, then loads and merges the full
// cascade, producing a typed Config.
func Load(ctx ConfigContext, projectRoot string) (*Config, error) {
	spoolDirName := SpoolDirName

	override, err := LoadProjectPathOverride(projectRoot)
	if err != nil {
		return nil, err
	}
	if override != "" {
		projectRoot = override
	}

	cascade, err := LoadCascadingProjectConfig(ctx, projectRoot, spoolDirName)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectRoot:   projectRoot,
		SpoolDirName:  spoolDirName,
		DefaultSchema: "spec-driven",
		Settings:      cascade.Merged,
		LoadedFrom:    cascade.LoadedFrom,
	}

	if v, ok := cascade.Merged["spoolDir"].(string); ok && v != "" {
		cfg.SpoolDirName = v
	}
	if v, ok := cascade.Merged["defaultSchema"].(string); ok && v != "" {
		cfg.DefaultSchema = v
	}
	if v, ok := cascade.Merged["strict"].(bool); ok {
		cfg.StrictByDefault = v
	}

	return cfg, nil
}

// SpoolDir returns the absolute path to the project's spool directory.
func (c *Config) SpoolDir() string {
	return filepath.Join(c.ProjectRoot, c.SpoolDirName)
}

// ModulesDir, ChangesDir and SpecsDir return the canonical entity
// directories under the spool dir.
func (c *Config) ModulesDir() string { return filepath.Join(c.SpoolDir(), "modules") }
func (c *Config) ChangesDir() string { return filepath.Join(c.SpoolDir(), "changes") }
func (c *Config) SpecsDir() string   { return filepath.Join(c.SpoolDir(), "specs") }
