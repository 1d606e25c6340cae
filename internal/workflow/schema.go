// Package workflow resolves a change's schema-driven artifact dependency
// graph: build order, per-artifact instructions, and apply-state.
//
// Grounded on spool-core/src/workflow/mod.rs, whose SchemaYaml/ArtifactYaml/
// ApplyYaml shapes this package reproduces verbatim in Go form.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSchemaName is used when a change does not declare a schema.
const DefaultSchemaName = "spec-driven"

// ArtifactYaml is one artifact entry in a schema.yaml file.
type ArtifactYaml struct {
	ID          string   `yaml:"id"`
	Generates   string   `yaml:"generates"`
	Description string   `yaml:"description,omitempty"`
	Template    string   `yaml:"template"`
	Instruction string   `yaml:"instruction,omitempty"`
	Requires    []string `yaml:"requires,omitempty"`
}

// ApplyYaml is the optional "apply" block of a schema.yaml file.
type ApplyYaml struct {
	Requires    []string `yaml:"requires,omitempty"`
	Tracks      string   `yaml:"tracks,omitempty"`
	Instruction string   `yaml:"instruction,omitempty"`
}

// SchemaYaml is the parsed contents of a schema.yaml file.
type SchemaYaml struct {
	Name        string         `yaml:"name"`
	Version     int            `yaml:"version,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Artifacts   []ArtifactYaml `yaml:"artifacts"`
	Apply       *ApplyYaml     `yaml:"apply,omitempty"`
}

// ArtifactByID returns the artifact with the given id, if present.
func (s SchemaYaml) ArtifactByID(id string) (ArtifactYaml, bool) {
	for _, a := range s.Artifacts {
		if a.ID == id {
			return a, true
		}
	}
	return ArtifactYaml{}, false
}

// SchemaSource records which of the two schema directories a resolved
// schema came from.
type SchemaSource int

const (
	SourcePackage SchemaSource = iota
	SourceUser
)

// ResolvedSchema is a schema together with the directory it was loaded
// from and which source won.
type ResolvedSchema struct {
	Schema    SchemaYaml
	SchemaDir string
	Source    SchemaSource
}

// ReadChangeSchema reads the schema: key out of a change's .spool.yaml,
// falling back to DefaultSchemaName when absent.
func ReadChangeSchema(changeDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(changeDir, ".spool.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSchemaName, nil
		}
		return "", fmt.Errorf("reading .spool.yaml: %w", err)
	}
	var doc struct {
		Schema string `yaml:"schema"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parsing .spool.yaml: %w", err)
	}
	if doc.Schema == "" {
		return DefaultSchemaName, nil
	}
	return doc.Schema, nil
}

// PackageSchemasDir returns the built-in schemas directory shipped next to
// the binary's install root.
func PackageSchemasDir(installRoot string) string {
	return filepath.Join(installRoot, "schemas")
}

// UserSchemasDir returns $XDG_DATA_HOME/spool/schemas or
// $HOME/.local/share/spool/schemas.
func UserSchemasDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "spool", "schemas")
	}
	home := homeDir()
	return filepath.Join(home, ".local", "share", "spool", "schemas")
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

// ResolveSchema implements the user-data-dir-over-package-dir resolution
// order: the user schemas dir takes precedence when schema.yaml exists
// there, otherwise the package dir is used.
func ResolveSchema(installRoot, name string) (ResolvedSchema, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultSchemaName
	}

	userDir := filepath.Join(UserSchemasDir(), name)
	if _, err := os.Stat(filepath.Join(userDir, "schema.yaml")); err == nil {
		schema, err := loadSchemaYaml(filepath.Join(userDir, "schema.yaml"))
		if err != nil {
			return ResolvedSchema{}, err
		}
		return ResolvedSchema{Schema: schema, SchemaDir: userDir, Source: SourceUser}, nil
	}

	pkgDir := filepath.Join(PackageSchemasDir(installRoot), name)
	if _, err := os.Stat(filepath.Join(pkgDir, "schema.yaml")); err == nil {
		schema, err := loadSchemaYaml(filepath.Join(pkgDir, "schema.yaml"))
		if err != nil {
			return ResolvedSchema{}, err
		}
		return ResolvedSchema{Schema: schema, SchemaDir: pkgDir, Source: SourcePackage}, nil
	}

	return ResolvedSchema{}, fmt.Errorf("schema %q not found in user or package schema directories", name)
}

func loadSchemaYaml(path string) (SchemaYaml, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SchemaYaml{}, fmt.Errorf("reading schema %s: %w", path, err)
	}
	var schema SchemaYaml
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return SchemaYaml{}, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	return schema, nil
}

// ListAvailableSchemas lists schema names visible in either directory,
// user schemas first.
func ListAvailableSchemas(installRoot string) ([]string, error) {
	seen := map[string]bool{}
	var names []string

	add := func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(dir, e.Name(), "schema.yaml")); err != nil {
				continue
			}
			if !seen[e.Name()] {
				seen[e.Name()] = true
				names = append(names, e.Name())
			}
		}
		return nil
	}

	if err := add(UserSchemasDir()); err != nil {
		return nil, err
	}
	if err := add(PackageSchemasDir(installRoot)); err != nil {
		return nil, err
	}
	return names, nil
}
