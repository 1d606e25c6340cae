package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMergeJSON_DeepMerge(t *testing.T) {
	base := map[string]interface{}{
		"a": float64(1),
		"nested": map[string]interface{}{
			"x": float64(1),
			"y": float64(2),
		},
	}
	overlay := map[string]interface{}{
		"nested": map[string]interface{}{
			"y": float64(99),
			"z": float64(3),
		},
		"b": "new",
	}
	merged := mergeJSON(base, overlay)

	nested := merged["nested"].(map[string]interface{})
	if nested["x"] != float64(1) {
		t.Fatalf("expected nested.x preserved, got %v", nested["x"])
	}
	if nested["y"] != float64(99) {
		t.Fatalf("expected nested.y overridden, got %v", nested["y"])
	}
	if nested["z"] != float64(3) {
		t.Fatalf("expected nested.z added, got %v", nested["z"])
	}
	if merged["b"] != "new" {
		t.Fatalf("expected top-level b added, got %v", merged["b"])
	}
}

func TestLoadCascadingProjectConfig_PrecedenceOrder(t *testing.T) {
	dir := t.TempDir()
	spoolDir := filepath.Join(dir, ".spool")
	os.MkdirAll(spoolDir, 0o755)

	os.WriteFile(filepath.Join(dir, "spool.json"), []byte(`{"goal": 1, "shared": "from-repo"}`), 0o644)
	os.WriteFile(filepath.Join(dir, ".spool.json"), []byte(`{"goal": 2}`), 0o644)
	os.WriteFile(filepath.Join(spoolDir, "config.json"), []byte(`{"goal": 3, "shared": "from-spooldir"}`), 0o644)

	ctx := ConfigContext{}
	cascade, err := LoadCascadingProjectConfig(ctx, dir, ".spool")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cascade.Merged["goal"] != float64(3) {
		t.Fatalf("expected highest-precedence goal=3, got %v", cascade.Merged["goal"])
	}
	if cascade.Merged["shared"] != "from-spooldir" {
		t.Fatalf("expected shared overridden by spool-dir config, got %v", cascade.Merged["shared"])
	}
}

func TestLoadProjectPathOverride_PrefersSpoolJSON(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "spool.json"), []byte(`{"projectPath": "/elsewhere"}`), 0o644)
	os.WriteFile(filepath.Join(dir, ".spool.json"), []byte(`{"projectPath": "/other"}`), 0o644)

	got, err := LoadProjectPathOverride(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/elsewhere" {
		t.Fatalf("expected spool.json override to win, got %q", got)
	}
}

func TestLoadJSONObject_IgnoresMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	os.WriteFile(path, []byte("not json"), 0o644)

	obj, err := loadJSONObject(path)
	if err != nil {
		t.Fatalf("expected malformed JSON to be ignored, not errored: %v", err)
	}
	if obj != nil {
		t.Fatalf("expected nil object for malformed JSON, got %v", obj)
	}
}
