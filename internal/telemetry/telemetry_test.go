package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/withakay/spool-go/internal/config"
)

func TestProjectID_StableAcrossCalls(t *testing.T) {
	configHome := t.TempDir()
	ctx := config.ConfigContext{XDGConfigHome: configHome, HomeDir: t.TempDir()}

	id1, err := ProjectID(ctx, "/some/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := ProjectID(ctx, "/some/project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected stable project id, got %q then %q", id1, id2)
	}
	if len(id1) != 64 {
		t.Fatalf("expected a 64-char hex sha256, got %d chars", len(id1))
	}
}

func TestProjectID_DiffersByPath(t *testing.T) {
	configHome := t.TempDir()
	ctx := config.ConfigContext{XDGConfigHome: configHome, HomeDir: t.TempDir()}

	idA, _ := ProjectID(ctx, "/project/a")
	idB, _ := ProjectID(ctx, "/project/b")
	if idA == idB {
		t.Fatal("expected different project ids for different paths")
	}
}

func TestSessionID_PersistsAcrossCalls(t *testing.T) {
	spoolDir := t.TempDir()

	id1, err := SessionID(spoolDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := SessionID(spoolDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected persisted session id, got %q then %q", id1, id2)
	}
}

func TestDisabled_RespectsEnvVar(t *testing.T) {
	os.Setenv("SPOOL_DISABLE_LOGGING", "true")
	defer os.Unsetenv("SPOOL_DISABLE_LOGGING")
	if !Disabled() {
		t.Fatal("expected telemetry to be disabled")
	}
}

func TestRecorder_WritesEvents(t *testing.T) {
	os.Unsetenv("SPOOL_DISABLE_LOGGING")
	configHome := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", configHome)
	defer os.Unsetenv("XDG_CONFIG_HOME")

	spoolDir := t.TempDir()
	rec := NewRecorder(t.TempDir(), spoolDir, "validate")
	rec.Start()
	rec.End("success")

	entries, err := os.ReadDir(filepath.Join(configHome, "spool", "logs", "execution", "v1", "projects"))
	if err != nil {
		t.Fatalf("expected telemetry log tree to exist: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one project directory")
	}
}
