// Package telemetry implements component J: a stable, salted per-project
// ID, a per-spool session ID, and two JSONL events (command_start,
// command_end) per invocation.
//
// Grounded on spec.md §4.10; the session ID itself is generated with
// github.com/google/uuid, the same library jra3-linear-fuse and
// theRebelliousNerd-codenerd use for similar per-run identifiers.
package telemetry

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/withakay/spool-go/internal/config"
	"github.com/withakay/spool-go/internal/fsio"
)

// Disabled reports whether SPOOL_DISABLE_LOGGING is truthy.
func Disabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SPOOL_DISABLE_LOGGING")))
	return v == "1" || v == "true" || v == "yes"
}

const saltFileName = "salt"

// projectSalt loads or creates the 32-byte salt stored once in the user
// config dir.
func projectSalt(ctx config.ConfigContext) ([]byte, error) {
	saltPath := filepath.Join(ctx.SpoolConfigDir(), saltFileName)

	if data, ok, err := fsio.ReadOptional(saltPath); err != nil {
		return nil, err
	} else if ok && len(data) == 32 {
		return data, nil
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating telemetry salt: %w", err)
	}
	if err := fsio.WriteAtomic(saltPath, salt, 0o600); err != nil {
		return nil, err
	}
	return salt, nil
}

// ProjectID computes hex(SHA-256(salt || 0x00 || canonicalProjectPath)).
func ProjectID(ctx config.ConfigContext, projectPath string) (string, error) {
	salt, err := projectSalt(ctx)
	if err != nil {
		return "", err
	}
	canonical, err := filepath.Abs(projectPath)
	if err != nil {
		canonical = projectPath
	}

	h := sha256.New()
	h.Write(salt)
	h.Write([]byte{0})
	h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// sessionRecord is the contents of <spool>/session.json.
type sessionRecord struct {
	SessionID string `json:"sessionId"`
	CreatedAt string `json:"createdAt"`
}

// SessionID loads or creates the per-spool-directory session ID stored in
// <spool>/session.json.
func SessionID(spoolDir string) (string, error) {
	path := filepath.Join(spoolDir, "session.json")

	if data, ok, err := fsio.ReadOptional(path); err != nil {
		return "", err
	} else if ok {
		var rec sessionRecord
		if err := json.Unmarshal(data, &rec); err == nil && rec.SessionID != "" {
			return rec.SessionID, nil
		}
	}

	rec := sessionRecord{
		SessionID: uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding session record: %w", err)
	}
	if err := fsio.WriteAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	return rec.SessionID, nil
}

// Event is one JSONL telemetry line.
type Event struct {
	Type       string `json:"type"`
	Command    string `json:"command"`
	Outcome    string `json:"outcome,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Recorder appends command_start/command_end events for one invocation.
type Recorder struct {
	ctx         config.ConfigContext
	projectID   string
	sessionID   string
	command     string
	startedAt   time.Time
	enabled     bool
}

// NewRecorder builds a Recorder for the given project and spool dir. If
// telemetry is disabled or any setup step fails, the returned Recorder is
// a harmless no-op (telemetry must never block a command).
func NewRecorder(projectPath, spoolDir, command string) *Recorder {
	if Disabled() {
		return &Recorder{enabled: false}
	}

	ctx, err := config.FromProcessEnv()
	if err != nil {
		return &Recorder{enabled: false}
	}
	projectID, err := ProjectID(ctx, projectPath)
	if err != nil {
		return &Recorder{enabled: false}
	}
	sessionID, err := SessionID(spoolDir)
	if err != nil {
		return &Recorder{enabled: false}
	}

	return &Recorder{
		ctx:       ctx,
		projectID: projectID,
		sessionID: sessionID,
		command:   command,
		startedAt: time.Now(),
		enabled:   true,
	}
}

func (r *Recorder) logPath() string {
	return filepath.Join(r.ctx.SpoolConfigDir(), "logs", "execution", "v1", "projects", r.projectID, "sessions", r.sessionID+".jsonl")
}

func (r *Recorder) append(ev Event) {
	if !r.enabled {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	path := r.logPath()
	os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(append(data, '\n'))
}

// Start records the command_start event.
func (r *Recorder) Start() {
	r.append(Event{Type: "command_start", Command: r.command, Timestamp: r.startedAt.UTC().Format(time.RFC3339)})
}

// End records the command_end event with the final outcome.
func (r *Recorder) End(outcome string) {
	r.append(Event{
		Type:       "command_end",
		Command:    r.command,
		Outcome:    outcome,
		DurationMs: time.Since(r.startedAt).Milliseconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
