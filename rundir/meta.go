package rundir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"whirr/job"
)

// Meta is the JSON snapshot written to meta.json: enough of a job's
// identity and lifecycle to reconstruct a RunIndex entry without
// touching the store (spec §5, §6.1 ListRuns).
type Meta struct {
	RunID      string     `json:"run_id"`
	JobID      int64      `json:"job_id"`
	Name       string     `json:"name"`
	Tags       []string   `json:"tags,omitempty"`
	Status     job.Status `json:"status"`
	WorkerID   *string    `json:"worker_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// DurationSeconds is FinishedAt - StartedAt, set only once the run
	// has reached a terminal status (spec §6.1).
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	// ConfigFile is the filename holding the run's submitted
	// configuration, usually "config.json" (spec §6.1).
	ConfigFile string `json:"config_file,omitempty"`

	ExitCode *int `json:"exit_code,omitempty"`
}

// WriteMeta serializes m to meta.json. Callers write it once at run
// start and overwrite it at each state transition; it is never
// appended to, unlike metrics.jsonl and system.jsonl.
func (d *Dir) WriteMeta(m Meta) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := os.WriteFile(d.MetaPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

// ReadMeta loads meta.json.
func (d *Dir) ReadMeta() (Meta, error) {
	data, err := os.ReadFile(d.MetaPath())
	if err != nil {
		return Meta{}, fmt.Errorf("read meta: %w", err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return Meta{}, fmt.Errorf("decode meta %s: %w", d.MetaPath(), err)
	}
	return m, nil
}

// WriteConfig serializes a job's submitted Config map to config.json,
// verbatim, once at run creation.
func (d *Dir) WriteConfig(config map[string]any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(d.ConfigPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
