package rundir

import (
	"os"
	"path/filepath"
)

const (
	metaFile     = "meta.json"
	configFile   = "config.json"
	outputFile   = "output.log"
	metricsFile  = "metrics.jsonl"
	systemFile   = "system.jsonl"
	artifactsDir = "artifacts"
)

// Dir is the path to one run's directory and its well-known children.
type Dir struct {
	root string
}

// Root joins dataDir and "runs" to form the parent of every run
// directory.
func Root(dataDir string) string {
	return filepath.Join(dataDir, "runs")
}

// Open returns the Dir for runID under dataDir without touching disk.
func Open(dataDir, runID string) *Dir {
	return &Dir{root: filepath.Join(Root(dataDir), runID)}
}

// Path is the run directory's own path.
func (d *Dir) Path() string { return d.root }

// Create makes the run directory and its artifacts/ subdirectory. It is
// idempotent: creating an already-existing run directory is not an
// error, since a retried job submission may reuse a run id only if the
// caller chooses to (spec §5 does not require run ids to be unique
// across retries of the same job, only within the store).
func (d *Dir) Create() error {
	return os.MkdirAll(d.ArtifactsDir(), 0o755)
}

func (d *Dir) MetaPath() string    { return filepath.Join(d.root, metaFile) }
func (d *Dir) ConfigPath() string  { return filepath.Join(d.root, configFile) }
func (d *Dir) OutputPath() string  { return filepath.Join(d.root, outputFile) }
func (d *Dir) MetricsPath() string { return filepath.Join(d.root, metricsFile) }
func (d *Dir) SystemPath() string  { return filepath.Join(d.root, systemFile) }
func (d *Dir) ArtifactsDir() string {
	return filepath.Join(d.root, artifactsDir)
}

// ListArtifacts returns the slash-separated paths of every file under
// artifacts/, relative to artifacts/ itself, walking into subdirectories
// so that a nested artifact is discoverable the same way getArtifact's
// wildcard route can fetch it.
func (d *Dir) ListArtifacts() ([]string, error) {
	root := d.ArtifactsDir()
	var names []string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return names, nil
}
