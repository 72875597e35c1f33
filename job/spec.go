package job

// Spec is the submission payload of a job: the command to run and the
// metadata a caller attaches to it. Spec carries no delivery or lifecycle
// state — that belongs to Job.
//
// CommandArgv is executed as-is; no shell interpretation is performed.
// Workdir must be an absolute path; it becomes the child process's
// working directory.
//
// Config is a free-form object echoed verbatim into the run directory's
// config.json (see package rundir). It is opaque to whirr.
type Spec struct {
	Name        string
	CommandArgv []string
	Workdir     string
	Tags        []string
	Config      map[string]any
}
