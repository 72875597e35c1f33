//go:build linux

package internal

import "syscall"

// ProcAttr returns the SysProcAttr that makes a child process the leader
// of a new process group and arranges for it to receive SIGKILL if the
// supervising process dies first (spec §4.2's parent-death linkage).
// Linux exposes Pdeathsig directly; other platforms fall back to
// process-group isolation alone (see pgroup_other.go) and document that
// the Orphan Reaper is the sole recourse there.
func ProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

// KillGroup sends sig to every process in pgid's process group.
func KillGroup(pgid int, sig syscall.Signal) error {
	return syscall.Kill(-pgid, sig)
}
