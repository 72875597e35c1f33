//go:build !linux

package internal

import "syscall"

// ProcAttr returns the SysProcAttr that makes a child process the leader
// of a new process group. Parent-death linkage (Pdeathsig) is a
// Linux-only facility; on other platforms, a worker crash leaves the
// child running until the Orphan Reaper's subsequent requeue-and-replay
// — this is the accepted risk documented in spec §4.4/§9.
func ProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// KillGroup sends sig to every process in pgid's process group.
func KillGroup(pgid int, sig syscall.Signal) error {
	return syscall.Kill(-pgid, sig)
}
