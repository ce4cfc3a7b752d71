//go:build !windows

package taskpool

import "golang.org/x/sys/unix"

// minOpenFiles is the soft RLIMIT_NOFILE floor RaiseFileLimit sets. A
// k-way merge opens one file descriptor per input run; with many small
// runs the default soft limit is easy to exhaust.
const minOpenFiles = 4096

// RaiseFileLimit raises the process's soft RLIMIT_NOFILE to minOpenFiles
// if the hard limit allows it. It is best-effort: a failure to raise the
// limit is not fatal, callers may proceed and let a later open(2) fail
// if the limit really was too low. No code path in the engine calls it;
// merges run under the limit the process inherited.
func RaiseFileLimit() error {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return err
	}
	if rlim.Cur >= minOpenFiles {
		return nil
	}
	if rlim.Max < minOpenFiles {
		rlim.Cur = rlim.Max
	} else {
		rlim.Cur = minOpenFiles
	}
	return unix.Setrlimit(unix.RLIMIT_NOFILE, &rlim)
}
