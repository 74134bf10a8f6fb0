//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// configureProcess puts the analyzer in its own process group so a timeout also
// kills whatever it spawned.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
