//go:build !windows

package supervisor

import (
	"os"
	"syscall"
)

// sysProcAttr places the child in its own process group so terminal
// signals aimed at the controller do not reach it, and so a detached
// child survives the controller's exit.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// terminate asks the child to exit gracefully.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
