//go:build windows

package supervisor

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

// terminate stops the child. Windows has no SIGTERM equivalent for
// console children spawned this way, so the stop is immediate.
func terminate(p *os.Process) error {
	return p.Kill()
}
