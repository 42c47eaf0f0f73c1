//go:build unix

package shell

import (
	"os"
	"syscall"
)

// signalOf returns the name of the signal that terminated the process, if any.
func signalOf(ps *os.ProcessState) (string, bool) {
	if ps == nil {
		return "", false
	}
	ws, ok := ps.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return "", false
	}
	return ws.Signal().String(), true
}
