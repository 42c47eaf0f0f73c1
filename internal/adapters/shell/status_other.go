//go:build !unix

package shell

import "os"

func signalOf(_ *os.ProcessState) (string, bool) {
	return "", false
}
