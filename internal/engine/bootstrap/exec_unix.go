//go:build unix

package bootstrap

import "syscall"

func reexec(path string, argv []string, env []string) error {
	return syscall.Exec(path, argv, env)
}
