package bootstrap

// SetExec replaces the function used to re-execute the program.
func (b *Bootstrapper) SetExec(fn func(path string, argv []string, env []string) error) {
	b.exec = fn
}
