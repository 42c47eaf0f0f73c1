package domain

import "github.com/alessio/shellescape"

// Command is an argument vector; the first element names the program.
type Command []string

// Program returns the program name, or "" for an empty command.
func (c Command) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments after the program name.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// String renders the command as a shell-quoted line suitable for logs.
func (c Command) String() string {
	return shellescape.QuoteCommand(c)
}
