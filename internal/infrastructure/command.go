package infrastructure

import "strings"

// shellSpecialChars are characters that change meaning in a POSIX shell
const shellSpecialChars = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// Command is a structured process invocation: a resolved binary and its argv.
// It is never passed through a shell.
type Command struct {
	Path string
	Args []string
}

// NewCommand creates a command for the given binary and arguments
func NewCommand(path string, args ...string) Command {
	return Command{Path: path, Args: append([]string(nil), args...)}
}

// With returns a copy of the command with extra arguments appended
func (c Command) With(args ...string) Command {
	out := Command{Path: c.Path, Args: make([]string, 0, len(c.Args)+len(args))}
	out.Args = append(out.Args, c.Args...)
	out.Args = append(out.Args, args...)
	return out
}

// String renders the command as a copy-pasteable shell line for logs
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(quoteArg(c.Path))
	for _, arg := range c.Args {
		b.WriteByte(' ')
		b.WriteString(quoteArg(arg))
	}
	return b.String()
}

// quoteArg single-quotes s when it contains shell metacharacters.
// Embedded single quotes become '"'"'.
func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecialChars) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
