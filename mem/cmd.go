package mem

import (
	"context"
	"io"
	"strconv"
	"strings"

	"lesiw.io/fs"
	"lesiw.io/zeros"
)

// cmd is one invocation of a built-in command.
type cmd struct {
	ctx    context.Context
	sys    *System
	args   []string
	stdin  io.Reader
	stdout io.Writer
}

type builtin func(*cmd) int

var builtins zeros.Map[string, builtin]

func init() {
	builtins.Set("cat", catCommand)
	builtins.Set("echo", echoCommand)
	builtins.Set("exit", exitCommand)
	builtins.Set("false", func(*cmd) int { return 1 })
	builtins.Set("tee", teeCommand)
	builtins.Set("tr", trCommand)
	builtins.Set("true", func(*cmd) int { return 0 })
}

// run executes c and returns its exit status.
func run(c *cmd) int {
	if len(c.args) == 0 {
		return 0
	}
	fn, ok := builtins.CheckGet(c.args[0])
	if !ok {
		return 127
	}
	return fn(c)
}

func echoCommand(c *cmd) int {
	line := strings.Join(c.args[1:], " ") + "\n"
	if _, err := io.WriteString(c.stdout, line); err != nil {
		return 1
	}
	return 0
}

func catCommand(c *cmd) int {
	// No args: read from stdin.
	if len(c.args) == 1 {
		if _, err := io.Copy(c.stdout, c.stdin); err != nil {
			return 1
		}
		return 0
	}
	code := 0
	for _, name := range c.args[1:] {
		if name == "-" {
			if _, err := io.Copy(c.stdout, c.stdin); err != nil {
				return 1
			}
			continue
		}
		data, err := readFile(c.ctx, c.sys.fsys, name)
		if err != nil {
			code = 1
			continue
		}
		if _, err := c.stdout.Write(data); err != nil {
			return 1
		}
	}
	return code
}

func teeCommand(c *cmd) int {
	writers := []io.Writer{c.stdout}
	closers := make([]io.Closer, 0, len(c.args)-1)
	defer func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}()
	for _, name := range c.args[1:] {
		fw, err := fs.Create(c.ctx, c.sys.fsys, name)
		if err != nil {
			return 1
		}
		writers = append(writers, fw)
		closers = append(closers, fw)
	}
	if _, err := io.Copy(io.MultiWriter(writers...), c.stdin); err != nil {
		return 1
	}
	return 0
}

func exitCommand(c *cmd) int {
	if len(c.args) < 2 {
		return 0
	}
	code, err := strconv.Atoi(c.args[1])
	if err != nil {
		return 2
	}
	return code & 0xff
}
