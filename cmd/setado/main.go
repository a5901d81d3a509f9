// Command setado is a personal multi-project task tracker.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"setado/internal/models"
	"setado/internal/settings"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	err  error
}

func (e *exitErr) Error() string { return e.err.Error() }

func (e *exitErr) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitErr{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func systemError(err error) error {
	return &exitErr{code: exitSysError, err: err}
}

// classify tags err as a user or system failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitErr
	if errors.As(err, &ee) {
		return err
	}
	if models.IsValidation(err) || errors.Is(err, settings.ErrInvalid) {
		return &exitErr{code: exitUserError, err: err}
	}
	return systemError(err)
}

// exitCode defaults to a user error; cobra's own flag and argument errors
// are not tagged.
func exitCode(err error) int {
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = systemError(fmt.Errorf("close database: %w", cerr))
	}
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}
