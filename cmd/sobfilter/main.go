package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var errStdinIsTerminal = errors.New("cannot read from STDIN. This command should be run as a git message filter")

func main() {
	if err := requireStdin(os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// requireStdin verifies that the commit message is piped into the process instead of being typed
// into a terminal.
func requireStdin(stdin *os.File) error {
	stat, err := stdin.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", errStdinIsTerminal, err)
	}

	if stat.Mode()&os.ModeCharDevice != 0 {
		return errStdinIsTerminal
	}

	return nil
}

// run executes the filter and returns the exit code of the process. Any error is reported on
// stderr with an "ERROR: " prefix.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := newApp()
	app.Reader = stdin
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	return 0
}
