package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// stdoutIsTTY reports whether stdout is an interactive terminal; progress
// output is decorated with ANSI bold only when it is, so redirected or
// piped output (CI logs, "install > log.txt") stays plain text.
func stdoutIsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func announce(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if stdoutIsTTY() {
		fmt.Printf("\x1b[1m%s\x1b[0m\n", msg)
		return
	}
	fmt.Println(msg)
}
