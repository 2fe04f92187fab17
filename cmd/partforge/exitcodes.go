package main

import "os"

// Exit codes. Spec only requires zero on success and non-zero otherwise;
// these distinguish usage mistakes from failures raised by the core for
// scripts that want to branch on them.
const (
	ExitSuccess  = 0
	ExitUsage    = 1
	ExitUserErr  = 2
	ExitInternal = 3
)

func exitWithCode(code int) {
	os.Exit(code)
}
