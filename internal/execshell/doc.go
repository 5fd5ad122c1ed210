// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging, typed failures and
// lifecycle observers. OSCommandRunner is the os/exec backed default used to
// run git and gh; tests substitute recording runners.
package execshell
