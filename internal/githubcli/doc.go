// Package githubcli wraps the GitHub CLI for release replies.
//
// It reads the latest release, lists issues and posts issue comments through
// gh, decoding `--json` output into typed values. Every call goes through an
// execshell executor so tests can substitute recorded responses.
package githubcli
