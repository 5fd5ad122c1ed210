package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/fixreply/internal/execshell"
)

const (
	gitRemoteSubcommandConstant       = "remote"
	gitGetURLSubcommandConstant       = "get-url"
	gitLogSubcommandConstant          = "log"
	gitDiffTreeSubcommandConstant     = "diff-tree"
	gitShowSubcommandConstant         = "show"
	gitNoCommitIDFlagConstant         = "--no-commit-id"
	gitNameOnlyFlagConstant           = "--name-only"
	gitRecursiveFlagConstant          = "-r"
	gitZeroContextFlagConstant        = "-U0"
	gitEmptyPrettyFormatFlagConstant  = "--pretty=format:"
	gitCommitLogPrettyFormatConstant  = "--pretty=format:%H|%s"
	gitPathSeparatorArgumentConstant  = "--"
	gitRangeSeparatorConstant         = ".."
	gitHeadReferenceConstant          = "HEAD"
	commitFieldSeparatorConstant      = "|"
	lineSeparatorConstant             = "\n"
	shortHashLengthConstant           = 7
	defaultRemoteNameConstant         = "origin"
	executorNotConfiguredMessage      = "git executor not configured"
	referenceFieldNameConstant        = "reference"
	revisionFieldNameConstant         = "revision"
	pathFieldNameConstant             = "path"
	invalidInputErrorTemplateConstant = "%s: %s"
)

// GitExecutor is the subset of execshell.ShellExecutor used for repository inspection.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Commit is a single entry of linear history since a release.
type Commit struct {
	Hash      string
	ShortHash string
	Message   string
	Files     []string
}

// InvalidInputError reports a missing or malformed argument.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// ErrExecutorNotConfigured indicates the history reader was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessage)

// HistoryReader reads remotes, commits and diffs from a local repository.
type HistoryReader struct {
	executor         GitExecutor
	workingDirectory string
}

// NewHistoryReader constructs a HistoryReader operating in workingDirectory (empty means the process directory).
func NewHistoryReader(executor GitExecutor, workingDirectory string) (*HistoryReader, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &HistoryReader{executor: executor, workingDirectory: strings.TrimSpace(workingDirectory)}, nil
}

// RemoteURL returns the URL configured for remoteName.
func (reader *HistoryReader) RemoteURL(executionContext context.Context, remoteName string) (string, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		trimmedRemoteName = defaultRemoteNameConstant
	}

	executionResult, executionError := reader.run(executionContext, gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, trimmedRemoteName)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// CommitsSince lists commits reachable from HEAD but not from reference, newest first.
// Changed files are not populated; see ChangedFiles.
func (reader *HistoryReader) CommitsSince(executionContext context.Context, reference string) ([]Commit, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return nil, InvalidInputError{FieldName: referenceFieldNameConstant, Message: requiredValueMessageConstant}
	}

	revisionRange := trimmedReference + gitRangeSeparatorConstant + gitHeadReferenceConstant
	executionResult, executionError := reader.run(executionContext, gitLogSubcommandConstant, revisionRange, gitCommitLogPrettyFormatConstant)
	if executionError != nil {
		return nil, executionError
	}
	return ParseCommitLog(executionResult.StandardOutput), nil
}

// ChangedFiles lists the paths touched by revision.
func (reader *HistoryReader) ChangedFiles(executionContext context.Context, revision string) ([]string, error) {
	trimmedRevision := strings.TrimSpace(revision)
	if len(trimmedRevision) == 0 {
		return nil, InvalidInputError{FieldName: revisionFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := reader.run(executionContext, gitDiffTreeSubcommandConstant, gitNoCommitIDFlagConstant, gitNameOnlyFlagConstant, gitRecursiveFlagConstant, trimmedRevision)
	if executionError != nil {
		return nil, executionError
	}
	return splitNonEmptyLines(executionResult.StandardOutput), nil
}

// ChangedLineRange reports the span of lines revision added or modified in path.
func (reader *HistoryReader) ChangedLineRange(executionContext context.Context, revision string, path string) (LineRange, error) {
	trimmedRevision := strings.TrimSpace(revision)
	if len(trimmedRevision) == 0 {
		return DefaultLineRange(), InvalidInputError{FieldName: revisionFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(path)) == 0 {
		return DefaultLineRange(), InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := reader.run(executionContext, gitShowSubcommandConstant, trimmedRevision, gitPathSeparatorArgumentConstant, path, gitZeroContextFlagConstant, gitEmptyPrettyFormatFlagConstant)
	if executionError != nil {
		return DefaultLineRange(), executionError
	}
	return ParseChangedLineRange(executionResult.StandardOutput), nil
}

func (reader *HistoryReader) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return reader.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: reader.workingDirectory,
	})
}

// ParseCommitLog decodes `git log --pretty=format:%H|%s` output.
func ParseCommitLog(logOutput string) []Commit {
	commits := make([]Commit, 0)
	for _, line := range splitNonEmptyLines(logOutput) {
		hash, message, _ := strings.Cut(line, commitFieldSeparatorConstant)
		hash = strings.TrimSpace(hash)
		if len(hash) == 0 {
			continue
		}
		commits = append(commits, Commit{
			Hash:      hash,
			ShortHash: shortenHash(hash),
			Message:   message,
		})
	}
	return commits
}

func shortenHash(hash string) string {
	if len(hash) <= shortHashLengthConstant {
		return hash
	}
	return hash[:shortHashLengthConstant]
}

func splitNonEmptyLines(output string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.TrimSpace(output), lineSeparatorConstant) {
		trimmedLine := strings.TrimRight(line, "\r")
		if len(strings.TrimSpace(trimmedLine)) == 0 {
			continue
		}
		lines = append(lines, trimmedLine)
	}
	return lines
}
