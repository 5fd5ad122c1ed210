package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	commandArgumentsJoinSeparatorConstant   = " "
	unknownFailureMessageConstant           = "unknown error"
	currentDirectoryLabelConstant           = "current directory"
	currentRepositoryLabelConstant          = "current repository"
	unknownValueLabelConstant               = "unknown"
	flagPrefixConstant                      = "-"
	pathSeparatorArgumentConstant           = "--"
)

const (
	gitRemoteSubcommandConstant        = "remote"
	gitRemoteGetURLSubcommandConstant  = "get-url"
	gitLogSubcommandConstant           = "log"
	gitDiffTreeSubcommandConstant      = "diff-tree"
	gitShowSubcommandConstant          = "show"
	githubReleaseSubcommandConstant    = "release"
	githubIssueSubcommandConstant      = "issue"
	githubViewSubcommandConstant       = "view"
	githubListSubcommandConstant       = "list"
	githubCommentSubcommandConstant    = "comment"
	githubRepoFlagConstant             = "--repo"
	githubStateFlagConstant            = "--state"
)

// stageTemplates holds one format string per lifecycle stage. Failure templates
// receive the exit code and standard error suffix after the subject arguments.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	gitRemoteLookupTemplates = stageTemplates{
		start:            "Checking %s remote in %s",
		success:          "Read %s remote in %s",
		failure:          "Failed to read %s remote in %s (exit code %d%s)",
		executionFailure: "Unable to read %s remote in %s: %s",
	}
	gitLogTemplates = stageTemplates{
		start:            "Listing commits %s in %s",
		success:          "Listed commits %s in %s",
		failure:          "Failed to list commits %s in %s (exit code %d%s)",
		executionFailure: "Unable to list commits %s in %s: %s",
	}
	gitDiffTreeTemplates = stageTemplates{
		start:            "Listing files changed by %s in %s",
		success:          "Listed files changed by %s in %s",
		failure:          "Failed to list files changed by %s in %s (exit code %d%s)",
		executionFailure: "Unable to list files changed by %s in %s: %s",
	}
	gitShowTemplates = stageTemplates{
		start:            "Locating lines of %s changed by %s",
		success:          "Located lines of %s changed by %s",
		failure:          "Failed to locate lines of %s changed by %s (exit code %d%s)",
		executionFailure: "Unable to locate lines of %s changed by %s: %s",
	}
	githubReleaseViewTemplates = stageTemplates{
		start:            "Retrieving latest release for %s",
		success:          "Retrieved latest release for %s",
		failure:          "Failed to retrieve latest release for %s (exit code %d%s)",
		executionFailure: "Unable to retrieve latest release for %s: %s",
	}
	githubIssueListTemplates = stageTemplates{
		start:            "Listing %s issues for %s",
		success:          "Listed %s issues for %s",
		failure:          "Failed to list %s issues for %s (exit code %d%s)",
		executionFailure: "Unable to list %s issues for %s: %s",
	}
	githubIssueCommentTemplates = stageTemplates{
		start:            "Commenting on issue #%s in %s",
		success:          "Commented on issue #%s in %s",
		failure:          "Failed to comment on issue #%s in %s (exit code %d%s)",
		executionFailure: "Unable to comment on issue #%s in %s: %s",
	}
)

// CommandMessageFormatter renders human-readable descriptions of git and gh invocations.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not be run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	templates, subjects, recognized := formatter.describe(command)
	if !recognized {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, append(subjects, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))...)
	default:
		return fmt.Sprintf(templates.executionFailure, append(subjects, formatter.describeFailure(failure))...)
	}
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) (stageTemplates, []any, bool) {
	arguments := command.Details.Arguments
	switch command.Name {
	case CommandGit:
		return formatter.describeGit(command, arguments)
	case CommandGitHub:
		return formatter.describeGitHub(arguments)
	default:
		return stageTemplates{}, nil, false
	}
}

func (formatter CommandMessageFormatter) describeGit(command ShellCommand, arguments []string) (stageTemplates, []any, bool) {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch formatter.argumentAtIndex(arguments, 0) {
	case gitRemoteSubcommandConstant:
		if formatter.argumentAtIndex(arguments, 1) != gitRemoteGetURLSubcommandConstant {
			return stageTemplates{}, nil, false
		}
		return gitRemoteLookupTemplates, []any{formatter.ensureValue(formatter.argumentAtIndex(arguments, 2)), workingDirectory}, true
	case gitLogSubcommandConstant:
		return gitLogTemplates, []any{formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:])), workingDirectory}, true
	case gitDiffTreeSubcommandConstant:
		return gitDiffTreeTemplates, []any{formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:])), workingDirectory}, true
	case gitShowSubcommandConstant:
		revision := formatter.extractFirstNonFlagArgument(arguments[1:])
		return gitShowTemplates, []any{formatter.ensureValue(formatter.extractPathAfterSeparator(arguments)), formatter.ensureValue(revision)}, true
	default:
		return stageTemplates{}, nil, false
	}
}

func (formatter CommandMessageFormatter) describeGitHub(arguments []string) (stageTemplates, []any, bool) {
	repository := findFlagValue(arguments, githubRepoFlagConstant)
	if len(repository) == 0 {
		repository = currentRepositoryLabelConstant
	}

	subcommand := formatter.argumentAtIndex(arguments, 0)
	action := formatter.argumentAtIndex(arguments, 1)
	switch {
	case subcommand == githubReleaseSubcommandConstant && action == githubViewSubcommandConstant:
		return githubReleaseViewTemplates, []any{repository}, true
	case subcommand == githubIssueSubcommandConstant && action == githubListSubcommandConstant:
		return githubIssueListTemplates, []any{formatter.ensureValue(findFlagValue(arguments, githubStateFlagConstant)), repository}, true
	case subcommand == githubIssueSubcommandConstant && action == githubCommentSubcommandConstant:
		return githubIssueCommentTemplates, []any{formatter.ensureValue(formatter.argumentAtIndex(arguments, 2)), repository}, true
	default:
		return stageTemplates{}, nil, false
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return currentDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return ""
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return unknownValueLabelConstant
	}
	return value
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || trimmedArgument == pathSeparatorArgumentConstant {
			continue
		}
		if strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return ""
}

func (formatter CommandMessageFormatter) extractPathAfterSeparator(arguments []string) string {
	for index, argument := range arguments {
		if argument == pathSeparatorArgumentConstant {
			return formatter.argumentAtIndex(arguments, index+1)
		}
	}
	return ""
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if arguments[index] == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return ""
}
