package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesKnownCommands(t *testing.T) {
	testCases := []struct {
		name     string
		command  ShellCommand
		expected string
	}{
		{
			name: "remote_lookup",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"remote", "get-url", "origin"},
				WorkingDirectory: "/workspace/repo",
			}},
			expected: "Checking origin remote in /workspace/repo",
		},
		{
			name: "commit_log",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments: []string{"log", "v1.2.0..HEAD", "--pretty=format:%H|%s"},
			}},
			expected: "Listing commits v1.2.0..HEAD in current directory",
		},
		{
			name: "diff_tree",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments: []string{"diff-tree", "--no-commit-id", "--name-only", "-r", "abc123"},
			}},
			expected: "Listing files changed by abc123 in current directory",
		},
		{
			name: "show_lines",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments: []string{"show", "abc123", "--", "core/src/lib.rs", "-U0", "--pretty=format:"},
			}},
			expected: "Locating lines of core/src/lib.rs changed by abc123",
		},
		{
			name: "release_view",
			command: ShellCommand{Name: CommandGitHub, Details: CommandDetails{
				Arguments: []string{"release", "view", "--json", "tagName,publishedAt,name", "--repo", "owner/example"},
			}},
			expected: "Retrieving latest release for owner/example",
		},
		{
			name: "issue_list_without_repo",
			command: ShellCommand{Name: CommandGitHub, Details: CommandDetails{
				Arguments: []string{"issue", "list", "--state", "open"},
			}},
			expected: "Listing open issues for current repository",
		},
		{
			name: "issue_comment",
			command: ShellCommand{Name: CommandGitHub, Details: CommandDetails{
				Arguments: []string{"issue", "comment", "42", "--body", "text", "--repo", "owner/example"},
			}},
			expected: "Commenting on issue #42 in owner/example",
		},
		{
			name: "generic",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"status"},
				WorkingDirectory: "/workspace/repo",
			}},
			expected: "Running git status (in /workspace/repo)",
		},
	}

	formatter := CommandMessageFormatter{}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, formatter.BuildStartedMessage(testCase.command))
		})
	}
}

func TestCommandMessageFormatterFailureMessages(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGitHub, Details: CommandDetails{
		Arguments: []string{"release", "view", "--json", "tagName"},
	}}

	require.Equal(t,
		"Failed to retrieve latest release for current repository (exit code 1: release not found)",
		formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "release not found\n"}),
	)
	require.Equal(t,
		"Unable to retrieve latest release for current repository: gh missing",
		formatter.BuildExecutionFailureMessage(command, errors.New("gh missing")),
	)
	require.Equal(t,
		"Unable to retrieve latest release for current repository: unknown error",
		formatter.BuildExecutionFailureMessage(command, nil),
	)
}
