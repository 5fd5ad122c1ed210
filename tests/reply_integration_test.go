package tests

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	replyIntegrationRepositoryDirectoryConstant = "workspace"
	replyIntegrationStubDirectoryConstant       = "stub_bin"
	replyIntegrationCommentLogFileConstant      = "comments.log"
	replyIntegrationCommentLogEnvConstant       = "FIXREPLY_TEST_COMMENT_LOG"
	replyIntegrationRemoteURLConstant           = "git@github.com:octo/widgets.git"
	replyIntegrationReleaseTagConstant          = "v1.0.0"
	replyIntegrationCommandTimeoutConstant      = 60 * time.Second
	replyIntegrationStubScriptConstant          = `#!/bin/sh
if [ "$1" = "release" ] && [ "$2" = "view" ]; then
  cat <<'JSON'
{"tagName":"v1.0.0","name":"Widgets 1.0","publishedAt":"2024-01-01T00:00:00Z"}
JSON
  exit 0
fi
if [ "$1" = "issue" ] && [ "$2" = "list" ]; then
  cat <<'JSON'
[{"number":7,"title":"Crash on start","author":{"login":"alice"},"labels":[]},{"number":9,"title":"Slow sync","author":{"login":"bob"},"labels":[{"name":"bug"}]}]
JSON
  exit 0
fi
if [ "$1" = "issue" ] && [ "$2" = "comment" ]; then
  printf 'issue=%s token=%s\n%s\n' "$3" "$GH_TOKEN" "$5" >> "$FIXREPLY_TEST_COMMENT_LOG"
  exit 0
fi
exit 1
`
)

type replyIntegrationFixture struct {
	repositoryPath string
	pathVariable   string
	commentLogPath string
}

func prepareReplyIntegrationFixture(testInstance *testing.T) replyIntegrationFixture {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(integrationGitExecutableNameConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	temporaryRoot := testInstance.TempDir()
	repositoryPath := filepath.Join(temporaryRoot, replyIntegrationRepositoryDirectoryConstant)
	runGitCommand(testInstance, temporaryRoot, "init", repositoryPath)
	configureLocalRepository(testInstance, repositoryPath)
	runGitCommand(testInstance, repositoryPath, "remote", "add", "origin", replyIntegrationRemoteURLConstant)

	commitFile(testInstance, repositoryPath, "README.md", "widgets\n", "Initial commit")
	runGitCommand(testInstance, repositoryPath, "tag", replyIntegrationReleaseTagConstant)
	commitFile(testInstance, repositoryPath, "crash.go", "package widgets\n\nfunc start() {}\n", "Fix crash on start (fixes #7)")
	commitFile(testInstance, repositoryPath, "docs.md", "notes\n", "Document sync, see #12")

	stubDirectory := filepath.Join(temporaryRoot, replyIntegrationStubDirectoryConstant)
	writeExecutable(testInstance, filepath.Join(stubDirectory, "gh"), replyIntegrationStubScriptConstant)

	return replyIntegrationFixture{
		repositoryPath: repositoryPath,
		pathVariable:   stubDirectory + string(os.PathListSeparator) + os.Getenv("PATH"),
		commentLogPath: filepath.Join(temporaryRoot, replyIntegrationCommentLogFileConstant),
	}
}

func TestReplyIntegration(testInstance *testing.T) {
	testCases := []struct {
		name                string
		extraArguments      []string
		expectedSnippets    []string
		unexpectedSnippets  []string
		expectCommentLogged bool
	}{
		{
			name:           "dry_run",
			extraArguments: []string{"--dry-run"},
			expectedSnippets: []string{
				"📦 Repository: octo/widgets",
				"🏷️  Latest release: Widgets 1.0 (v1.0.0)",
				"📝 Commits since release: 2",
				"🔗 Issues referenced in commits: [12, 7]",
				"📋 Open issues: 2",
				"✅ Fixed issues to reply: [7]",
				"Issue #7",
				"## ✅ Fixed in Widgets 1.0",
				"https://github.com/octo/widgets/commit/",
				"crash.go",
				"🔍 [DRY-RUN] Would post to #7",
			},
			unexpectedSnippets: []string{"Issue #9", "Issue #12", "docs.md"},
		},
		{
			name: "posting",
			expectedSnippets: []string{
				"💬 Posting comment to #7...",
				"✅ Comment posted to #7",
			},
			unexpectedSnippets:  []string{"[DRY-RUN]"},
			expectCommentLogged: true,
		},
		{
			name:           "yaml_plan",
			extraArguments: []string{"--format", "yaml"},
			expectedSnippets: []string{
				"repository: octo/widgets",
				"status: replied",
				"crash.go",
			},
			unexpectedSnippets: []string{"📦 Repository"},
		},
	}

	rootDirectory := repositoryRootDirectory(testInstance)

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := prepareReplyIntegrationFixture(testInstance)

			arguments := append([]string{"run", ".", "--path", fixture.repositoryPath, "--log-format", "structured"}, testCase.extraArguments...)
			rawOutput := runIntegrationCommand(
				testInstance,
				rootDirectory,
				fixture.pathVariable,
				replyIntegrationCommandTimeoutConstant,
				arguments,
				replyIntegrationCommentLogEnvConstant+"="+fixture.commentLogPath,
			)
			outputText := filterStructuredOutput(rawOutput)

			for _, expectedSnippet := range testCase.expectedSnippets {
				require.Contains(testInstance, outputText, expectedSnippet)
			}
			for _, unexpectedSnippet := range testCase.unexpectedSnippets {
				require.NotContains(testInstance, outputText, unexpectedSnippet)
			}

			commentLog, readError := os.ReadFile(fixture.commentLogPath)
			if !testCase.expectCommentLogged {
				require.ErrorIs(testInstance, readError, os.ErrNotExist)
				return
			}
			require.NoError(testInstance, readError)
			commentText := string(commentLog)
			require.True(testInstance, strings.HasPrefix(commentText, "issue=7 token=test-token\n"), commentText)
			require.Contains(testInstance, commentText, "Thanks for reporting this and for using widgets!")
			require.Contains(testInstance, commentText, "📥 **Please update to Widgets 1.0** to get this fix.")
		})
	}
}
