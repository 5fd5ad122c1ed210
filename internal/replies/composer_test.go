package replies_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fixreply/internal/gitrepo"
	"github.com/temirov/fixreply/internal/githubcli"
	"github.com/temirov/fixreply/internal/replies"
)

const (
	testFullHashOneConstant = "1111111aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testFullHashTwoConstant = "2222222bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

var testRepositoryIdentity = gitrepo.RepositoryIdentity{
	Protocol:   gitrepo.RemoteProtocolHTTPS,
	Host:       "github.com",
	Owner:      "owner",
	Repository: "example",
}

func TestSelectFiles(testInstance *testing.T) {
	firstCommit := gitrepo.Commit{Hash: testFullHashOneConstant, Files: []string{"z.go", "b.go", "shared.go"}}
	secondCommit := gitrepo.Commit{Hash: testFullHashTwoConstant, Files: []string{"shared.go", "a.go", "c.go", "d.go"}}

	testCases := []struct {
		name            string
		maxFiles        int
		expectedPaths   []string
		expectedCommits []string
		expectedTotal   int
	}{
		{
			name:            "sorted_and_limited",
			maxFiles:        5,
			expectedPaths:   []string{"a.go", "b.go", "c.go", "d.go", "shared.go"},
			expectedCommits: []string{testFullHashTwoConstant, testFullHashOneConstant, testFullHashTwoConstant, testFullHashTwoConstant, testFullHashOneConstant},
			expectedTotal:   6,
		},
		{
			name:            "unlimited",
			maxFiles:        0,
			expectedPaths:   []string{"a.go", "b.go", "c.go", "d.go", "shared.go", "z.go"},
			expectedCommits: []string{testFullHashTwoConstant, testFullHashOneConstant, testFullHashTwoConstant, testFullHashTwoConstant, testFullHashOneConstant, testFullHashOneConstant},
			expectedTotal:   6,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			selections, total := replies.SelectFiles([]gitrepo.Commit{firstCommit, secondCommit}, testCase.maxFiles)
			require.Equal(testInstance, testCase.expectedTotal, total)

			paths := make([]string, 0, len(selections))
			commits := make([]string, 0, len(selections))
			for _, selection := range selections {
				paths = append(paths, selection.Path)
				commits = append(commits, selection.Commit.Hash)
			}
			require.Equal(testInstance, testCase.expectedPaths, paths)
			require.Equal(testInstance, testCase.expectedCommits, commits)
		})
	}
}

func TestLinks(testInstance *testing.T) {
	enterprise := gitrepo.RepositoryIdentity{Host: "git.example.com", Owner: "team", Repository: "tool"}
	require.Equal(testInstance, "https://git.example.com/team/tool/commit/abc", replies.CommitLink(enterprise, "abc"))
	require.Equal(testInstance,
		"https://github.com/owner/example/blob/abc/internal/app.go#L10-L12",
		replies.FileLink(testRepositoryIdentity, "abc", "internal/app.go", gitrepo.LineRange{Start: 10, End: 12}))
}

func TestComposerDefaultTemplate(testInstance *testing.T) {
	composer, composerError := replies.NewComposer("")
	require.NoError(testInstance, composerError)

	replyContext := replies.ReplyContext{
		ProductName: "Example",
		Version:     "v1.2.0",
		Tag:         "v1.2.0",
		Repository:  testRepositoryIdentity,
		Issue:       githubcli.Issue{Number: 12},
		Commits: []replies.ReplyCommit{
			{Hash: testFullHashOneConstant, ShortHash: "1111111", Link: "https://github.com/owner/example/commit/" + testFullHashOneConstant},
		},
		Files: []replies.ReplyFile{
			{Path: "a.go", Link: "https://github.com/owner/example/blob/" + testFullHashOneConstant + "/a.go#L3-L4"},
		},
		TotalFiles: 1,
	}

	reply, composeError := composer.Compose(replyContext)
	require.NoError(testInstance, composeError)

	expectedReply := strings.Join([]string{
		"Thanks for reporting this and for using Example!",
		"",
		"## ✅ Fixed in v1.2.0",
		"",
		"**Commit:** [`1111111`](https://github.com/owner/example/commit/" + testFullHashOneConstant + ")",
		"",
		"**Files changed:**",
		"- [`a.go`](https://github.com/owner/example/blob/" + testFullHashOneConstant + "/a.go#L3-L4)",
		"",
		"---",
		"",
		"📥 **Please update to v1.2.0** to get this fix.",
	}, "\n")
	require.Equal(testInstance, expectedReply, reply)
}

func TestComposerWithoutFilesOrProduct(testInstance *testing.T) {
	composer, composerError := replies.NewComposer("")
	require.NoError(testInstance, composerError)

	reply, composeError := composer.Compose(replies.ReplyContext{
		Version: "v2",
		Commits: []replies.ReplyCommit{{ShortHash: "2222222", Link: "link"}},
	})
	require.NoError(testInstance, composeError)
	require.True(testInstance, strings.HasPrefix(reply, "Thanks for reporting this!\n"))
	require.NotContains(testInstance, reply, "Files changed")
	require.Contains(testInstance, reply, "**Commit:** [`2222222`](link)\n\n---")
}

func TestComposerCustomTemplate(testInstance *testing.T) {
	testCases := []struct {
		name          string
		templateText  string
		expectedReply string
		expectError   bool
	}{
		{
			name:          "custom_fields",
			templateText:  "#{{.Issue.Number}} fixed in {{.Tag}} ({{len .Commits}} commits, {{.TotalFiles}} files)",
			expectedReply: "#7 fixed in v3 (0 commits, 9 files)",
		},
		{
			name:         "whitespace_only",
			templateText: "  \n",
			expectError:  true,
		},
		{
			name:         "parse_failure",
			templateText: "{{.Issue",
			expectError:  true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			composer, composerError := replies.NewComposer(testCase.templateText)
			if testCase.expectError {
				require.Error(testInstance, composerError)
				require.Nil(testInstance, composer)
				return
			}
			require.NoError(testInstance, composerError)

			reply, composeError := composer.Compose(replies.ReplyContext{Tag: "v3", Issue: githubcli.Issue{Number: 7}, TotalFiles: 9})
			require.NoError(testInstance, composeError)
			require.Equal(testInstance, testCase.expectedReply, reply)
		})
	}
}

func TestComposerRenderFailure(testInstance *testing.T) {
	composer, composerError := replies.NewComposer("{{.Missing}}")
	require.NoError(testInstance, composerError)

	_, composeError := composer.Compose(replies.ReplyContext{Issue: githubcli.Issue{Number: 4}})
	require.Error(testInstance, composeError)
	require.Contains(testInstance, composeError.Error(), "issue #4")
}
