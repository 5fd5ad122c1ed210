package replies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/fixreply/internal/gitrepo"
	"github.com/temirov/fixreply/internal/githubcli"
	"github.com/temirov/fixreply/internal/references"
)

const (
	repositoryLineTemplateConstant        = "📦 Repository: %s\n"
	releaseLineTemplateConstant           = "🏷️  Latest release: %s (%s)\n"
	noReleaseLineConstant                 = "❌ No releases found\n"
	commitCountLineTemplateConstant       = "📝 Commits since release: %d\n"
	noCommitsLineConstant                 = "✅ No new commits since release\n"
	referencedIssuesLineTemplateConstant  = "🔗 Issues referenced in commits: %s\n"
	openIssuesLineTemplateConstant        = "📋 Open issues: %d\n"
	fixedIssuesLineTemplateConstant       = "✅ Fixed issues to reply: %s\n"
	noFixedIssuesLineConstant             = "🎉 No open issues to reply to\n"
	issueHeaderTemplateConstant           = "\n%s\nIssue #%d\n%s\n%s\n"
	postingLineTemplateConstant           = "\n💬 Posting comment to #%d...\n"
	postedLineTemplateConstant            = "✅ Comment posted to #%d\n"
	postFailedLineTemplateConstant        = "❌ Failed to post comment to #%d: %s\n"
	dryRunLineTemplateConstant            = "\n🔍 [DRY-RUN] Would post to #%d\n"
	separatorCharacterConstant            = "="
	separatorWidthConstant                = 60
	issueListOpenConstant                 = "["
	issueListCloseConstant                = "]"
	issueListSeparatorConstant            = ", "
	repositoryResolutionErrorTemplate     = "unable to resolve repository: %w"
	replyCompositionErrorTemplateConstant = "unable to compose reply: %w"
	planRenderErrorTemplateConstant       = "unable to render reply plan: %w"
	unsupportedFormatErrorTemplate        = "unsupported output format: %s"
	releaseLookupFailedMessageConstant    = "Latest release lookup failed"
	commitListingFailedMessageConstant    = "Commit listing failed"
	fileListingFailedMessageConstant      = "Changed file listing failed"
	lineLookupFailedMessageConstant       = "Changed line lookup failed"
	issueListingFailedMessageConstant     = "Open issue listing failed"
	commentFailedMessageConstant          = "Issue comment failed"
	issueSkippedMessageConstant           = "Issue skipped by label"
	runCompletedMessageConstant           = "Reply run completed"
	logFieldRepositoryConstant            = "repository"
	logFieldTagConstant                   = "tag"
	logFieldCommitConstant                = "commit"
	logFieldPathConstant                  = "path"
	logFieldIssueConstant                 = "issue"
	logFieldLabelConstant                 = "label"
	logFieldPostedConstant                = "posted"
	logFieldFailedConstant                = "failed"
	logFieldStatusConstant                = "status"
	loggerNotConfiguredMessageConstant    = "reply service logger not configured"
	historyNotConfiguredMessageConstant   = "reply service git history not configured"
	githubNotConfiguredMessageConstant    = "reply service github client not configured"
	composerNotConfiguredMessageConstant  = "reply service composer not configured"
)

// RunStatus describes how a run ended.
type RunStatus string

// Run status enumerations.
const (
	RunStatusNoRelease     RunStatus = RunStatus("no_release")
	RunStatusNoCommits     RunStatus = RunStatus("no_commits")
	RunStatusNoFixedIssues RunStatus = RunStatus("no_fixed_issues")
	RunStatusReplied       RunStatus = RunStatus("replied")
)

var (
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrHistoryNotConfigured indicates a missing git history reader.
	ErrHistoryNotConfigured = errors.New(historyNotConfiguredMessageConstant)
	// ErrGitHubClientNotConfigured indicates a missing GitHub client.
	ErrGitHubClientNotConfigured = errors.New(githubNotConfiguredMessageConstant)
	// ErrComposerNotConfigured indicates a missing reply composer.
	ErrComposerNotConfigured = errors.New(composerNotConfiguredMessageConstant)
)

// GitHistory is the repository inspection surface used by the service.
type GitHistory interface {
	RemoteURL(executionContext context.Context, remoteName string) (string, error)
	CommitsSince(executionContext context.Context, reference string) ([]gitrepo.Commit, error)
	ChangedFiles(executionContext context.Context, revision string) ([]string, error)
	ChangedLineRange(executionContext context.Context, revision string, path string) (gitrepo.LineRange, error)
}

// GitHubOperations is the GitHub surface used by the service.
type GitHubOperations interface {
	LatestRelease(executionContext context.Context, repository string) (githubcli.Release, error)
	ListIssues(executionContext context.Context, repository string, options githubcli.IssueListOptions) ([]githubcli.Issue, error)
	CommentOnIssue(executionContext context.Context, repository string, issueNumber int, body string) error
}

// Options configure a single reply run.
type Options struct {
	Repository            string
	Remote                string
	Tag                   string
	DryRun                bool
	IssueLimit            int
	MaxFiles              int
	RequireClosingKeyword bool
	SkipLabels            []string
	ProductName           string
	Format                OutputFormat
}

// IssueReply is a reply prepared for one fixed issue.
type IssueReply struct {
	Issue   githubcli.Issue
	Commits []gitrepo.Commit
	Files   []ReplyFile
	Body    string
	Posted  bool
	Error   error
}

// Result summarizes a run.
type Result struct {
	Repository       gitrepo.RepositoryIdentity
	Release          githubcli.Release
	Status           RunStatus
	CommitCount      int
	ReferencedIssues []int
	OpenIssueCount   int
	Replies          []IssueReply
}

// Service correlates commits since the latest release with open issues and replies to them.
type Service struct {
	logger   *zap.Logger
	history  GitHistory
	github   GitHubOperations
	composer *Composer
	output   io.Writer
}

// NewService constructs a Service writing its transcript to output; a nil output discards it.
func NewService(logger *zap.Logger, history GitHistory, github GitHubOperations, composer *Composer, output io.Writer) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if history == nil {
		return nil, ErrHistoryNotConfigured
	}
	if github == nil {
		return nil, ErrGitHubClientNotConfigured
	}
	if composer == nil {
		return nil, ErrComposerNotConfigured
	}
	if output == nil {
		output = io.Discard
	}
	return &Service{logger: logger, history: history, github: github, composer: composer, output: output}, nil
}

// Run executes the reply workflow. Only repository resolution, template and output failures are returned;
// missing releases, commits or issues end the run successfully and failed posts are reported per issue.
// YAML output prints the plan instead of the transcript and never posts.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	format := options.Format
	if len(format) == 0 {
		format = OutputFormatText
	}
	if format != OutputFormatText && format != OutputFormatYAML {
		return Result{}, fmt.Errorf(unsupportedFormatErrorTemplate, format)
	}

	transcript := io.Writer(io.Discard)
	if format == OutputFormatText {
		transcript = service.output
	}

	result, runError := service.run(executionContext, options, format == OutputFormatText && !options.DryRun, transcript)
	if runError != nil {
		return result, runError
	}

	if format == OutputFormatYAML {
		if renderError := WritePlan(service.output, result); renderError != nil {
			return result, fmt.Errorf(planRenderErrorTemplateConstant, renderError)
		}
	}

	postedCount, failedCount := 0, 0
	for _, reply := range result.Replies {
		if reply.Posted {
			postedCount++
		}
		if reply.Error != nil {
			failedCount++
		}
	}
	service.logger.Info(
		runCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, result.Repository.NameWithOwner()),
		zap.String(logFieldStatusConstant, string(result.Status)),
		zap.Int(logFieldPostedConstant, postedCount),
		zap.Int(logFieldFailedConstant, failedCount),
	)

	return result, nil
}

func (service *Service) run(executionContext context.Context, options Options, postReplies bool, transcript io.Writer) (Result, error) {
	repository, repositoryError := service.resolveRepository(executionContext, options)
	if repositoryError != nil {
		return Result{}, fmt.Errorf(repositoryResolutionErrorTemplate, repositoryError)
	}
	repositoryName := repository.NameWithOwner()
	result := Result{Repository: repository}
	fmt.Fprintf(transcript, repositoryLineTemplateConstant, repositoryName)

	release, releaseFound := service.resolveRelease(executionContext, repositoryName, options.Tag)
	if !releaseFound {
		fmt.Fprint(transcript, noReleaseLineConstant)
		result.Status = RunStatusNoRelease
		return result, nil
	}
	result.Release = release
	version := release.DisplayName()
	fmt.Fprintf(transcript, releaseLineTemplateConstant, version, release.TagName)

	commits, commitsError := service.history.CommitsSince(executionContext, release.TagName)
	if commitsError != nil {
		service.logger.Warn(commitListingFailedMessageConstant, zap.String(logFieldTagConstant, release.TagName), zap.Error(commitsError))
		commits = nil
	}
	result.CommitCount = len(commits)
	fmt.Fprintf(transcript, commitCountLineTemplateConstant, len(commits))
	if len(commits) == 0 {
		fmt.Fprint(transcript, noCommitsLineConstant)
		result.Status = RunStatusNoCommits
		return result, nil
	}

	referencedIssues, commitsByIssue := correlateCommits(commits, options.RequireClosingKeyword)
	result.ReferencedIssues = referencedIssues
	fmt.Fprintf(transcript, referencedIssuesLineTemplateConstant, formatIssueList(referencedIssues))

	openIssues, issuesError := service.github.ListIssues(executionContext, repositoryName, githubcli.IssueListOptions{
		State:       githubcli.IssueStateOpen,
		ResultLimit: options.IssueLimit,
	})
	if issuesError != nil {
		service.logger.Warn(issueListingFailedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryName), zap.Error(issuesError))
		openIssues = nil
	}
	result.OpenIssueCount = len(openIssues)
	fmt.Fprintf(transcript, openIssuesLineTemplateConstant, len(openIssues))

	openIssuesByNumber := service.replyableIssues(openIssues, options.SkipLabels)
	fixedIssues := make([]githubcli.Issue, 0)
	fixedIssueNumbers := make([]int, 0)
	for _, issueNumber := range referencedIssues {
		if issue, open := openIssuesByNumber[issueNumber]; open {
			fixedIssues = append(fixedIssues, issue)
			fixedIssueNumbers = append(fixedIssueNumbers, issueNumber)
		}
	}
	fmt.Fprintf(transcript, fixedIssuesLineTemplateConstant, formatIssueList(fixedIssueNumbers))
	if len(fixedIssues) == 0 {
		fmt.Fprint(transcript, noFixedIssuesLineConstant)
		result.Status = RunStatusNoFixedIssues
		return result, nil
	}

	productName := options.ProductName
	if len(productName) == 0 {
		productName = repository.Repository
	}

	filesByCommit := make(map[string][]string)
	separator := strings.Repeat(separatorCharacterConstant, separatorWidthConstant)
	for _, issue := range fixedIssues {
		issueCommits := service.attachFiles(executionContext, commitsByIssue[issue.Number], filesByCommit)
		reply, composeError := service.prepareReply(executionContext, repository, release, productName, issue, issueCommits, options.MaxFiles)
		if composeError != nil {
			return result, fmt.Errorf(replyCompositionErrorTemplateConstant, composeError)
		}

		fmt.Fprintf(transcript, issueHeaderTemplateConstant, separator, issue.Number, separator, reply.Body)
		if postReplies {
			fmt.Fprintf(transcript, postingLineTemplateConstant, issue.Number)
			if commentError := service.github.CommentOnIssue(executionContext, repositoryName, issue.Number, reply.Body); commentError != nil {
				service.logger.Warn(commentFailedMessageConstant, zap.Int(logFieldIssueConstant, issue.Number), zap.Error(commentError))
				reply.Error = commentError
				fmt.Fprintf(transcript, postFailedLineTemplateConstant, issue.Number, commentError.Error())
			} else {
				reply.Posted = true
				fmt.Fprintf(transcript, postedLineTemplateConstant, issue.Number)
			}
		} else {
			fmt.Fprintf(transcript, dryRunLineTemplateConstant, issue.Number)
		}

		result.Replies = append(result.Replies, reply)
	}

	result.Status = RunStatusReplied
	return result, nil
}

func (service *Service) resolveRepository(executionContext context.Context, options Options) (gitrepo.RepositoryIdentity, error) {
	if len(strings.TrimSpace(options.Repository)) > 0 {
		return gitrepo.ParseRepositoryIdentifier(options.Repository)
	}

	remoteURL, remoteError := service.history.RemoteURL(executionContext, options.Remote)
	if remoteError != nil {
		return gitrepo.RepositoryIdentity{}, remoteError
	}
	return gitrepo.ParseRemoteURL(remoteURL)
}

func (service *Service) resolveRelease(executionContext context.Context, repositoryName string, tagOverride string) (githubcli.Release, bool) {
	if trimmedTag := strings.TrimSpace(tagOverride); len(trimmedTag) > 0 {
		return githubcli.Release{TagName: trimmedTag}, true
	}

	release, releaseError := service.github.LatestRelease(executionContext, repositoryName)
	if releaseError != nil {
		service.logger.Warn(releaseLookupFailedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryName), zap.Error(releaseError))
		return githubcli.Release{}, false
	}
	return release, true
}

func (service *Service) replyableIssues(openIssues []githubcli.Issue, skipLabels []string) map[int]githubcli.Issue {
	skippedLabels := make(map[string]struct{}, len(skipLabels))
	for _, label := range skipLabels {
		skippedLabels[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
	}

	issuesByNumber := make(map[int]githubcli.Issue, len(openIssues))
	for _, issue := range openIssues {
		skippedLabel := ""
		for _, label := range issue.Labels {
			if _, skipped := skippedLabels[strings.ToLower(label)]; skipped {
				skippedLabel = label
				break
			}
		}
		if len(skippedLabel) > 0 {
			service.logger.Info(issueSkippedMessageConstant, zap.Int(logFieldIssueConstant, issue.Number), zap.String(logFieldLabelConstant, skippedLabel))
			continue
		}
		issuesByNumber[issue.Number] = issue
	}
	return issuesByNumber
}

func (service *Service) attachFiles(executionContext context.Context, commits []gitrepo.Commit, filesByCommit map[string][]string) []gitrepo.Commit {
	withFiles := make([]gitrepo.Commit, 0, len(commits))
	for _, commit := range commits {
		files, cached := filesByCommit[commit.Hash]
		if !cached {
			listedFiles, filesError := service.history.ChangedFiles(executionContext, commit.Hash)
			if filesError != nil {
				service.logger.Warn(fileListingFailedMessageConstant, zap.String(logFieldCommitConstant, commit.Hash), zap.Error(filesError))
				listedFiles = nil
			}
			files = listedFiles
			filesByCommit[commit.Hash] = files
		}
		commit.Files = files
		withFiles = append(withFiles, commit)
	}
	return withFiles
}

func (service *Service) prepareReply(executionContext context.Context, repository gitrepo.RepositoryIdentity, release githubcli.Release, productName string, issue githubcli.Issue, commits []gitrepo.Commit, maxFiles int) (IssueReply, error) {
	replyCommits := make([]ReplyCommit, 0, len(commits))
	for _, commit := range commits {
		replyCommits = append(replyCommits, ReplyCommit{
			Hash:      commit.Hash,
			ShortHash: commit.ShortHash,
			Message:   commit.Message,
			Link:      CommitLink(repository, commit.Hash),
		})
	}

	selections, totalFiles := SelectFiles(commits, maxFiles)
	replyFiles := make([]ReplyFile, 0, len(selections))
	for _, selection := range selections {
		lines, linesError := service.history.ChangedLineRange(executionContext, selection.Commit.Hash, selection.Path)
		if linesError != nil {
			service.logger.Warn(lineLookupFailedMessageConstant, zap.String(logFieldCommitConstant, selection.Commit.Hash), zap.String(logFieldPathConstant, selection.Path), zap.Error(linesError))
			lines = gitrepo.DefaultLineRange()
		}
		replyFiles = append(replyFiles, ReplyFile{
			Path:       selection.Path,
			CommitHash: selection.Commit.Hash,
			Lines:      lines,
			Link:       FileLink(repository, selection.Commit.Hash, selection.Path, lines),
		})
	}

	body, composeError := service.composer.Compose(ReplyContext{
		ProductName: productName,
		Version:     release.DisplayName(),
		Tag:         release.TagName,
		Repository:  repository,
		Issue:       issue,
		Commits:     replyCommits,
		Files:       replyFiles,
		TotalFiles:  totalFiles,
	})
	if composeError != nil {
		return IssueReply{}, composeError
	}

	return IssueReply{Issue: issue, Commits: commits, Files: replyFiles, Body: body}, nil
}

// correlateCommits maps issue numbers to the commits mentioning them. Issues are ordered by first appearance
// across commits in log order; each issue lists its commits in log order.
func correlateCommits(commits []gitrepo.Commit, keywordOnly bool) ([]int, map[int][]gitrepo.Commit) {
	issueOrder := make([]int, 0)
	commitsByIssue := make(map[int][]gitrepo.Commit)
	for _, commit := range commits {
		for _, issueNumber := range references.Numbers(references.ExtractIssueReferences(commit.Message), keywordOnly) {
			if _, seen := commitsByIssue[issueNumber]; !seen {
				issueOrder = append(issueOrder, issueNumber)
			}
			commitsByIssue[issueNumber] = append(commitsByIssue[issueNumber], commit)
		}
	}
	return issueOrder, commitsByIssue
}

func formatIssueList(issueNumbers []int) string {
	formatted := make([]string, 0, len(issueNumbers))
	for _, issueNumber := range issueNumbers {
		formatted = append(formatted, strconv.Itoa(issueNumber))
	}
	return issueListOpenConstant + strings.Join(formatted, issueListSeparatorConstant) + issueListCloseConstant
}
