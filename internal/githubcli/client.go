package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/temirov/fixreply/internal/execshell"
)

const (
	releaseSubcommandConstant               = "release"
	issueSubcommandConstant                 = "issue"
	viewSubcommandConstant                  = "view"
	listSubcommandConstant                  = "list"
	commentSubcommandConstant               = "comment"
	jsonFlagConstant                        = "--json"
	repoFlagConstant                        = "--repo"
	stateFlagConstant                       = "--state"
	limitFlagConstant                       = "--limit"
	bodyFlagConstant                        = "--body"
	repositoryFieldNameConstant             = "repository"
	issueNumberFieldNameConstant            = "issue_number"
	commentBodyFieldNameConstant            = "body"
	stateFieldNameConstant                  = "state"
	requiredValueMessageConstant            = "value required"
	positiveValueMessageConstant            = "must be positive"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	releaseNotFoundMessageConstant          = "no release found"
	issueLimitDefaultValueConstant          = 100
	releaseJSONFieldsConstant               = "tagName,publishedAt,name"
	issueJSONFieldsConstant                 = "number,title,author,labels"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	latestReleaseOperationNameConstant      = OperationName("LatestRelease")
	listIssuesOperationNameConstant         = OperationName("ListIssues")
	commentOnIssueOperationNameConstant     = OperationName("CommentOnIssue")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// IssueState describes acceptable GitHub issue states.
type IssueState string

// Issue state enumerations.
const (
	IssueStateOpen   IssueState = IssueState("open")
	IssueStateClosed IssueState = IssueState("closed")
	IssueStateAll    IssueState = IssueState("all")
)

// Release is the latest published release of a repository.
type Release struct {
	TagName     string
	Name        string
	PublishedAt time.Time
}

// DisplayName returns the release name, or the tag when the release is unnamed.
func (release Release) DisplayName() string {
	if len(strings.TrimSpace(release.Name)) == 0 {
		return release.TagName
	}
	return release.Name
}

// Issue represents minimal issue details returned by GitHub CLI.
type Issue struct {
	Number int
	Title  string
	Author string
	Labels []string
}

// IssueListOptions configures ListIssues queries.
type IssueListOptions struct {
	State       IssueState
	ResultLimit int
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor             GitHubCommandExecutor
	environmentVariables map[string]string
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrReleaseNotFound indicates gh reported no release for the repository.
	ErrReleaseNotFound = errors.New(releaseNotFoundMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	return NewClientWithEnvironment(executor, nil)
}

// NewClientWithEnvironment constructs a client that adds environmentVariables (for example GH_TOKEN) to every gh invocation.
func NewClientWithEnvironment(executor GitHubCommandExecutor, environmentVariables map[string]string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	var duplicatedEnvironment map[string]string
	if len(environmentVariables) > 0 {
		duplicatedEnvironment = make(map[string]string, len(environmentVariables))
		for environmentKey, environmentValue := range environmentVariables {
			duplicatedEnvironment[environmentKey] = environmentValue
		}
	}
	return &Client{executor: executor, environmentVariables: duplicatedEnvironment}, nil
}

// LatestRelease retrieves the most recent release using gh release view.
// Empty output is reported as ErrReleaseNotFound.
func (client *Client) LatestRelease(executionContext context.Context, repository string) (Release, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return Release{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.execute(executionContext, execshell.CommandDetails{
		Arguments: []string{
			releaseSubcommandConstant,
			viewSubcommandConstant,
			jsonFlagConstant,
			releaseJSONFieldsConstant,
			repoFlagConstant,
			repositoryIdentifier,
		},
	})
	if executionError != nil {
		return Release{}, OperationError{Operation: latestReleaseOperationNameConstant, Cause: executionError}
	}

	trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedOutput) == 0 {
		return Release{}, OperationError{Operation: latestReleaseOperationNameConstant, Cause: ErrReleaseNotFound}
	}

	var response struct {
		TagName     string `json:"tagName"`
		Name        string `json:"name"`
		PublishedAt string `json:"publishedAt"`
	}
	if decodingError := json.Unmarshal([]byte(trimmedOutput), &response); decodingError != nil {
		return Release{}, ResponseDecodingError{Operation: latestReleaseOperationNameConstant, Cause: decodingError}
	}
	if len(strings.TrimSpace(response.TagName)) == 0 {
		return Release{}, OperationError{Operation: latestReleaseOperationNameConstant, Cause: ErrReleaseNotFound}
	}

	release := Release{TagName: strings.TrimSpace(response.TagName), Name: strings.TrimSpace(response.Name)}
	if len(response.PublishedAt) > 0 {
		publishedAt, parseError := time.Parse(time.RFC3339, response.PublishedAt)
		if parseError != nil {
			return Release{}, ResponseDecodingError{Operation: latestReleaseOperationNameConstant, Cause: parseError}
		}
		release.PublishedAt = publishedAt
	}

	return release, nil
}

// ListIssues enumerates issues using gh issue list.
func (client *Client) ListIssues(executionContext context.Context, repository string, options IssueListOptions) ([]Issue, error) {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(options.State) == 0 {
		return nil, InvalidInputError{FieldName: stateFieldNameConstant, Message: requiredValueMessageConstant}
	}

	resultLimit := options.ResultLimit
	if resultLimit <= 0 {
		resultLimit = issueLimitDefaultValueConstant
	}

	executionResult, executionError := client.execute(executionContext, execshell.CommandDetails{
		Arguments: []string{
			issueSubcommandConstant,
			listSubcommandConstant,
			stateFlagConstant,
			string(options.State),
			jsonFlagConstant,
			issueJSONFieldsConstant,
			limitFlagConstant,
			strconv.Itoa(resultLimit),
			repoFlagConstant,
			repositoryIdentifier,
		},
	})
	if executionError != nil {
		return nil, OperationError{Operation: listIssuesOperationNameConstant, Cause: executionError}
	}

	trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
	if len(trimmedOutput) == 0 {
		return []Issue{}, nil
	}

	var response []struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Author struct {
			Login string `json:"login"`
		} `json:"author"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	}
	if decodingError := json.Unmarshal([]byte(trimmedOutput), &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listIssuesOperationNameConstant, Cause: decodingError}
	}

	issues := make([]Issue, 0, len(response))
	for _, issueEntry := range response {
		labelNames := make([]string, 0, len(issueEntry.Labels))
		for _, label := range issueEntry.Labels {
			labelNames = append(labelNames, label.Name)
		}
		issues = append(issues, Issue{
			Number: issueEntry.Number,
			Title:  issueEntry.Title,
			Author: issueEntry.Author.Login,
			Labels: labelNames,
		})
	}

	return issues, nil
}

// CommentOnIssue posts body as a new comment on the issue.
func (client *Client) CommentOnIssue(executionContext context.Context, repository string, issueNumber int, body string) error {
	repositoryIdentifier := strings.TrimSpace(repository)
	if len(repositoryIdentifier) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if issueNumber <= 0 {
		return InvalidInputError{FieldName: issueNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if len(strings.TrimSpace(body)) == 0 {
		return InvalidInputError{FieldName: commentBodyFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, executionError := client.execute(executionContext, execshell.CommandDetails{
		Arguments: []string{
			issueSubcommandConstant,
			commentSubcommandConstant,
			strconv.Itoa(issueNumber),
			bodyFlagConstant,
			body,
			repoFlagConstant,
			repositoryIdentifier,
		},
	})
	if executionError != nil {
		return OperationError{Operation: commentOnIssueOperationNameConstant, Cause: executionError}
	}

	return nil
}

func (client *Client) execute(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if len(client.environmentVariables) > 0 {
		details.EnvironmentVariables = client.environmentVariables
	}
	return client.executor.ExecuteGitHubCLI(executionContext, details)
}
