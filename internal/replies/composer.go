package replies

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/temirov/fixreply/internal/gitrepo"
	"github.com/temirov/fixreply/internal/githubcli"
)

const (
	replyTemplateNameConstant           = "reply"
	commitLinkTemplateConstant          = "https://%s/%s/%s/commit/%s"
	fileLinkTemplateConstant            = "https://%s/%s/%s/blob/%s/%s#L%d-L%d"
	templateParseErrorTemplateConstant  = "unable to parse reply template: %w"
	templateRenderErrorTemplateConstant = "unable to render reply for issue #%d: %w"
	emptyTemplateMessageConstant        = "reply template is empty"
	defaultReplyTemplateConstant        = `Thanks for reporting this{{if .ProductName}} and for using {{.ProductName}}{{end}}!

## ✅ Fixed in {{.Version}}

{{range .Commits}}**Commit:** [` + "`{{.ShortHash}}`" + `]({{.Link}})
{{end}}{{if .Files}}
**Files changed:**
{{range .Files}}- [` + "`{{.Path}}`" + `]({{.Link}})
{{end}}{{end}}
---

📥 **Please update to {{.Version}}** to get this fix.`
)

// ErrEmptyTemplate indicates a custom reply template without content.
var ErrEmptyTemplate = errors.New(emptyTemplateMessageConstant)

// ReplyCommit is a commit linked from a reply.
type ReplyCommit struct {
	Hash      string
	ShortHash string
	Message   string
	Link      string
}

// ReplyFile is a changed file linked from a reply, anchored at the changed lines of the commit that first touched it.
type ReplyFile struct {
	Path       string
	CommitHash string
	Lines      gitrepo.LineRange
	Link       string
}

// ReplyContext is the data handed to the reply template.
type ReplyContext struct {
	ProductName string
	Version     string
	Tag         string
	Repository  gitrepo.RepositoryIdentity
	Issue       githubcli.Issue
	Commits     []ReplyCommit
	Files       []ReplyFile
	TotalFiles  int
}

// FileSelection pairs a changed path with the commit whose diff anchors its link.
type FileSelection struct {
	Path   string
	Commit gitrepo.Commit
}

// Composer renders issue replies from a text/template.
type Composer struct {
	replyTemplate *template.Template
}

// DefaultReplyTemplate returns the built-in English reply template.
func DefaultReplyTemplate() string {
	return defaultReplyTemplateConstant
}

// NewComposer parses templateText; an empty string selects the default template.
func NewComposer(templateText string) (*Composer, error) {
	if len(templateText) == 0 {
		templateText = defaultReplyTemplateConstant
	}
	if len(strings.TrimSpace(templateText)) == 0 {
		return nil, ErrEmptyTemplate
	}

	parsedTemplate, parseError := template.New(replyTemplateNameConstant).Option("missingkey=error").Parse(templateText)
	if parseError != nil {
		return nil, fmt.Errorf(templateParseErrorTemplateConstant, parseError)
	}
	return &Composer{replyTemplate: parsedTemplate}, nil
}

// Compose renders the reply body for replyContext.
func (composer *Composer) Compose(replyContext ReplyContext) (string, error) {
	var renderedReply bytes.Buffer
	if executeError := composer.replyTemplate.Execute(&renderedReply, replyContext); executeError != nil {
		return "", fmt.Errorf(templateRenderErrorTemplateConstant, replyContext.Issue.Number, executeError)
	}
	return renderedReply.String(), nil
}

// SelectFiles returns the lexicographically sorted union of files changed by commits, limited to maxFiles.
// Each path is paired with the first commit, in the given order, that changed it.
// The second result is the size of the full union.
func SelectFiles(commits []gitrepo.Commit, maxFiles int) ([]FileSelection, int) {
	firstCommitByPath := make(map[string]gitrepo.Commit)
	for _, commit := range commits {
		for _, path := range commit.Files {
			if _, seen := firstCommitByPath[path]; !seen {
				firstCommitByPath[path] = commit
			}
		}
	}

	sortedPaths := make([]string, 0, len(firstCommitByPath))
	for path := range firstCommitByPath {
		sortedPaths = append(sortedPaths, path)
	}
	sort.Strings(sortedPaths)

	totalFiles := len(sortedPaths)
	if maxFiles > 0 && len(sortedPaths) > maxFiles {
		sortedPaths = sortedPaths[:maxFiles]
	}

	selections := make([]FileSelection, 0, len(sortedPaths))
	for _, path := range sortedPaths {
		selections = append(selections, FileSelection{Path: path, Commit: firstCommitByPath[path]})
	}
	return selections, totalFiles
}

// CommitLink builds the web URL of a commit.
func CommitLink(repository gitrepo.RepositoryIdentity, hash string) string {
	return fmt.Sprintf(commitLinkTemplateConstant, repository.Host, repository.Owner, repository.Repository, hash)
}

// FileLink builds the web URL of a file at a commit, anchored at lines.
func FileLink(repository gitrepo.RepositoryIdentity, hash string, path string, lines gitrepo.LineRange) string {
	return fmt.Sprintf(fileLinkTemplateConstant, repository.Host, repository.Owner, repository.Repository, hash, path, lines.Start, lines.End)
}
