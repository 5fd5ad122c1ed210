package replies

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

const planIndentConstant = 2

// Plan is the YAML document printed by `--format yaml`.
type Plan struct {
	Repository       string      `yaml:"repository"`
	Release          PlanRelease `yaml:"release"`
	Status           RunStatus   `yaml:"status"`
	CommitCount      int         `yaml:"commits_since_release"`
	ReferencedIssues []int       `yaml:"referenced_issues"`
	OpenIssueCount   int         `yaml:"open_issues"`
	Replies          []PlanReply `yaml:"replies"`
}

// PlanRelease identifies the release replies refer to.
type PlanRelease struct {
	Tag         string     `yaml:"tag,omitempty"`
	Name        string     `yaml:"name,omitempty"`
	PublishedAt *time.Time `yaml:"published_at,omitempty"`
}

// PlanReply is the reply prepared for one issue.
type PlanReply struct {
	Issue   int        `yaml:"issue"`
	Title   string     `yaml:"title"`
	Author  string     `yaml:"author,omitempty"`
	Commits []string   `yaml:"commits"`
	Files   []PlanFile `yaml:"files"`
	Body    string     `yaml:"body"`
}

// PlanFile is a linked file with its changed line span.
type PlanFile struct {
	Path      string `yaml:"path"`
	Commit    string `yaml:"commit"`
	StartLine int    `yaml:"start_line"`
	EndLine   int    `yaml:"end_line"`
}

// BuildPlan converts a run result into its YAML representation.
func BuildPlan(result Result) Plan {
	plan := Plan{
		Repository:       result.Repository.NameWithOwner(),
		Status:           result.Status,
		CommitCount:      result.CommitCount,
		ReferencedIssues: append([]int{}, result.ReferencedIssues...),
		OpenIssueCount:   result.OpenIssueCount,
		Replies:          make([]PlanReply, 0, len(result.Replies)),
		Release: PlanRelease{
			Tag:  result.Release.TagName,
			Name: result.Release.DisplayName(),
		},
	}
	if !result.Release.PublishedAt.IsZero() {
		publishedAt := result.Release.PublishedAt.UTC()
		plan.Release.PublishedAt = &publishedAt
	}

	for _, reply := range result.Replies {
		commitHashes := make([]string, 0, len(reply.Commits))
		for _, commit := range reply.Commits {
			commitHashes = append(commitHashes, commit.Hash)
		}
		planFiles := make([]PlanFile, 0, len(reply.Files))
		for _, file := range reply.Files {
			planFiles = append(planFiles, PlanFile{
				Path:      file.Path,
				Commit:    file.CommitHash,
				StartLine: file.Lines.Start,
				EndLine:   file.Lines.End,
			})
		}
		plan.Replies = append(plan.Replies, PlanReply{
			Issue:   reply.Issue.Number,
			Title:   reply.Issue.Title,
			Author:  reply.Issue.Author,
			Commits: commitHashes,
			Files:   planFiles,
			Body:    reply.Body,
		})
	}

	return plan
}

// WritePlan encodes the plan for result as YAML.
func WritePlan(output io.Writer, result Result) error {
	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(planIndentConstant)
	if encodeError := encoder.Encode(BuildPlan(result)); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
