package replies

import "strings"

const (
	defaultRemoteNameConstant   = "origin"
	defaultIssueLimitConstant   = 100
	defaultMaxFilesConstant     = 5
	outputFormatTextConstant    = "text"
	outputFormatYAMLConstant    = "yaml"
	configurationKeyDryRun      = "dry_run"
	configurationKeyRepository  = "repository"
	configurationKeyRemote      = "remote"
	configurationKeyTag         = "tag"
	configurationKeyPath        = "path"
	configurationKeyIssueLimit  = "issue_limit"
	configurationKeyMaxFiles    = "max_files"
	configurationKeyKeyword     = "require_closing_keyword"
	configurationKeySkipLabels  = "skip_labels"
	configurationKeyProductName = "product_name"
	configurationKeyTemplate    = "template_file"
	configurationKeyFormat      = "format"
	configurationKeySeparator   = "."
)

// OutputFormat selects how a run reports its work.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatText OutputFormat = OutputFormat(outputFormatTextConstant)
	OutputFormatYAML OutputFormat = OutputFormat(outputFormatYAMLConstant)
)

// CommandConfiguration captures the reply settings read from the `reply` configuration section.
type CommandConfiguration struct {
	DryRun                bool     `mapstructure:"dry_run"`
	Repository            string   `mapstructure:"repository"`
	Remote                string   `mapstructure:"remote"`
	Tag                   string   `mapstructure:"tag"`
	RepositoryPath        string   `mapstructure:"path"`
	IssueLimit            int      `mapstructure:"issue_limit"`
	MaxFiles              int      `mapstructure:"max_files"`
	RequireClosingKeyword bool     `mapstructure:"require_closing_keyword"`
	SkipLabels            []string `mapstructure:"skip_labels"`
	ProductName           string   `mapstructure:"product_name"`
	TemplateFile          string   `mapstructure:"template_file"`
	Format                string   `mapstructure:"format"`
}

// DefaultCommandConfiguration returns the built-in reply settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Remote:     defaultRemoteNameConstant,
		IssueLimit: defaultIssueLimitConstant,
		MaxFiles:   defaultMaxFilesConstant,
		SkipLabels: []string{},
		Format:     outputFormatTextConstant,
	}
}

// DefaultConfigurationValues exposes the defaults as Viper keys below prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	keyFor := func(name string) string {
		if len(prefix) == 0 {
			return name
		}
		return prefix + configurationKeySeparator + name
	}

	return map[string]any{
		keyFor(configurationKeyDryRun):      defaults.DryRun,
		keyFor(configurationKeyRepository):  defaults.Repository,
		keyFor(configurationKeyRemote):      defaults.Remote,
		keyFor(configurationKeyTag):         defaults.Tag,
		keyFor(configurationKeyPath):        defaults.RepositoryPath,
		keyFor(configurationKeyIssueLimit):  defaults.IssueLimit,
		keyFor(configurationKeyMaxFiles):    defaults.MaxFiles,
		keyFor(configurationKeyKeyword):     defaults.RequireClosingKeyword,
		keyFor(configurationKeySkipLabels):  defaults.SkipLabels,
		keyFor(configurationKeyProductName): defaults.ProductName,
		keyFor(configurationKeyTemplate):    defaults.TemplateFile,
		keyFor(configurationKeyFormat):      defaults.Format,
	}
}

// Sanitize trims textual settings and restores defaults for unset or invalid numeric values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaults.Remote
	}
	sanitized.Tag = strings.TrimSpace(configuration.Tag)
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if sanitized.IssueLimit <= 0 {
		sanitized.IssueLimit = defaults.IssueLimit
	}
	if sanitized.MaxFiles <= 0 {
		sanitized.MaxFiles = defaults.MaxFiles
	}
	sanitized.ProductName = strings.TrimSpace(configuration.ProductName)
	sanitized.TemplateFile = strings.TrimSpace(configuration.TemplateFile)
	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = defaults.Format
	}

	sanitizedLabels := make([]string, 0, len(configuration.SkipLabels))
	for _, label := range configuration.SkipLabels {
		trimmedLabel := strings.TrimSpace(label)
		if len(trimmedLabel) > 0 {
			sanitizedLabels = append(sanitizedLabels, trimmedLabel)
		}
	}
	sanitized.SkipLabels = sanitizedLabels

	return sanitized
}
