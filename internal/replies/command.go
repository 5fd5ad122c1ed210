package replies

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fixreply/internal/execshell"
	"github.com/temirov/fixreply/internal/gitrepo"
	"github.com/temirov/fixreply/internal/githubauth"
	"github.com/temirov/fixreply/internal/githubcli"
	"github.com/temirov/fixreply/internal/ui"
	"github.com/temirov/fixreply/internal/utils"
	"github.com/temirov/fixreply/internal/utils/flags"
	pathutils "github.com/temirov/fixreply/internal/utils/path"
)

const (
	commandUseConstant                    = "fixreply"
	commandShortDescriptionConstant       = "Reply to GitHub issues fixed since the latest release"
	commandLongDescriptionConstant        = "fixreply finds commits made since the latest GitHub release, matches the issue numbers they mention against open issues, and posts a comment on each fixed issue linking the commits and changed files."
	commandExecutionErrorTemplateConstant = "issue replies failed: %w"
	templateReadErrorTemplateConstant     = "unable to read reply template %s: %w"
	unexpectedArgumentsMessageConstant    = "fixreply does not accept positional arguments"
	flagDryRunNameConstant                = "dry-run"
	flagDryRunDescriptionConstant         = "Print replies without posting them"
	flagRepositoryNameConstant            = "repo"
	flagRepositoryDescriptionConstant     = "Repository as owner/repo instead of deriving it from the git remote"
	flagTagNameConstant                   = "tag"
	flagTagDescriptionConstant            = "Release tag to compare against instead of the latest GitHub release"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Git remote used to derive the repository"
	flagPathNameConstant                  = "path"
	flagPathDescriptionConstant           = "Repository working directory"
	flagIssueLimitNameConstant            = "issue-limit"
	flagIssueLimitDescriptionConstant     = "Maximum number of open issues to fetch"
	flagMaxFilesNameConstant              = "max-files"
	flagMaxFilesDescriptionConstant       = "Maximum number of changed files listed per reply"
	flagRequireKeywordNameConstant        = "require-keyword"
	flagRequireKeywordDescriptionConstant = "Only match issues introduced by fix/close/resolve keywords"
	flagTemplateNameConstant              = "template"
	flagTemplateDescriptionConstant       = "Path to a text/template file used to render replies"
	flagProductNameConstant               = "product-name"
	flagProductDescriptionConstant        = "Product name used in the reply greeting"
	flagFormatNameConstant                = "format"
	flagFormatDescriptionConstant         = "Print the progress transcript or a YAML reply plan"
	runStartingMessageConstant            = "Reply run starting"
	tokenResolvedMessageConstant          = "GitHub token resolved"
	logFieldTokenSourceConstant           = "source"
	logFieldWorkingDirectoryConstant      = "working_directory"
)

var (
	errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)
	// ErrEmptyTemplateFile indicates a configured template file without content.
	ErrEmptyTemplateFile = errors.New("reply template file is empty")
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the reply configuration.
type ConfigurationProvider func() CommandConfiguration

// TokenProvider supplies the configured GitHub token, if any.
type TokenProvider func() string

// CommandBuilder assembles the reply command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider func() bool
	TokenProvider                TokenProvider
	Runner                       execshell.CommandRunner
	EnvironmentLookup            githubauth.EnvironmentLookup
	HomeExpander                 *pathutils.HomeExpander
}

type commandFlagValues struct {
	dryRun         bool
	requireKeyword bool
	repository     string
	tag            string
	remote         string
	path           string
	issueLimit     int
	maxFiles       int
	templateFile   string
	productName    string
	format         string
}

// Build constructs the reply command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}
	defaults := DefaultCommandConfiguration()

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	flagSet := command.Flags()
	flags.AddToggleFlag(flagSet, &flagValues.dryRun, flagDryRunNameConstant, defaults.DryRun, flagDryRunDescriptionConstant)
	flags.AddToggleFlag(flagSet, &flagValues.requireKeyword, flagRequireKeywordNameConstant, defaults.RequireClosingKeyword, flagRequireKeywordDescriptionConstant)
	flagSet.StringVar(&flagValues.repository, flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	flagSet.StringVar(&flagValues.tag, flagTagNameConstant, "", flagTagDescriptionConstant)
	flagSet.StringVar(&flagValues.remote, flagRemoteNameConstant, defaults.Remote, flagRemoteDescriptionConstant)
	flagSet.StringVar(&flagValues.path, flagPathNameConstant, "", flagPathDescriptionConstant)
	flagSet.IntVar(&flagValues.issueLimit, flagIssueLimitNameConstant, defaults.IssueLimit, flagIssueLimitDescriptionConstant)
	flagSet.IntVar(&flagValues.maxFiles, flagMaxFilesNameConstant, defaults.MaxFiles, flagMaxFilesDescriptionConstant)
	flagSet.StringVar(&flagValues.templateFile, flagTemplateNameConstant, "", flagTemplateDescriptionConstant)
	flagSet.StringVar(&flagValues.productName, flagProductNameConstant, "", flagProductDescriptionConstant)
	flags.AddChoiceFlag(flagSet, &flagValues.format, flagFormatNameConstant, defaults.Format, []string{outputFormatTextConstant, outputFormatYAMLConstant}, flagFormatDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration(command, flagValues)
	logger := builder.resolveLogger()

	workingDirectory, workingDirectoryError := builder.resolveHomeExpander().ResolveWorkingDirectory(configuration.RepositoryPath)
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	history, historyError := gitrepo.NewHistoryReader(executor, workingDirectory)
	if historyError != nil {
		return historyError
	}

	githubClient, clientError := githubcli.NewClientWithEnvironment(executor, builder.resolveTokenEnvironment(logger))
	if clientError != nil {
		return clientError
	}

	composer, composerError := builder.resolveComposer(configuration.TemplateFile)
	if composerError != nil {
		return composerError
	}

	transcriptWriter := utils.NewFlushingWriter(command.OutOrStdout())
	service, serviceError := NewService(logger, history, githubClient, composer, transcriptWriter)
	if serviceError != nil {
		return serviceError
	}

	logger.Debug(runStartingMessageConstant, zap.String(logFieldWorkingDirectoryConstant, workingDirectory))

	_, runError := service.Run(command.Context(), Options{
		Repository:            configuration.Repository,
		Remote:                configuration.Remote,
		Tag:                   configuration.Tag,
		DryRun:                configuration.DryRun,
		IssueLimit:            configuration.IssueLimit,
		MaxFiles:              configuration.MaxFiles,
		RequireClosingKeyword: configuration.RequireClosingKeyword,
		SkipLabels:            configuration.SkipLabels,
		ProductName:           configuration.ProductName,
		Format:                OutputFormat(configuration.Format),
	})
	flushError := transcriptWriter.Flush()
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	return flushError
}

// resolveConfiguration layers explicitly set flags over the configured values.
func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command, flagValues *commandFlagValues) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	if flagSet.Changed(flagDryRunNameConstant) {
		configuration.DryRun = flagValues.dryRun
	}
	if flagSet.Changed(flagRequireKeywordNameConstant) {
		configuration.RequireClosingKeyword = flagValues.requireKeyword
	}
	if flagSet.Changed(flagRepositoryNameConstant) {
		configuration.Repository = flagValues.repository
	}
	if flagSet.Changed(flagTagNameConstant) {
		configuration.Tag = flagValues.tag
	}
	if flagSet.Changed(flagRemoteNameConstant) {
		configuration.Remote = flagValues.remote
	}
	if flagSet.Changed(flagPathNameConstant) {
		configuration.RepositoryPath = flagValues.path
	}
	if flagSet.Changed(flagIssueLimitNameConstant) {
		configuration.IssueLimit = flagValues.issueLimit
	}
	if flagSet.Changed(flagMaxFilesNameConstant) {
		configuration.MaxFiles = flagValues.maxFiles
	}
	if flagSet.Changed(flagTemplateNameConstant) {
		configuration.TemplateFile = flagValues.templateFile
	}
	if flagSet.Changed(flagProductNameConstant) {
		configuration.ProductName = flagValues.productName
	}
	if flagSet.Changed(flagFormatNameConstant) {
		configuration.Format = flagValues.format
	}

	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander != nil {
		return builder.HomeExpander
	}
	return pathutils.NewHomeExpander()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	commandRunner := builder.Runner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}

	var observer execshell.CommandEventObserver
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		observer = ui.NewConsoleCommandEventLogger(logger)
	}

	return execshell.NewShellExecutorWithObserver(logger, commandRunner, observer)
}

func (builder *CommandBuilder) resolveTokenEnvironment(logger *zap.Logger) map[string]string {
	configuredToken := ""
	if builder.TokenProvider != nil {
		configuredToken = builder.TokenProvider()
	}

	token, source := githubauth.NewResolver(builder.EnvironmentLookup).ResolveToken(configuredToken)
	if source != githubauth.TokenSourceNone {
		logger.Debug(tokenResolvedMessageConstant, zap.String(logFieldTokenSourceConstant, string(source)))
	}
	return githubauth.CommandEnvironment(token)
}

func (builder *CommandBuilder) resolveComposer(templateFile string) (*Composer, error) {
	if len(strings.TrimSpace(templateFile)) == 0 {
		return NewComposer("")
	}

	templatePath := builder.resolveHomeExpander().Expand(templateFile)
	templateContent, readError := os.ReadFile(templatePath)
	if readError != nil {
		return nil, fmt.Errorf(templateReadErrorTemplateConstant, templatePath, readError)
	}
	if len(strings.TrimSpace(string(templateContent))) == 0 {
		return nil, fmt.Errorf(templateReadErrorTemplateConstant, templatePath, ErrEmptyTemplateFile)
	}

	return NewComposer(string(templateContent))
}
