package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationGitExecutableNameConstant = "git"
	integrationUserNameConstant          = "Integration Tester"
	integrationUserEmailConstant         = "tester@example.com"
	integrationGitCommandTimeoutConstant = 10 * time.Second
)

func runIntegrationCommand(testInstance *testing.T, repositoryRoot string, pathVariable string, timeout time.Duration, arguments []string, extraEnvironment ...string) string {
	testInstance.Helper()
	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", arguments...)
	command.Dir = repositoryRoot
	environment := append([]string{}, os.Environ()...)
	if len(pathVariable) > 0 {
		environment = append(environment, "PATH="+pathVariable)
	}
	environment = append(environment, extraEnvironment...)
	command.Env = environment

	outputBytes, runError := command.CombinedOutput()
	outputText := string(outputBytes)
	requireNoError(testInstance, runError, outputText)
	return outputText
}

func repositoryRootDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(currentWorkingDirectory)
}

func filterStructuredOutput(rawOutput string) string {
	lines := strings.Split(rawOutput, "\n")
	var filtered []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "{") {
			continue
		}
		filtered = append(filtered, line)
	}
	if len(filtered) == 0 {
		return ""
	}
	return strings.Join(filtered, "\n") + "\n"
}

func configureLocalRepository(testInstance *testing.T, repositoryPath string) {
	runGitCommand(testInstance, repositoryPath, "config", "user.name", integrationUserNameConstant)
	runGitCommand(testInstance, repositoryPath, "config", "user.email", integrationUserEmailConstant)
}

func commitFile(testInstance *testing.T, repositoryPath string, fileName string, contents string, commitMessage string) {
	writeFile(testInstance, filepath.Join(repositoryPath, fileName), contents)
	runGitCommand(testInstance, repositoryPath, "add", fileName)
	runGitCommand(testInstance, repositoryPath, "commit", "-m", commitMessage)
}

func writeFile(testInstance *testing.T, filePath string, contents string) {
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testInstance, os.WriteFile(filePath, []byte(contents), 0o644))
}

func writeExecutable(testInstance *testing.T, filePath string, contents string) {
	writeFile(testInstance, filePath, contents)
	require.NoError(testInstance, os.Chmod(filePath, 0o755))
}

func runGitCommand(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()
	executionContext, cancelFunction := context.WithTimeout(context.Background(), integrationGitCommandTimeoutConstant)
	defer cancelFunction()

	command := exec.CommandContext(executionContext, integrationGitExecutableNameConstant, arguments...)
	if len(workingDirectory) > 0 {
		command.Dir = workingDirectory
	}

	outputBytes, commandError := command.CombinedOutput()
	require.NoError(testInstance, commandError, string(outputBytes))
	return string(outputBytes)
}

func requireNoError(testInstance *testing.T, err error, output string) {
	testInstance.Helper()
	if err != nil {
		testInstance.Fatalf("command failed: %v\n%s", err, output)
	}
}
