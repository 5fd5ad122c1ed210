package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant                 = "~"
	notDirectoryMessageTemplateConstant = "%s is not a directory"
	resolveErrorTemplateConstant        = "unable to resolve working directory %s: %w"
)

// ErrWorkingDirectoryNotDirectory indicates the selected path exists but is a file.
var ErrWorkingDirectoryNotDirectory = errors.New("working directory is not a directory")

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts `~` prefixed paths into absolute paths below the user's home directory.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	resolveOnce           sync.Once
	homeDirectory         string
}

// NewHomeExpander constructs a HomeExpander using os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(nil)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves `~`, `~/x` and `~\x` (on Windows). Other inputs, including `~user`, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return candidatePath
	}

	expander.resolveOnce.Do(func() {
		homeDirectory, homeDirectoryError := expander.homeDirectoryProvider()
		if homeDirectoryError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	if len(expander.homeDirectory) == 0 {
		return candidatePath
	}

	return filepath.Join(expander.homeDirectory, remainder)
}

// ResolveWorkingDirectory expands and absolutizes candidatePath and verifies it names a directory.
// An empty candidate resolves to the empty string, meaning the process working directory.
func (expander *HomeExpander) ResolveWorkingDirectory(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", nil
	}

	absolutePath, absoluteError := filepath.Abs(expander.Expand(trimmedPath))
	if absoluteError != nil {
		return "", fmt.Errorf(resolveErrorTemplateConstant, trimmedPath, absoluteError)
	}

	fileInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(resolveErrorTemplateConstant, trimmedPath, statError)
	}
	if !fileInfo.IsDir() {
		return "", fmt.Errorf(resolveErrorTemplateConstant, trimmedPath, fmt.Errorf("%w: "+notDirectoryMessageTemplateConstant, ErrWorkingDirectoryNotDirectory, absolutePath))
	}

	return absolutePath, nil
}
