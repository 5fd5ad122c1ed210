package githubauth

import (
	"os"
	"strings"
)

// Environment variable names consulted for GitHub credentials.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

// TokenSource records where a resolved token came from.
type TokenSource string

// Token source enumerations.
const (
	TokenSourceNone          TokenSource = TokenSource("")
	TokenSourceConfiguration TokenSource = TokenSource("configuration")
)

var environmentPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup mirrors os.LookupEnv so tests can supply a fixed environment.
type EnvironmentLookup func(key string) (string, bool)

// Resolver chooses the token handed to gh.
type Resolver struct {
	lookupEnvironment EnvironmentLookup
}

// NewResolver constructs a Resolver; a nil lookup falls back to os.LookupEnv.
func NewResolver(lookupEnvironment EnvironmentLookup) Resolver {
	if lookupEnvironment == nil {
		lookupEnvironment = os.LookupEnv
	}
	return Resolver{lookupEnvironment: lookupEnvironment}
}

// ResolveToken prefers the configured token, then GH_TOKEN, GITHUB_TOKEN and GITHUB_API_TOKEN.
func (resolver Resolver) ResolveToken(configuredToken string) (string, TokenSource) {
	trimmedConfiguredToken := strings.TrimSpace(configuredToken)
	if len(trimmedConfiguredToken) > 0 {
		return trimmedConfiguredToken, TokenSourceConfiguration
	}
	for _, environmentKey := range environmentPreference {
		environmentValue, exists := resolver.lookupEnvironment(environmentKey)
		if !exists {
			continue
		}
		environmentValue = strings.TrimSpace(environmentValue)
		if len(environmentValue) > 0 {
			return environmentValue, TokenSource(environmentKey)
		}
	}
	return "", TokenSourceNone
}

// CommandEnvironment returns the variables that authenticate gh with token.
// An empty token yields nil so gh keeps using its own stored credentials.
func CommandEnvironment(token string) map[string]string {
	if len(strings.TrimSpace(token)) == 0 {
		return nil
	}
	return map[string]string{EnvGitHubCLIToken: strings.TrimSpace(token)}
}
