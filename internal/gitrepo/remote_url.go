package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	defaultHostConstant                 = "github.com"
	repositoryIdentifierTemplate        = "%s/%s"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "cannot parse repo from"
	invalidIdentifierMessageConstant    = "expected owner/repository"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RepositoryIdentity names a hosted repository.
type RepositoryIdentity struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// NameWithOwner renders the identity as owner/repository.
func (identity RepositoryIdentity) NameWithOwner() string {
	return fmt.Sprintf(repositoryIdentifierTemplate, identity.Owner, identity.Repository)
}

// RemoteURLParseError indicates a remote or identifier string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Message, parseError.Input)
}

// ParseRemoteURL extracts the repository identity from scp-like, ssh:// and http(s):// remotes.
func ParseRemoteURL(remote string) (RepositoryIdentity, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RepositoryIdentity{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseSSHRemote(trimmedRemote, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant), false)
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHTTPRemote(trimmedRemote, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHTTPRemote(trimmedRemote, strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	case strings.Contains(trimmedRemote, sshPathDelimiterConstant):
		return parseSSHRemote(trimmedRemote, trimmedRemote, true)
	default:
		return RepositoryIdentity{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

// ParseRepositoryIdentifier parses an explicit owner/repository value. The host defaults to github.com.
func ParseRepositoryIdentifier(identifier string) (RepositoryIdentity, error) {
	trimmedIdentifier := strings.TrimSpace(identifier)
	if len(trimmedIdentifier) == 0 {
		return RepositoryIdentity{}, RemoteURLParseError{Input: identifier, Message: requiredValueMessageConstant}
	}

	segments := strings.Split(trimmedIdentifier, pathSeparatorConstant)
	if len(segments) != 2 || len(strings.TrimSpace(segments[0])) == 0 || len(strings.TrimSpace(segments[1])) == 0 {
		return RepositoryIdentity{}, RemoteURLParseError{Input: identifier, Message: invalidIdentifierMessageConstant}
	}

	return RepositoryIdentity{
		Protocol:   RemoteProtocolHTTPS,
		Host:       defaultHostConstant,
		Owner:      strings.TrimSpace(segments[0]),
		Repository: strings.TrimSpace(segments[1]),
	}, nil
}

// parseSSHRemote handles user@host:owner/repo when scpLike is set and user@host[:port]/owner/repo otherwise.
func parseSSHRemote(original string, remote string, scpLike bool) (RepositoryIdentity, error) {
	hostAndPath := remote
	if userSplitIndex := strings.Index(remote, sshUserDelimiterConstant); userSplitIndex != -1 {
		hostAndPath = remote[userSplitIndex+1:]
	}

	separator := pathSeparatorConstant
	if scpLike {
		separator = sshPathDelimiterConstant
	}
	separatorIndex := strings.Index(hostAndPath, separator)
	if separatorIndex <= 0 {
		return RepositoryIdentity{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	host := stripPort(hostAndPath[:separatorIndex])
	owner, repository, parseError := splitOwnerAndRepository(original, hostAndPath[separatorIndex+1:])
	if parseError != nil {
		return RepositoryIdentity{}, parseError
	}
	return RepositoryIdentity{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHTTPRemote(original string, remote string) (RepositoryIdentity, error) {
	slashIndex := strings.Index(remote, pathSeparatorConstant)
	if slashIndex == -1 {
		return RepositoryIdentity{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	host := remote[:slashIndex]
	if credentialIndex := strings.LastIndex(host, sshUserDelimiterConstant); credentialIndex != -1 {
		host = host[credentialIndex+1:]
	}

	owner, repository, parseError := splitOwnerAndRepository(original, remote[slashIndex+1:])
	if parseError != nil {
		return RepositoryIdentity{}, parseError
	}
	return RepositoryIdentity{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository}, nil
}

// splitOwnerAndRepository keeps the last two path segments, matching nested hosting paths.
func splitOwnerAndRepository(original string, path string) (string, string, error) {
	trimmedPath := strings.Trim(path, pathSeparatorConstant)
	segments := strings.Split(trimmedPath, pathSeparatorConstant)
	if len(segments) < 2 {
		return "", "", RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	owner := segments[len(segments)-2]
	repository := strings.TrimSuffix(segments[len(segments)-1], gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return "", "", RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	return owner, repository, nil
}

func stripPort(host string) string {
	if portIndex := strings.LastIndex(host, sshPathDelimiterConstant); portIndex != -1 {
		return host[:portIndex]
	}
	return host
}
