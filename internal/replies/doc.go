// Package replies posts comments on GitHub issues fixed since the latest release.
//
// Service resolves the repository and its latest release, lists the commits
// made since that release, correlates the issue numbers they mention with open
// issues and renders one Markdown reply per fixed issue through Composer. The
// text transcript narrates each step; the YAML plan describes the replies
// without posting them.
package replies
