// Package githubauth picks the GitHub token passed to gh invocations.
package githubauth
