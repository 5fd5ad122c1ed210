// Package gitrepo reads what a release reply needs from a local Git checkout.
//
// It parses remote URLs into repository identities, lists commits since a
// reference together with the files they touched, and locates the lines a
// commit changed in a file by reading unified diff hunk headers.
package gitrepo
