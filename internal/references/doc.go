// Package references finds issue numbers mentioned in commit messages.
package references
