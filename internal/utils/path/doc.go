// Package pathutils resolves user supplied repository paths.
package pathutils
