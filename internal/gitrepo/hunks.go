package gitrepo

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultHunkLineCountConstant = 1
	firstLineNumberConstant      = 1
)

// hunkHeaderPattern captures the new-file start line and optional line count of a unified
// or combined diff hunk header. Anchoring on the old-file ranges keeps a "+N" inside the
// trailing function context from being mistaken for the new-file range.
var hunkHeaderPattern = regexp.MustCompile(`^@@+ (?:-\d+(?:,\d+)? )+\+(\d+)(?:,(\d+))? @@`)

// LineRange is an inclusive span of line numbers.
type LineRange struct {
	Start int
	End   int
}

// DefaultLineRange points at the first line of a file.
func DefaultLineRange() LineRange {
	return LineRange{Start: firstLineNumberConstant, End: firstLineNumberConstant}
}

// ParseChangedLineRange scans unified diff hunk headers and returns the lowest and highest
// new-file line they cover. Pure deletions cover no lines. Without any covered line the
// default range is returned.
func ParseChangedLineRange(diff string) LineRange {
	lineRange := LineRange{}
	found := false

	for _, line := range strings.Split(diff, lineSeparatorConstant) {
		match := hunkHeaderPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		start, startError := strconv.Atoi(match[1])
		if startError != nil {
			continue
		}
		count := defaultHunkLineCountConstant
		if len(match[2]) > 0 {
			parsedCount, countError := strconv.Atoi(match[2])
			if countError != nil {
				continue
			}
			count = parsedCount
		}
		if count <= 0 {
			continue
		}

		end := start + count - 1
		if !found || start < lineRange.Start {
			lineRange.Start = start
		}
		if !found || end > lineRange.End {
			lineRange.End = end
		}
		found = true
	}

	if !found {
		return DefaultLineRange()
	}
	return lineRange
}
