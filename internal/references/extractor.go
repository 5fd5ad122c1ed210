package references

import (
	"regexp"
	"strconv"
)

const (
	closingKeywordPatternConstant = `(?i)(?:fix(?:es)?|close[sd]?|resolve[sd]?)\s*#(\d+)`
	bareReferencePatternConstant  = `#(\d+)`
)

var (
	closingKeywordPattern = regexp.MustCompile(closingKeywordPatternConstant)
	bareReferencePattern  = regexp.MustCompile(bareReferencePatternConstant)
)

// Reference is an issue number mentioned in a commit message.
type Reference struct {
	Number  int
	Keyword bool
}

// ExtractIssueReferences returns the distinct issue numbers mentioned in message in order of first appearance.
// Keyword is set when any mention was introduced by fix, fixes, close(s|d) or resolve(s|d).
func ExtractIssueReferences(message string) []Reference {
	keywordDigitOffsets := make(map[int]struct{})
	for _, keywordMatch := range closingKeywordPattern.FindAllStringSubmatchIndex(message, -1) {
		keywordDigitOffsets[keywordMatch[2]] = struct{}{}
	}

	extracted := make([]Reference, 0)
	positionByNumber := make(map[int]int)
	for _, referenceMatch := range bareReferencePattern.FindAllStringSubmatchIndex(message, -1) {
		issueNumber, conversionError := strconv.Atoi(message[referenceMatch[2]:referenceMatch[3]])
		if conversionError != nil {
			continue
		}
		_, introducedByKeyword := keywordDigitOffsets[referenceMatch[2]]

		if existingPosition, seen := positionByNumber[issueNumber]; seen {
			if introducedByKeyword {
				extracted[existingPosition].Keyword = true
			}
			continue
		}
		positionByNumber[issueNumber] = len(extracted)
		extracted = append(extracted, Reference{Number: issueNumber, Keyword: introducedByKeyword})
	}

	return extracted
}

// Numbers projects references onto their issue numbers. With keywordOnly set, bare mentions are dropped.
func Numbers(extracted []Reference, keywordOnly bool) []int {
	issueNumbers := make([]int, 0, len(extracted))
	for _, reference := range extracted {
		if keywordOnly && !reference.Keyword {
			continue
		}
		issueNumbers = append(issueNumbers, reference.Number)
	}
	return issueNumbers
}
