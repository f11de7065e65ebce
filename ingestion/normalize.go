package ingestion

import (
	"regexp"
	"strings"
)

var (
	lineBreaks      = regexp.MustCompile(`\n{1,2}`)
	paragraphBreaks = regexp.MustCompile(`\n{3,}`)
	tabbedBlocks    = regexp.MustCompile(`(\n+\t+){2,}`)
	tabRuns         = regexp.MustCompile(`\t+`)
	chunkLineBreaks = regexp.MustCompile(`\n{2,}`)
)

// NormalizeDocument rewrites whitespace in a loaded document before splitting.
// The rules are applied in order:
//  1. one or two newlines become one
//  2. three or more newlines become two
//  3. two or more runs of newlines followed by tabs become three newlines
//  4. runs of tabs become a single space
func NormalizeDocument(content string) string {
	res := lineBreaks.ReplaceAllString(content, "\n")
	res = paragraphBreaks.ReplaceAllString(res, "\n\n")
	res = tabbedBlocks.ReplaceAllString(res, "\n\n\n")
	return tabRuns.ReplaceAllString(res, " ")
}

// NormalizeChunk collapses blank lines inside a split chunk and prefixes it
// with the source label on its own line.
func NormalizeChunk(content, source string) string {
	return source + "\n" + chunkLineBreaks.ReplaceAllString(content, "\n")
}

// isBlank reports whether a chunk carries no text.
func isBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}
