package texttospeech

import (
	"regexp"
	"strings"
)

var (
	fencedCodeRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`([^`]*)`")
	imageRe       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRe     = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*`)
	blockquoteRe  = regexp.MustCompile(`(?m)^\s{0,3}>\s?`)
	listMarkerRe  = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+[.)])\s+`)
	emphasisRe    = regexp.MustCompile(`(\*{1,3}|_{1,3}|~~)([^*_~]+?)(\*{1,3}|_{1,3}|~~)`)
	htmlTagRe     = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	whitespaceRe  = regexp.MustCompile(`[ \t]+`)
	newlinePadRe  = regexp.MustCompile(` *\n *`)
	blankLinesRe  = regexp.MustCompile(`\n{2,}`)
	tableDividers = regexp.MustCompile(`(?m)^\s*\|?[-:| ]+\|?\s*$`)
)

// Sanitize strips markup and structural markdown tokens from text so only
// speakable prose reaches a synthesizer.
func Sanitize(text string) string {
	text = fencedCodeRe.ReplaceAllString(text, " ")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = imageRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")
	text = tableDividers.ReplaceAllString(text, "")
	text = headingRe.ReplaceAllString(text, "")
	text = blockquoteRe.ReplaceAllString(text, "")
	text = listMarkerRe.ReplaceAllString(text, "")
	text = emphasisRe.ReplaceAllString(text, "$2")
	text = htmlTagRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "|", " ")

	text = whitespaceRe.ReplaceAllString(text, " ")
	text = newlinePadRe.ReplaceAllString(text, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}
