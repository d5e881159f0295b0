package postprocess

import (
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("```json\\s*([\\s\\S]*?)```")

// ExtractBlock finds the first fenced JSON block in text. It returns the block
// body, the text with that block removed and trimmed, and whether a block was
// present.
func ExtractBlock(text string) (body, stripped string, found bool) {
	loc := fencedJSON.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", strings.TrimSpace(text), false
	}
	body = strings.TrimSpace(text[loc[2]:loc[3]])
	stripped = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return body, stripped, true
}
