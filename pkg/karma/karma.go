// Package karma attributes an integer karma weight to a blame block.
// An explicit "#karma_<digits>" marker in the commit summary always wins;
// otherwise the configured author map decides; otherwise the weight is zero.
package karma

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/gitkarma/pkg/blame"
)

// markerPattern matches a word-boundary-delimited "#karma_<digits>" token
// embedded in a commit summary.
var markerPattern = regexp.MustCompile(`(?:^|\s)#karma_(\d+)\b`)

// Resolve returns the karma value for a block. Resolution order: explicit
// summary marker, then the author map keyed by Identity, then zero.
// Pure function of its inputs.
func Resolve(block *blame.Block, authorKarma map[string]int) int {
	match := markerPattern.FindStringSubmatch(block.Meta.Summary())
	if match != nil {
		value, err := strconv.Atoi(match[1])
		if err == nil {
			return value
		}
	}

	value, ok := authorKarma[Identity(block.Meta)]
	if ok {
		return value
	}

	return 0
}

// Identity returns the author identity used for karma lookup and rollups:
// the author-mail field with the porcelain angle-bracket wrapper stripped,
// falling back to the author name when the trace carries no mail.
func Identity(meta blame.CommitMetadata) string {
	mail := strings.Trim(meta.AuthorMail(), "<>")
	if mail != "" {
		return mail
	}

	return meta.Author()
}
