package arch

import (
	"regexp"
	"strings"
)

// archEntry binds a canonical architecture tag to the filename patterns that
// identify it.
type archEntry struct {
	tag      string
	patterns []*regexp.Regexp
}

// archTable is ordered: patterns overlap (a bare "x86" must not steal
// "x86_64" filenames), so tags are tested in declaration order and the first
// tag with any matching pattern wins.
var archTable = []archEntry{
	{"x86_64", compileAll(`x86_64`, `amd64`, `x64`)},
	{"aarch64", compileAll(`aarch64`, `arm64`)},
	{"i686", compileAll(`i686`, `i386`, `x86[^_]`)},
	{"armv7hl", compileAll(`armv7hl`, `armhf`)},
	{"noarch", compileAll(`noarch`)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// Classify maps a package filename to its canonical architecture tag.
// The second return value is false when no pattern matches; such assets are
// excluded by the caller.
func Classify(filename string) (string, bool) {
	lower := strings.ToLower(filename)
	for _, entry := range archTable {
		for _, pattern := range entry.patterns {
			if pattern.MatchString(lower) {
				return entry.tag, true
			}
		}
	}
	return "", false
}
