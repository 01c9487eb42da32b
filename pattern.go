package lighttool

import (
	"strings"

	"github.com/gobwas/glob"
)

// pattern is a space-separated list of glob patterns, such as
// "*:light light". A name matches if any of the globs match it.
type pattern struct {
	source string
	globs  []glob.Glob
}

func compilePattern(s string) pattern {
	p := pattern{source: s}
	for _, field := range strings.Fields(s) {
		g, err := glob.Compile(field)
		if err != nil {
			g = glob.MustCompile(glob.QuoteMeta(field))
		}
		p.globs = append(p.globs, g)
	}
	return p
}

func (p pattern) Match(name string) bool {
	for _, g := range p.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (p pattern) String() string {
	return p.source
}

// MatchPattern reports whether name matches the space-separated glob list.
func MatchPattern(name, patterns string) bool {
	return compilePattern(patterns).Match(name)
}
