// Package matcher matches endpoint names and places against glob or regular
// expression patterns.
package matcher

import (
	"regexp"
	"strings"

	"github.com/agentstation/mavroute/pkg/errors"
)

// PatternType is the syntax of a pattern.
type PatternType int

const (
	// Glob uses shell-style patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the syntax from the pattern.
	Auto
)

// String returns the pattern type name.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Options configures a Matcher.
type Options struct {
	// CaseInsensitive ignores case for both syntaxes.
	CaseInsensitive bool
}

// Matcher is a compiled pattern. Globs always match the whole input while
// regular expressions match anywhere unless anchored.
type Matcher struct {
	pattern     string
	patternType PatternType
	re          *regexp.Regexp
}

// New compiles pattern.
func New(patternType PatternType, pattern string, opts ...Options) (*Matcher, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if patternType == Auto {
		patternType = detectPatternType(pattern)
	}

	var expr string
	switch patternType {
	case Glob:
		expr = GlobToRegex(pattern)
	case Regex:
		expr = pattern
	default:
		return nil, errors.NewValidationError("pattern_type", patternType.String(), "must be glob or regex")
	}
	if o.CaseInsensitive && !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.NewValidationError("pattern", pattern, "invalid "+patternType.String()+" pattern: "+err.Error())
	}
	return &Matcher{pattern: pattern, patternType: patternType, re: re}, nil
}

// Match reports whether input matches. A nil Matcher matches everything.
func (m *Matcher) Match(input string) bool {
	if m == nil {
		return true
	}
	return m.re.MatchString(input)
}

// MatchAny reports whether any input matches.
func (m *Matcher) MatchAny(inputs ...string) bool {
	for _, in := range inputs {
		if m.Match(in) {
			return true
		}
	}
	return false
}

// Pattern returns the pattern as given.
func (m *Matcher) Pattern() string { return m.pattern }

// Type returns the resolved syntax, never Auto.
func (m *Matcher) Type() PatternType { return m.patternType }

// detectPatternType treats a pattern as a regular expression when it holds
// a metacharacter globs do not use.
func detectPatternType(pattern string) PatternType {
	indicators := []string{
		"^", "$", `\d`, `\w`, `\s`, `\D`, `\W`, `\S`,
		"(?", "{", "}", "+", "|", "(", ")",
	}
	for _, ind := range indicators {
		if strings.Contains(pattern, ind) {
			return Regex
		}
	}
	return Glob
}

// GlobToRegex converts a glob to an anchored regular expression. Unlike
// path.Match a star also crosses slashes, so "/dev/tty*" matches every
// terminal device.
func GlobToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")

	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			var class strings.Builder
			class.WriteString("[")
			if j < len(glob) && (glob[j] == '!' || glob[j] == '^') {
				class.WriteString("^")
				j++
			}
			for ; j < len(glob) && glob[j] != ']'; j++ {
				if glob[j] == '\\' && j+1 < len(glob) {
					class.WriteString(regexp.QuoteMeta(string(glob[j+1])))
					j++
					continue
				}
				class.WriteByte(glob[j])
			}
			if j < len(glob) {
				b.WriteString(class.String() + "]")
				i = j
			} else {
				// unterminated class is a literal bracket
				b.WriteString(`\[`)
			}
		case '\\':
			if i+1 < len(glob) {
				i++
				b.WriteString(regexp.QuoteMeta(string(glob[i])))
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString("$")
	return b.String()
}
