package expander

import (
	"regexp"
	"sort"
	"strings"
)

// TagUsage is one occurrence of a component tag in content.
type TagUsage struct {
	ComponentName string
	Attributes    Attributes
	InnerContent  string
	IsSelfClosing bool
}

// Span is a half-open byte range [Start, End) of content.
type Span struct {
	Start int
	End   int
}

// Match is a tag usage together with the text it occupies.
type Match struct {
	Span  Span
	Usage TagUsage
}

// TagScanner finds the next tag usage at or after offset. Scanners work on
// raw text with patterns rather than a parsed document, so the rest of the
// engine only depends on this method.
type TagScanner interface {
	Next(content string, offset int) (Match, bool)
}

// replaceAll substitutes every usage the scanner finds, left to right and
// without overlap, with render's output. It reports whether any usage was
// found.
func replaceAll(content string, scanner TagScanner, render func(TagUsage) string) (string, bool) {
	var b strings.Builder
	found := false
	last := 0
	for offset := 0; offset <= len(content); {
		m, ok := scanner.Next(content, offset)
		if !ok {
			break
		}
		found = true
		b.WriteString(content[last:m.Span.Start])
		b.WriteString(render(m.Usage))
		last = m.Span.End
		offset = m.Span.End
		if m.Span.End == m.Span.Start {
			offset++
		}
	}
	if !found {
		return content, false
	}
	b.WriteString(content[last:])
	return b.String(), true
}

// collect returns every usage the scanner finds in content.
func collect(content string, scanner TagScanner) []Match {
	var matches []Match
	for offset := 0; offset <= len(content); {
		m, ok := scanner.Next(content, offset)
		if !ok {
			break
		}
		matches = append(matches, m)
		offset = m.Span.End
		if m.Span.End == m.Span.Start {
			offset++
		}
	}
	return matches
}

// regexScanner matches one component name with a compiled pattern. Group 1
// is the attribute text and, for paired tags, group 2 the inner content.
type regexScanner struct {
	name        string
	pattern     *regexp.Regexp
	selfClosing bool
	parse       func(string) Attributes
}

func (s *regexScanner) Next(content string, offset int) (Match, bool) {
	loc := s.pattern.FindStringSubmatchIndex(content[offset:])
	if loc == nil {
		return Match{}, false
	}

	usage := TagUsage{
		ComponentName: s.name,
		Attributes:    s.parse(content[offset+loc[2] : offset+loc[3]]),
		IsSelfClosing: s.selfClosing,
	}
	if !s.selfClosing {
		usage.InnerContent = content[offset+loc[4] : offset+loc[5]]
	}

	return Match{
		Span:  Span{Start: offset + loc[0], End: offset + loc[1]},
		Usage: usage,
	}, true
}

// markerScanners builds the self-closing and paired scanners for name. The
// name must be followed by whitespace, `/` or `>`, so `<Card` never matches
// `<CardTitle`. The inner content capture is non-greedy: it ends at the
// first `</Name>`, which mis-pairs a tag nested inside another usage of the
// same component.
func markerScanners(name string) (selfClosing, paired *regexScanner) {
	quoted := regexp.QuoteMeta(name)
	selfClosing = &regexScanner{
		name:        name,
		pattern:     regexp.MustCompile(`<` + quoted + `((?:\s[^>]*?)?)/>`),
		selfClosing: true,
		parse:       ParseAttributes,
	}
	paired = &regexScanner{
		name:    name,
		pattern: regexp.MustCompile(`<` + quoted + `((?:\s[^>]*?)?)>([\s\S]*?)</` + quoted + `>`),
		parse:   ParseAttributes,
	}
	return selfClosing, paired
}

// FindUsages returns the usages of name in content for the marker dialect:
// self-closing usages and the paired usages that do not overlap them,
// ordered by position.
func FindUsages(content, name string) []Match {
	selfClosing, paired := markerScanners(name)

	matches := collect(content, selfClosing)
	n := len(matches)
	for offset := 0; offset < len(content); {
		m, ok := paired.Next(content, offset)
		if !ok {
			break
		}
		// An opening that belongs to a self-closing tag cannot start a
		// paired usage; retry from just past it.
		if overlapsAny(m.Span, matches[:n]) {
			offset = m.Span.Start + 1
			continue
		}
		matches = append(matches, m)
		offset = m.Span.End
	}

	sortMatches(matches)
	return matches
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Span.Start < matches[j].Span.Start
	})
}

func overlapsAny(span Span, matches []Match) bool {
	for _, m := range matches {
		if span.Start < m.Span.End && m.Span.Start < span.End {
			return true
		}
	}
	return false
}
