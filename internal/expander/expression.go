package expander

import (
	"regexp"
	"strings"
)

// candidateTag matches the opening of any capitalized tag.
var candidateTag = regexp.MustCompile(`<([A-Z][a-zA-Z0-9]*)`)

// expressionScanner finds capitalized tags whose name is known. Paired
// scanning pairs an opening tag with the first `</Name>` after it, whatever
// lies between, so an earlier `<Name/>` will pair with a later closing tag
// of the same name. Self-closing scanning also accepts a bare `<Name ...>`
// left over once paired scanning is done.
type expressionScanner struct {
	paired bool
	known  func(name string) bool
}

func (s expressionScanner) Next(content string, offset int) (Match, bool) {
	for offset < len(content) {
		loc := candidateTag.FindStringSubmatchIndex(content[offset:])
		if loc == nil {
			return Match{}, false
		}
		start := offset + loc[0]
		name := content[offset+loc[2] : offset+loc[3]]
		nameEnd := offset + loc[1]

		if s.known(name) {
			var (
				m  Match
				ok bool
			)
			if s.paired {
				m, ok = matchPaired(content, start, nameEnd, name)
			} else {
				m, ok = matchSelfClosing(content, start, nameEnd, name)
			}
			if ok {
				return m, true
			}
		}
		offset = start + 1
	}
	return Match{}, false
}

// attrBounds returns where the attribute text of an opening tag starts and
// the index of the `>` that closes the tag. The attribute text may not span
// lines; one whitespace character directly after the name is skipped.
func attrBounds(content string, nameEnd int) (attrStart, gt int, ok bool) {
	attrStart = nameEnd
	if attrStart < len(content) && isSpace(content[attrStart]) {
		attrStart++
	}
	for i := attrStart; i < len(content); i++ {
		switch content[i] {
		case '>':
			return attrStart, i, true
		case '\n', '\r':
			return 0, 0, false
		}
	}
	return 0, 0, false
}

func matchPaired(content string, start, nameEnd int, name string) (Match, bool) {
	attrStart, gt, ok := attrBounds(content, nameEnd)
	if !ok {
		return Match{}, false
	}

	closeTag := "</" + name + ">"
	ci := strings.Index(content[gt+1:], closeTag)
	if ci < 0 {
		return Match{}, false
	}
	innerEnd := gt + 1 + ci

	return Match{
		Span: Span{Start: start, End: innerEnd + len(closeTag)},
		Usage: TagUsage{
			ComponentName: name,
			Attributes:    ParseExpressionAttributes(content[attrStart:gt]),
			InnerContent:  content[gt+1 : innerEnd],
		},
	}, true
}

func matchSelfClosing(content string, start, nameEnd int, name string) (Match, bool) {
	attrStart, gt, ok := attrBounds(content, nameEnd)
	if !ok {
		return Match{}, false
	}

	attrEnd := gt
	if attrEnd > attrStart && content[attrEnd-1] == '/' {
		attrEnd--
	}

	return Match{
		Span: Span{Start: start, End: gt + 1},
		Usage: TagUsage{
			ComponentName: name,
			Attributes:    ParseExpressionAttributes(content[attrStart:attrEnd]),
			IsSelfClosing: true,
		},
	}, true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// FindExpressionUsages returns the usages of registered components in
// content for the expression dialect: paired usages first, then the
// self-closing usages outside them, ordered by position.
func FindExpressionUsages(content string, comps Components) []Match {
	known := knownNames(comps)
	matches := collect(content, expressionScanner{paired: true, known: known})
	for _, m := range collect(content, expressionScanner{known: known}) {
		if !overlapsAny(m.Span, matches) {
			matches = append(matches, m)
		}
	}
	sortMatches(matches)
	return matches
}

func knownNames(comps Components) func(string) bool {
	return func(name string) bool {
		_, ok := comps.Body(name)
		return ok
	}
}
