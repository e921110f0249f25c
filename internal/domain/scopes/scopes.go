// Package scopes finds the line that opens the function-like construct enclosing a usage.
//
// Recognition is purely textual: each line is trimmed and tested against a fixed list
// of recognizers. The nearest matching line above a usage is taken as its scope start,
// which is not always the innermost lexical scope (object-literal methods and wrapped
// callbacks such as useCallback(async () => {...}) are not recognized).
package scopes

import (
	"fmt"
	"regexp"
	"strings"
)

// NotFound is returned by Locate when no line above the usage opens a scope.
const NotFound = -1

const (
	ident          = `[A-Za-z_$][\w$]*`
	typeAnnotation = `(?:\s*:\s*[^=]+?)?`
	generics       = `(?:<[^>]*>\s*)?`
	binding        = `^(?:export\s+)?(?:(?:const|let|var)\s+)?` + ident + typeAnnotation + `\s*=\s*`
)

// Recognizer classifies a trimmed line as the opening of a function-like construct.
type Recognizer struct {
	Name    string
	Pattern *regexp.Regexp
}

// Matches reports whether the trimmed line matches the recognizer.
func (r Recognizer) Matches(line string) bool {
	return r.Pattern.MatchString(strings.TrimSpace(line))
}

var (
	// function load() {, export async function GET(req) {, export default function Page<T>(.
	functionDeclaration = regexp.MustCompile(
		`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*` + ident + `\s*` + generics + `\(`)

	// const load = async function (.
	assignedFunctionExpression = regexp.MustCompile(
		binding + `(?:async\s+)?function\b`)

	// const load = async (req) => {, or a parameter list left open for the next line.
	assignedArrowParams = regexp.MustCompile(
		binding + `(?:async\s*)?` + generics + `\((?:.*=>.*|[^)]*)$`)

	// const load = async id => {, or with the body starting on the next line.
	assignedArrowSingle = regexp.MustCompile(
		binding + `(?:async\s+)?` + ident + `\s*=>\s*\{?$`)
)

// Default returns the built-in recognizers in the order they are tried.
func Default() []Recognizer {
	return []Recognizer{
		{Name: "function-declaration", Pattern: functionDeclaration},
		{Name: "assigned-function-expression", Pattern: assignedFunctionExpression},
		{Name: "assigned-arrow-params", Pattern: assignedArrowParams},
		{Name: "assigned-arrow-single", Pattern: assignedArrowSingle},
	}
}

// Compile turns user supplied regular expressions into recognizers.
func Compile(patterns []string) ([]Recognizer, error) {
	recognizers := make([]Recognizer, 0, len(patterns))

	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("scope pattern %d (%q): %w", i, pattern, err)
		}

		recognizers = append(recognizers, Recognizer{Name: fmt.Sprintf("custom-%d", i), Pattern: re})
	}

	return recognizers, nil
}

// Locator searches backward from a usage for the nearest scope-opening line.
type Locator struct {
	recognizers []Recognizer
}

// NewLocator builds a Locator. With no recognizers the defaults are used.
func NewLocator(recognizers ...Recognizer) *Locator {
	if len(recognizers) == 0 {
		recognizers = Default()
	}

	return &Locator{recognizers: recognizers}
}

// Match returns the first recognizer accepting line.
func (l *Locator) Match(line string) (Recognizer, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Recognizer{}, false
	}

	for _, r := range l.recognizers {
		if r.Pattern.MatchString(trimmed) {
			return r, true
		}
	}

	return Recognizer{}, false
}

// Locate returns the index of the nearest line strictly above usage that opens a
// scope, or NotFound. An out of range usage yields NotFound.
func (l *Locator) Locate(lines []string, usage int) int {
	if usage <= 0 || usage > len(lines) {
		return NotFound
	}

	for i := usage - 1; i >= 0; i-- {
		if _, ok := l.Match(lines[i]); ok {
			return i
		}
	}

	return NotFound
}
