package domain

import (
	"regexp"
	"strings"
)

var directiveLine = regexp.MustCompile(`^['"]use (?:client|server|strict)['"];?$`)

// HasImport reports whether the file appears to import, require or declare factory.
func HasImport(lines []string, factory string) bool {
	if factory == "" {
		return true
	}

	declaration := regexp.MustCompile(
		`^(?:export\s+)?(?:(?:async\s+)?function\s+|(?:const|let|var)\s+)` + regexp.QuoteMeta(factory) + `\b`)

	inImport := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case inImport:
			if strings.Contains(trimmed, factory) {
				return true
			}

			if strings.Contains(trimmed, " from ") || strings.HasPrefix(trimmed, "} from") {
				inImport = false
			}
		case strings.HasPrefix(trimmed, "import "):
			if strings.Contains(trimmed, factory) {
				return true
			}

			inImport = !strings.Contains(trimmed, " from ") && !isSideEffectImport(trimmed)
		case strings.Contains(trimmed, "require(") && strings.Contains(trimmed, factory):
			return true
		case declaration.MatchString(trimmed):
			return true
		}
	}

	return false
}

// importInsertionPoint returns the index just after the top-of-file import block,
// or just after any leading directives when the file has no imports.
func importInsertionPoint(lines []string) int {
	at := 0
	inImport := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case inImport:
			if strings.Contains(trimmed, " from ") || strings.HasPrefix(trimmed, "} from") {
				inImport = false
				at = i + 1
			}
		case strings.HasPrefix(trimmed, "import "):
			if strings.Contains(trimmed, " from ") || isSideEffectImport(trimmed) {
				at = i + 1
			} else {
				inImport = true
			}
		case directiveLine.MatchString(trimmed):
			if at <= i {
				at = i + 1
			}
		case trimmed == "", strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "/*"), strings.HasPrefix(trimmed, "*"):
			continue
		default:
			return at
		}
	}

	return at
}

func isSideEffectImport(trimmed string) bool {
	return strings.HasPrefix(trimmed, "import '") || strings.HasPrefix(trimmed, `import "`)
}
