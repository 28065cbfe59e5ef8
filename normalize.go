package notebookmd

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reCRLF = regexp.MustCompile(`\r\n?`)
	reANSI = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	// Up to three spaces of indent, then a run of at least three backticks or tildes.
	reFence = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// tidyMarkdown cleans up a rendered document:
// - Ensure valid UTF-8
// - Normalize line endings (CRLF -> LF)
// - Drop ANSI escape sequences (IPython colours its tracebacks)
// - Drop other control characters except \n and \t
// - Outside fenced blocks, strip trailing whitespace and collapse runs of blank
//   lines to one; a trailing run of two or more spaces before a non-blank line
//   is a hard line break and is kept as exactly two spaces
// - Leave the lines inside fenced blocks untouched
// - End the document with exactly one newline
func tidyMarkdown(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = reCRLF.ReplaceAllString(s, "\n")
	s = reANSI.ReplaceAllString(s, "")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	var fence string
	blanks := 0
	for i, line := range lines {
		if fence != "" {
			out = append(out, line)
			if closesFence(line, fence) {
				fence = ""
			}
			continue
		}

		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			blanks++
			if blanks == 1 {
				out = append(out, "")
			}
			continue
		}
		blanks = 0

		if m := reFence.FindStringSubmatch(line); m != nil {
			fence = m[1]
		} else if strings.HasSuffix(line, "  ") && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			trimmed += "  "
		}
		out = append(out, trimmed)
	}

	s = strings.TrimSpace(strings.Join(out, "\n"))
	if s == "" {
		return ""
	}
	return s + "\n"
}

// closesFence reports whether line ends a block opened with fence: the same
// character, at least as long, and nothing but whitespace after it.
func closesFence(line, fence string) bool {
	rest := strings.TrimLeft(line, " ")
	if len(line)-len(rest) > 3 {
		return false
	}
	run := len(rest) - len(strings.TrimLeft(rest, fence[:1]))
	if run < len(fence) {
		return false
	}
	return strings.TrimSpace(rest[run:]) == ""
}
