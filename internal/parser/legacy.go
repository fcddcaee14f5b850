package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var underlineLevels = map[byte]int{'=': 1, '-': 2, '~': 3, '^': 4, '+': 5}

// isRepeated reports whether s is non-empty and made of c only.
func isRepeated(s string, c byte) bool {
	return s != "" && strings.Trim(s, string(c)) == ""
}

// NormalizeLegacy rewrites two-line (underlined) section titles to their
// "=" prefixed form and drops comment lines. Delimited blocks are copied
// unchanged; comment blocks are removed with their delimiters.
func NormalizeLegacy(src string) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	var delim byte

	for i := 0; i < len(lines)-1; {
		cur := strings.TrimRight(lines[i], " \t")
		next := strings.TrimRight(lines[i+1], " \t")
		if cur == "" {
			if delim == '/' {
				lines = remove(lines, i)
			} else {
				i++
			}
			continue
		}

		closes := len(cur) >= 4 && (isRepeated(cur, delim) || (cur[0] == '|' && isRepeated(cur[1:], delim)))
		if delim == '`' && cur == "```" {
			closes = true
		}
		if delim != 0 && !closes {
			if delim == '/' {
				lines = remove(lines, i)
			} else {
				i++
			}
			continue
		}
		if delim == '/' {
			lines = remove(lines, i)
			delim = 0
			continue
		}

		marker := cur[0]
		if cur[0] == '|' && len(cur) > 1 {
			marker = cur[1]
		}
		opens := delim == 0 && ((len(cur) >= 4 && isRepeated(cur, marker) && strings.IndexByte("=_-./", marker) >= 0) ||
			strings.HasPrefix(cur, "```") ||
			(len(cur) >= 4 && cur[0] == '|' && marker == '=' && isRepeated(cur[1:], marker)))
		if opens {
			delim = marker
			if strings.HasPrefix(cur, "```") {
				delim = '`'
			}
			if delim == '/' {
				lines = remove(lines, i)
			} else {
				i++
			}
			continue
		}

		delim = 0
		if strings.HasPrefix(cur, "//") {
			lines = remove(lines, i)
			continue
		}
		if next != "" && startsAlphanumeric(cur) {
			if level, ok := underlineLevels[next[0]]; ok && isRepeated(next, next[0]) && abs(utf8.RuneCountInString(next)-utf8.RuneCountInString(cur)) <= 1 {
				lines[i] = strings.Repeat("=", level) + " " + cur
				lines = remove(lines, i+1)
			}
		}
		i++
	}
	return strings.Join(lines, "\n")
}

func startsAlphanumeric(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func remove(lines []string, i int) []string {
	return append(lines[:i], lines[i+1:]...)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
