package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldDelimiter separates the columns of a companion list line.
const FieldDelimiter = "•"

var backtickToken = regexp.MustCompile("`([^`]+)`")

var printDigits = regexp.MustCompile(`P?(\d+)`)

// ExtractFieldCodes extracts card codes from a multi-line companion field.
// Each line splits on the field delimiter; only lines with at least 4
// segments are eligible, and the code is the first backtick-enclosed token
// of the 4th segment. Malformed lines contribute nothing.
func ExtractFieldCodes(field string) []string {
	var codes []string
	for _, line := range strings.Split(strings.TrimSpace(field), "\n") {
		parts := strings.Split(line, FieldDelimiter)
		if len(parts) < 4 {
			continue
		}
		match := backtickToken.FindStringSubmatch(strings.TrimSpace(parts[3]))
		if match == nil {
			continue
		}
		if code := strings.TrimSpace(match[1]); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// ParseCardLine extracts the card code and print value from a single record
// line. Backtick tokens are taken in appearance order: the 1st is the code,
// the 2nd the print. Missing tokens degrade to "Unknown". A "P-" prefix on
// the print normalizes to "P".
func ParseCardLine(line string) (code, print string) {
	code, print = "Unknown", "Unknown"
	matches := backtickToken.FindAllStringSubmatch(line, -1)
	if len(matches) > 0 {
		code = matches[0][1]
	}
	if len(matches) > 1 {
		print = matches[1][1]
	}
	print = strings.Replace(print, "P-", "P", 1)
	return code, print
}

// PrintNumber extracts the numeric print identifier from a normalized print
// value. Returns false when the value carries no digits.
func PrintNumber(print string) (int, bool) {
	match := printDigits.FindStringSubmatch(print)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// EmphasizedTitle reports whether a reply title is wrapped in the emphasis
// markers that distinguish a well-formed view reply. The prefix and suffix
// checks may overlap, so degenerate titles like "**" pass.
func EmphasizedTitle(title string) bool {
	return strings.HasPrefix(title, "**") && strings.HasSuffix(title, "**")
}
