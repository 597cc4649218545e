package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// replacer applies the fixed table of typographic replacements.
// The replacement strings are pure ASCII, so applying the table twice is a
// no-op and idempotence holds for the whole pipeline.
var replacer = strings.NewReplacer(
	"→", "->", // right arrow
	"←", "<-", // left arrow
	"↑", "^", // up arrow
	"↓", "v", // down arrow
	"•", "*", // bullet
	"–", "-", // en dash
	"—", "--", // em dash
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"…", "...", // ellipsis
	" ", " ", // non-breaking space
)

// nonASCII matches maximal runs of bytes outside the 7-bit ASCII range.
// Control characters such as newline and tab are deliberately kept: report
// documents pass through Text as a whole and must stay multi-line.
var nonASCII = regexp.MustCompile(`[^\x00-\x7F]+`)

// Text sanitizes s into the safe output character set. It never fails;
// the worst case result consists only of ASCII and single spaces.
func Text(s string) string {
	return nonASCII.ReplaceAllString(replacer.Replace(s), " ")
}

// Value sanitizes an arbitrary value. Nil yields the empty string; strings
// are sanitized directly; anything else is coerced to its textual
// representation first.
func Value(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return Text(s)
	}
	return Text(fmt.Sprint(v))
}
