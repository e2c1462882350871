package purge

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// cssEscape matches a hex escape with its optional trailing whitespace, or a
// backslash followed by any other character.
var cssEscape = regexp.MustCompile(`\\([0-9A-Fa-f]{1,6}[\t\n\f\r ]?|[\s\S])`)

// UnescapeCSS decodes CSS escape sequences into their canonical form, so
// `hover\:flex` and `hover\3A flex` both become `hover:flex`. Raw replacement
// characters are normalized to NUL first, which is how the tokenizer reports
// invalid byte sequences.
func UnescapeCSS(s string) string {
	s = strings.ReplaceAll(s, "�", "\x00")
	if !strings.Contains(s, `\`) {
		return s
	}
	return cssEscape.ReplaceAllStringFunc(s, func(m string) string {
		body := m[1:]
		hex := strings.TrimRight(body, "\t\n\f\r ")
		if !isHex(hex) {
			return body
		}
		cp, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || cp > utf8.MaxRune || (cp >= 0xD800 && cp <= 0xDFFF) {
			return "�"
		}
		return string(rune(cp))
	})
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
