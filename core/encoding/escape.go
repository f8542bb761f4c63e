// Package encoding provides shared text encoding and escaping utilities.
package encoding

import "strings"

// Frontier is the placeholder token written for an empty leaf in bracket
// notation, as in "(NP )".
const Frontier = "-FRONTIER-"

var (
	tokenQuoter   = strings.NewReplacer("(", "-LRB-", ")", "-RRB-")
	tokenUnquoter = strings.NewReplacer("-LRB-", "(", "-RRB-", ")")
	morphEscaper  = strings.NewReplacer("(", "[", ")", "]")
)

// EscapeXMLText escapes the XML entities needed in element content; quotes
// are left as they are.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// QuoteToken makes a sentence token safe for bracket notation by replacing
// parentheses with -LRB- and -RRB-. An absent token is written as "".
func QuoteToken(word string) string {
	return tokenQuoter.Replace(word)
}

// UnquoteToken reverses QuoteToken. The empty string and the frontier
// placeholder both denote an absent token and map to "".
func UnquoteToken(word string) string {
	if word == "" || word == Frontier {
		return ""
	}
	return tokenUnquoter.Replace(word)
}

// EscapeMorph replaces parentheses in a morphological tag with square
// brackets so the tag can be folded into a node label.
func EscapeMorph(s string) string {
	return morphEscaper.Replace(s)
}

// ExportTag maps a label back to its export form, restoring the "$("
// punctuation tag that labels spell "$[".
func ExportTag(tag string) string {
	return strings.ReplaceAll(tag, "$[", "$(")
}

// Fields splits a line on runs of whitespace like strings.Fields, after
// dropping everything from the first "%%" comment marker onwards.
func Fields(line string) []string {
	if i := strings.Index(line, "%%"); i >= 0 {
		line = line[:i]
	}
	return strings.Fields(line)
}
