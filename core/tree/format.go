package tree

import "strings"

// Format renders v in single-line bracket notation, e.g. "(S (NP 0) (VP 1))".
// A childless node is written "(X )".
func Format(v View) string {
	var sb strings.Builder
	writeFlat(&sb, v)
	return sb.String()
}

func writeFlat(sb *strings.Builder, v View) {
	sb.WriteByte('(')
	sb.WriteString(v.Label())
	sb.WriteByte(' ')
	for i := range v.Len() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch c := v.Child(i).(type) {
		case Leaf:
			sb.WriteString(c.Text())
		case View:
			writeFlat(sb, c)
		}
	}
	sb.WriteByte(')')
}

// Pretty renders v in bracket notation, breaking subtrees that do not fit
// within margin columns onto indented lines.
func Pretty(v View, margin int) string {
	return pretty(v, margin, 0)
}

func pretty(v View, margin, indent int) string {
	if s := Format(v); len(s)+indent < margin {
		return s
	}
	pad := "\n" + strings.Repeat(" ", indent+2)
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(v.Label())
	for i := range v.Len() {
		sb.WriteString(pad)
		switch c := v.Child(i).(type) {
		case Leaf:
			sb.WriteString(c.Text())
		case View:
			sb.WriteString(pretty(c, margin, indent+2))
		}
	}
	sb.WriteByte(')')
	return sb.String()
}
