package encoding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEscapeXMLText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "de kat", "de kat"},
		{"ampersand", "R&D", "R&amp;D"},
		{"less than", "a < b", "a &lt; b"},
		{"greater than", "a > b", "a &gt; b"},
		{"already escaped", "&amp;", "&amp;amp;"},
		{"quotes", `zei "ja"`, `zei "ja"`},
		{"apostrophe", "'s", "'s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLText(tt.input); got != tt.want {
				t.Errorf("EscapeXMLText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeXMLAttr(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "su", "su"},
		{"all entities", `<"&">`, "&lt;&quot;&amp;&quot;&gt;"},
		{"text keeps quotes", "a>b", "a&gt;b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLAttr(tt.input); got != tt.want {
				t.Errorf("EscapeXMLAttr(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
	if got := EscapeXMLText(`"x"`); got != `"x"` {
		t.Errorf("EscapeXMLText should preserve quotes, got %q", got)
	}
}

func TestQuoteToken(t *testing.T) {
	tests := []struct {
		name   string
		word   string
		quoted string
	}{
		{"plain", "rich", "rich"},
		{"open paren", "(", "-LRB-"},
		{"close paren", ")", "-RRB-"},
		{"embedded", "f(x)", "f-LRB-x-RRB-"},
		{"absent", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuoteToken(tt.word); got != tt.quoted {
				t.Errorf("QuoteToken(%q) = %q, want %q", tt.word, got, tt.quoted)
			}
			if got := UnquoteToken(tt.quoted); got != tt.word {
				t.Errorf("UnquoteToken(%q) = %q, want %q", tt.quoted, got, tt.word)
			}
		})
	}
}

func TestUnquoteFrontier(t *testing.T) {
	if got := UnquoteToken(Frontier); got != "" {
		t.Errorf("UnquoteToken(%q) = %q, want empty", Frontier, got)
	}
}

func TestEscapeMorphAndExportTag(t *testing.T) {
	if got := EscapeMorph("Nom.Sg(m)"); got != "Nom.Sg[m]" {
		t.Errorf("EscapeMorph() = %q", got)
	}
	if got := ExportTag("$["); got != "$(" {
		t.Errorf("ExportTag($[) = %q", got)
	}
	if got := ExportTag("NN"); got != "NN" {
		t.Errorf("ExportTag(NN) = %q", got)
	}
	if got := ExportTag("$[/Pos"); got != "$(/Pos" {
		t.Errorf("ExportTag($[/Pos) = %q", got)
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"John\tNE\t--\tSB\t500", []string{"John", "NE", "--", "SB", "500"}},
		{"is  VAFIN -- HD 500 %% finite verb", []string{"is", "VAFIN", "--", "HD", "500"}},
		{"%% only a comment", []string{}},
	}
	for _, tt := range tests {
		got := Fields(tt.line)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Fields(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}
