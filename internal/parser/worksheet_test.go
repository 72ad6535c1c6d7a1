package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/sunc/internal/apperr"
)

const ggWorksheet = `title: gg -> gg
leading_colour: true
basis:
  - f[1,2,5] f[5,3,4]
  - f[1,3,5] f[5,2,4]
expressions:
  - name: casimir
    expr: t[1,2,3] t[1,3,2]
  - expr: d[1,2,3] d[1,2,3]
`

func TestParseWorksheet(t *testing.T) {
	ws, err := ParseWorksheet([]byte(ggWorksheet))
	if err != nil {
		t.Fatalf("ParseWorksheet: %v", err)
	}
	if ws.Title != "gg -> gg" || !ws.LeadingColour {
		t.Errorf("header = %q, %v", ws.Title, ws.LeadingColour)
	}
	if len(ws.Vectors) != 2 || ws.Vectors[1].String() != "f[1,3,5]*f[5,2,4]" {
		t.Errorf("vectors = %v", ws.Vectors)
	}
	if len(ws.Expressions) != 2 {
		t.Fatalf("got %d expressions", len(ws.Expressions))
	}
	if ws.Expressions[0].Name != "casimir" || ws.Expressions[1].Name != "expr2" {
		t.Errorf("names = %q, %q", ws.Expressions[0].Name, ws.Expressions[1].Name)
	}
	if ws.Expressions[0].Amplitude.Len() != 1 {
		t.Errorf("casimir amplitude = %s", ws.Expressions[0].Amplitude)
	}
}

func TestParseWorksheet_Errors(t *testing.T) {
	cases := map[string]string{
		"yaml":      "basis: [unclosed",
		"basis":     "basis:\n  - t[1,2]\n",
		"expr":      "expressions:\n  - name: bad\n    expr: q[1]\n",
		"duplicate": "expressions:\n  - name: a\n    expr: t[1,2,3]\n  - name: a\n    expr: t[1,2,3]\n",
	}
	for name, doc := range cases {
		_, err := ParseWorksheet([]byte(doc))
		if !errors.Is(err, apperr.ErrParse) {
			t.Errorf("%s: err = %v, want ErrParse", name, err)
		}
	}

	_, err := ParseWorksheet([]byte("expressions:\n  - name: bad\n    expr: q[1]\n"))
	if err == nil || !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("error %v does not name the expression", err)
	}
}
