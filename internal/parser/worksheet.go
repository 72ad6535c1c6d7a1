package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/sunc/internal/apperr"
	"github.com/starford/sunc/internal/colour"
)

// Worksheet is a YAML document holding a colour basis and named expressions.
//
//	title: gg -> gg
//	leading_colour: false
//	basis:
//	  - f[1,2,5] f[5,3,4]
//	  - f[1,3,5] f[5,2,4]
//	expressions:
//	  - name: casimir
//	    expr: t[1,2,3] t[1,3,2]
type Worksheet struct {
	Title         string       `yaml:"title"`
	LeadingColour bool         `yaml:"leading_colour"`
	Basis         []string     `yaml:"basis"`
	Expressions   []Expression `yaml:"expressions"`

	// Vectors holds the parsed basis, in order.
	Vectors []colour.Amplitude `yaml:"-"`
}

// Expression is a named amplitude of a worksheet.
type Expression struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`

	Amplitude colour.Amplitude `yaml:"-"`
}

// ParseWorksheet decodes a worksheet and parses every basis vector and
// expression in it.
func ParseWorksheet(data []byte) (*Worksheet, error) {
	var ws Worksheet
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parser: worksheet: %v: %w", err, apperr.ErrParse)
	}
	for i, b := range ws.Basis {
		a, err := ParseAmplitude(b)
		if err != nil {
			return nil, fmt.Errorf("basis[%d]: %w", i, err)
		}
		ws.Vectors = append(ws.Vectors, a)
	}
	seen := make(map[string]struct{}, len(ws.Expressions))
	for i := range ws.Expressions {
		e := &ws.Expressions[i]
		if e.Name == "" {
			e.Name = fmt.Sprintf("expr%d", i+1)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("parser: duplicate expression %q: %w", e.Name, apperr.ErrParse)
		}
		seen[e.Name] = struct{}{}
		a, err := ParseAmplitude(e.Expr)
		if err != nil {
			return nil, fmt.Errorf("expression %q: %w", e.Name, err)
		}
		e.Amplitude = a
	}
	return &ws, nil
}
