// Package models defines the records shared by storage, index and transport.
package models

import "time"

// WorksheetMetadata is a lightweight representation returned by list operations.
type WorksheetMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Worksheet is an evaluated worksheet as stored in the index.
type Worksheet struct {
	Path          string    `json:"path"`
	Title         string    `json:"title"`
	LeadingColour bool      `json:"leading_colour"`
	Checksum      string    `json:"checksum"`
	Error         string    `json:"error,omitempty"`
	Content       string    `json:"content,omitempty"`
	Basis         []string  `json:"basis"`
	Matrix        [][]Entry `json:"matrix"`
	Expressions   []Entry   `json:"expressions"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Entry kinds.
const (
	EntryMatrix     = "matrix"
	EntryExpression = "expression"
)

// Entry is one evaluated quantity of a worksheet: a colour matrix element
// or a named expression.
type Entry struct {
	Kind       string  `json:"kind"`
	Name       string  `json:"name"`
	Row        int     `json:"row"`
	Col        int     `json:"col"`
	Expression string  `json:"expression"`
	Result     string  `json:"result"`
	Value      Complex `json:"value"`
	Warning    string  `json:"warning,omitempty"`
}
