// Package parser detects and decodes network analyzer text exports.
package parser

import (
	"bytes"
)

// FormatTag identifies one of the supported export layouts
type FormatTag int

const (
	FormatUnrecognized FormatTag = iota
	// FormatTouchstone is a tab-delimited export with a "# Hz" option line
	// and frequency, real, imaginary columns.
	FormatTouchstone
	// FormatRohdeSchwarz is a semicolon-delimited export with a "freq"
	// header and frequency, real, imaginary columns.
	FormatRohdeSchwarz
	// FormatAgilent is a comma-delimited export with a "Frequency" header
	// and frequency, magnitude (dB) columns.
	FormatAgilent
	// FormatEfficiency is a comma-delimited wide export with one row of
	// frequencies and one row of efficiencies.
	FormatEfficiency
)

// String returns the string representation of FormatTag
func (f FormatTag) String() string {
	switch f {
	case FormatTouchstone:
		return "touchstone"
	case FormatRohdeSchwarz:
		return "rohde_schwarz"
	case FormatAgilent:
		return "agilent"
	case FormatEfficiency:
		return "efficiency"
	default:
		return "unrecognized"
	}
}

// Anchor tokens searched for in the raw content
var (
	anchorTouchstone = []byte("# Hz")
	anchorRSFreq     = []byte("freq")
	anchorFrequency  = []byte("Frequency")
	anchorEfficiency = []byte("Efficiency")
)

type rule struct {
	match func(content []byte) bool
	tag   FormatTag
}

// rules are evaluated in order; the layouts overlap by substring so the
// order is part of the contract.
var rules = []rule{
	{
		match: func(c []byte) bool { return bytes.Contains(c, anchorTouchstone) },
		tag:   FormatTouchstone,
	},
	{
		match: func(c []byte) bool { return bytes.Contains(c, anchorRSFreq) },
		tag:   FormatRohdeSchwarz,
	},
	{
		match: func(c []byte) bool {
			return bytes.Contains(c, anchorFrequency) && !bytes.Contains(c, anchorEfficiency)
		},
		tag: FormatAgilent,
	},
	{
		match: func(c []byte) bool { return bytes.Contains(c, anchorEfficiency) },
		tag:   FormatEfficiency,
	},
}

// Classify returns the first format whose anchors match content, or
// FormatUnrecognized.
func Classify(content []byte) FormatTag {
	for _, r := range rules {
		if r.match(content) {
			return r.tag
		}
	}
	return FormatUnrecognized
}
