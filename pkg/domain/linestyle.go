package domain

import (
	"fmt"
	"strings"
)

// LinePattern identifies one of the fixed dash patterns of the automation
// surface. The numeric codes map to the host's line-pattern cells.
type LinePattern string

const (
	LineSolid         LinePattern = "solid"
	LineDashed        LinePattern = "dashed"
	LineDotted        LinePattern = "dotted"
	LineDashDot       LinePattern = "dash_dot"
	LineDashDotDot    LinePattern = "dash_dot_dot"
	LineLongDash      LinePattern = "long_dash"
	LineLongDashDot   LinePattern = "long_dash_dot"
	LineLongDashDotX2 LinePattern = "long_dash_dot_dot"
	LineRoundDot      LinePattern = "round_dot"
)

var linePatternCodes = map[LinePattern]int{
	LineSolid:         1,
	LineDashed:        2,
	LineDotted:        3,
	LineDashDot:       4,
	LineDashDotDot:    5,
	LineLongDash:      6,
	LineLongDashDot:   7,
	LineLongDashDotX2: 8,
	LineRoundDot:      9,
}

// Code returns the host-side numeric pattern code, or 0 for an unknown pattern.
func (p LinePattern) Code() int { return linePatternCodes[p] }

// DefaultLineWeight is the baseline weight in points used when none is given.
const DefaultLineWeight = 1.0

// LineStyle is a canonical line description: weight in points plus a pattern.
type LineStyle struct {
	Weight  float64     `json:"weight"`
	Pattern LinePattern `json:"pattern"`
}

// ParseLineStyle normalizes loose weight/pattern inputs. A nil weight defaults
// to DefaultLineWeight; an empty pattern defaults to solid. Weight must be
// positive; the pattern string is matched case-insensitively against the enum.
func ParseLineStyle(weight *float64, pattern string) (LineStyle, error) {
	style := LineStyle{Weight: DefaultLineWeight, Pattern: LineSolid}

	if weight != nil {
		if *weight <= 0 {
			return LineStyle{}, NewValidationError("line_weight", fmt.Sprintf("weight must be positive, got %v", *weight))
		}
		style.Weight = *weight
	}

	if pattern != "" {
		p := LinePattern(strings.ToLower(strings.TrimSpace(pattern)))
		if _, ok := linePatternCodes[p]; !ok {
			return LineStyle{}, &ValidationError{Field: "line_pattern", Reason: fmt.Sprintf("unknown pattern %q", pattern), Err: ErrInvalidLinePattern}
		}
		style.Pattern = p
	}

	return style, nil
}
