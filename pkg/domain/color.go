package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorSource records which input form produced a ColorValue.
type ColorSource string

const (
	ColorSourceNamed     ColorSource = "named"
	ColorSourceRGBString ColorSource = "rgb-string"
	ColorSourcePackedInt ColorSource = "packed-int"
)

// ColorValue is a canonical RGB triple plus the original-form tag for
// diagnostics. Any accepted input normalizes to exactly one triple.
type ColorValue struct {
	R, G, B uint8
	Source  ColorSource
	// Clamped is set when an rgb() component fell outside [0,255] and was
	// clamped rather than rejected.
	Clamped bool
}

// Hex renders the canonical "#RRGGBB" form sent across the boundary.
func (c ColorValue) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c ColorValue) String() string { return c.Hex() }

// namedColors is the fixed lookup table. Keys are lowercase.
var namedColors = map[string][3]uint8{
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"purple":  {128, 0, 128},
	"orange":  {255, 165, 0},
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"gray":    {128, 128, 128},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"brown":   {165, 42, 42},
	"pink":    {255, 192, 203},
}

// ParseColor normalizes a loosely-typed color input into a ColorValue.
// Accepted forms:
//   - a case-insensitive name from the fixed table (e.g. "red")
//   - "rgb(R,G,B)" with integer components; out-of-range values are clamped
//   - a packed integer interpreted as 0xRRGGBB
//
// Anything else fails with ErrInvalidColorFormat.
func ParseColor(input any) (ColorValue, error) {
	switch v := input.(type) {
	case string:
		return parseColorString(v)
	case int:
		return parsePackedColor(int64(v))
	case int64:
		return parsePackedColor(v)
	case uint64:
		return parsePackedColor(int64(v))
	case float64:
		// JSON numbers decode as float64. Reject fractional values.
		if v != float64(int64(v)) {
			return ColorValue{}, &ValidationError{Field: "color", Reason: fmt.Sprintf("non-integer packed color %v", v), Err: ErrInvalidColorFormat}
		}
		return parsePackedColor(int64(v))
	case ColorValue:
		return v, nil
	default:
		return ColorValue{}, &ValidationError{Field: "color", Reason: fmt.Sprintf("unsupported color type %T", input), Err: ErrInvalidColorFormat}
	}
}

func parseColorString(s string) (ColorValue, error) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)

	if rgb, ok := namedColors[lower]; ok {
		return ColorValue{R: rgb[0], G: rgb[1], B: rgb[2], Source: ColorSourceNamed}, nil
	}

	if strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(lower, ")") {
		return parseRGBString(trimmed)
	}

	// A bare integer string is treated as a packed color, mirroring the
	// leniency of the automation surface.
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return parsePackedColor(n)
	}

	return ColorValue{}, &ValidationError{Field: "color", Reason: fmt.Sprintf("unrecognized color %q", s), Err: ErrInvalidColorFormat}
}

func parseRGBString(s string) (ColorValue, error) {
	open := strings.Index(s, "(")
	inner := strings.TrimSuffix(s[open+1:], ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return ColorValue{}, &ValidationError{Field: "color", Reason: fmt.Sprintf("rgb() needs 3 components, got %d", len(parts)), Err: ErrInvalidColorFormat}
	}

	var comps [3]uint8
	clamped := false
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ColorValue{}, &ValidationError{Field: "color", Reason: fmt.Sprintf("rgb() component %q is not an integer", strings.TrimSpace(p)), Err: ErrInvalidColorFormat}
		}
		// Lenient: clamp out-of-range components instead of rejecting.
		if n < 0 {
			n = 0
			clamped = true
		} else if n > 255 {
			n = 255
			clamped = true
		}
		comps[i] = uint8(n)
	}

	return ColorValue{R: comps[0], G: comps[1], B: comps[2], Source: ColorSourceRGBString, Clamped: clamped}, nil
}

func parsePackedColor(n int64) (ColorValue, error) {
	if n < 0 || n > 0xFFFFFF {
		return ColorValue{}, &ValidationError{Field: "color", Reason: fmt.Sprintf("packed color %d outside 0x000000-0xFFFFFF", n), Err: ErrInvalidColorFormat}
	}
	return ColorValue{
		R:      uint8(n >> 16),
		G:      uint8(n >> 8),
		B:      uint8(n),
		Source: ColorSourcePackedInt,
	}, nil
}
