package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the accepted date formats (no time component). Only
// unambiguous layouts are listed so day/month order is never guessed.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
}

// timestampLayouts are the accepted timestamp formats.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// InferTypes returns one Type per column of records. A column is given the
// narrowest type that every non-empty value satisfies; columns with no
// non-empty values are text.
func InferTypes(width int, records [][]string) []Type {
	types := make([]Type, width)
	for c := 0; c < width; c++ {
		vals := make([]string, 0, len(records))
		for _, rec := range records {
			if c < len(rec) {
				vals = append(vals, rec[c])
			}
		}
		types[c] = inferColumn(vals)
	}
	return types
}

func inferColumn(values []string) Type {
	nonEmpty := nonEmptyTrimmed(values)
	if len(nonEmpty) == 0 {
		return TypeText
	}
	if allMatch(nonEmpty, isInt) {
		return TypeInteger
	}
	if allMatch(nonEmpty, isFloat) {
		return TypeReal
	}
	if allMatch(nonEmpty, isBool) {
		return TypeBoolean
	}

	// Prefer timestamp when any value carries a time component.
	allDate := true
	anyTime := false
	for _, v := range nonEmpty {
		ok, hasTime := parseDateOrTimestamp(v)
		if !ok {
			allDate = false
			break
		}
		if hasTime {
			anyTime = true
		}
	}
	if allDate {
		if anyTime {
			return TypeTimestamp
		}
		return TypeDate
	}
	return TypeText
}

// Convert turns a raw field into a value of type t. Blank fields become nil.
// Text values are returned unmodified.
func Convert(raw string, t Type) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	switch t {
	case TypeInteger:
		return strconv.ParseInt(s, 10, 64)
	case TypeReal:
		return strconv.ParseFloat(s, 64)
	case TypeBoolean:
		return strconv.ParseBool(strings.ToLower(s))
	case TypeDate, TypeTimestamp:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, nil
			}
		}
		return nil, fmt.Errorf("unrecognized date/time %q", s)
	default:
		return raw, nil
	}
}

// Format renders a converted value back to text the way the source would
// have written it. nil renders as an empty field.
func Format(v any, t Type) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if t == TypeDate {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339Nano)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func nonEmptyTrimmed(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

// isBool accepts true/false in any letter case. Digits are left to isInt.
func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	default:
		return false
	}
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat accepts decimal or scientific notation. Integers also pass so a
// column mixing 1 and 1.5 becomes real.
func isFloat(s string) bool {
	switch strings.ToLower(s) {
	case "inf", "+inf", "-inf", "infinity", "nan":
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseDateOrTimestamp(s string) (ok bool, hasTime bool) {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true, true
		}
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true, false
		}
	}
	return false, false
}
