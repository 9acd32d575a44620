package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Row maps field id to a scalar: float64, string or nil
type Row map[string]any

// GroupKey is a value-based key usable in maps
type GroupKey string

// Normalize coerces an ingested value into the scalar set used by the engine.
// Numbers (and numeric strings when numeric is true) become float64, empty
// strings, NaN and infinities become nil, everything else becomes a string.
func Normalize(v any, numeric bool) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if !finite(x) {
			return nil
		}
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		if numeric {
			if f, err := cast.ToFloat64E(s); err == nil {
				if !finite(f) {
					return nil
				}
				return f
			}
		}
		return s
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		if !finite(f) {
			return nil
		}
		return f
	}
	return cast.ToString(v)
}

// Number returns the numeric value of a scalar
func Number(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || !finite(f) {
		return 0, false
	}
	return f, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// KeyOf builds a typed key so that 1 and "1" stay distinct and nil forms its own group
func KeyOf(v any) GroupKey {
	switch x := v.(type) {
	case nil:
		return "n:"
	case float64:
		return GroupKey("f:" + strconv.FormatFloat(x, 'g', -1, 64))
	case string:
		return GroupKey("s:" + x)
	}
	return GroupKey("s:" + cast.ToString(v))
}

// TupleKey joins the keys of several values in order
func TupleKey(values ...any) GroupKey {
	if len(values) == 1 {
		return KeyOf(values[0])
	}
	// length-prefixed so that no cell content can shift a boundary
	var b strings.Builder
	for _, v := range values {
		k := KeyOf(v)
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(string(k))
	}
	return GroupKey(b.String())
}

// Equal compares two scalars by value
func Equal(a, b any) bool {
	return KeyOf(a) == KeyOf(b)
}

// Clone returns a shallow copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
