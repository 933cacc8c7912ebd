package filter

import (
	"fmt"
	"strings"
	"time"
)

// Compare orders two field values: -1 when a < b, 0 when equal, 1 when
// a > b. Numeric values compare numerically across int/float widths, times
// chronologically, everything else by string form. Used both by comparison
// filters and by in-memory sources when sorting.
func Compare(a, b any) int {
	if af, aok := floatValue(a); aok {
		if bf, bok := floatValue(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(stringValue(a), stringValue(b))
}

// equalValues reports loose equality: numeric values compare across widths,
// everything else by Compare.
func equalValues(a, b any) bool {
	return Compare(a, b) == 0
}

// floatValue normalizes numeric values to float64.
func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// stringValue renders a field value for string matching.
func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if st, ok := v.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprint(v)
}
