package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Truthy reports whether v is set in the loose sense the export formats use: nil, false,
// zero, NaN and the empty string count as unset.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()

		return err == nil && f != 0
	case float64:
		return val != 0 && !math.IsNaN(val)
	case float32:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return true
	}
}

// OrNil returns v when it is truthy and nil otherwise.
func OrNil(v any) any {
	if Truthy(v) {
		return v
	}

	return nil
}

// Or returns v when it is truthy and def otherwise.
func Or(v, def any) any {
	if Truthy(v) {
		return v
	}

	return def
}

// Coordinate renders a canvas coordinate as a string, "0" when unset.
func Coordinate(v any) string {
	if !Truthy(v) {
		return "0"
	}

	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}

// MaxCoordinate bounds the magnitude Int returns; canvas positions beyond it are clamped.
const MaxCoordinate = 1_000_000

// Int parses a coordinate the permissive way: leading integer digits of its text form,
// 0 when there are none. The result is clamped to [-MaxCoordinate, MaxCoordinate].
func Int(v any) int {
	var s string

	switch val := v.(type) {
	case nil:
		return 0
	case string:
		s = val
	case float64:
		if math.IsNaN(val) {
			return 0
		}

		return int(max(-MaxCoordinate, min(MaxCoordinate, math.Trunc(val))))
	case int:
		return clampCoordinate(val)
	case int64:
		return int(max(-MaxCoordinate, min(MaxCoordinate, val)))
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return Int(f)
		}

		s = val.String()
	default:
		s = fmt.Sprint(val)
	}

	s = strings.TrimSpace(s)

	end := 0
	for end < len(s) {
		c := s[end]
		if (c == '-' || c == '+') && end == 0 {
			end++

			continue
		}

		if c < '0' || c > '9' {
			break
		}

		end++
	}

	// Atoi saturates at the int bounds on ErrRange.
	n, err := strconv.Atoi(s[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}

	return clampCoordinate(n)
}

func clampCoordinate(n int) int {
	return max(-MaxCoordinate, min(MaxCoordinate, n))
}

// Marshal encodes v without HTML escaping; indent "" means compact output.
func Marshal(v any, indent string) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if indent != "" {
		enc.SetIndent("", indent)
	}

	if err := enc.Encode(v); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
