package island

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxSafeInteger is the largest integer a browser number holds exactly.
const MaxSafeInteger = 1<<53 - 1

// ErrUnsafeValue is returned for state the browser cannot reproduce exactly:
// integers beyond ±MaxSafeInteger, NaN and infinities.
var ErrUnsafeValue = errors.New("value cannot be represented exactly in the browser")

// State is the JSON object an island is rendered from.
type State map[string]any

// Clone returns a shallow copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Validate checks that every value survives the trip to the browser intact.
func (s State) Validate() error {
	for k, v := range s {
		if err := checkValue(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Normalize validates s and returns it in the shape the browser receives:
// every value passed through JSON, with numbers kept as json.Number. Slices,
// typed maps and structs become []any and map[string]any, so formatting the
// result matches what the snapshot carries.
func (s State) Normalize() (State, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out State
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	if out == nil {
		out = State{}
	}
	return out, nil
}

func checkValue(path string, v any) error {
	switch x := v.(type) {
	case nil, string, bool, int8, int16, int32, uint8, uint16, uint32:
		return nil
	case int:
		return checkInt(path, int64(x))
	case int64:
		return checkInt(path, x)
	case uint:
		return checkUint(path, uint64(x))
	case uint64:
		return checkUint(path, x)
	case float32:
		return checkFloat(path, float64(x))
	case float64:
		return checkFloat(path, x)
	case json.Number:
		return checkNumber(path, x)
	case []any:
		for i, e := range x {
			if err := checkValue(fmt.Sprintf("%s[%d]", path, i), e); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		return State(x).validateUnder(path)
	case State:
		return x.validateUnder(path)
	default:
		// Arbitrary Go values are checked in the shape they will be sent.
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		dec := json.NewDecoder(strings.NewReader(string(data)))
		dec.UseNumber()
		var generic any
		if err := dec.Decode(&generic); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return checkValue(path, generic)
	}
}

func (s State) validateUnder(prefix string) error {
	for k, v := range s {
		if err := checkValue(prefix+"."+k, v); err != nil {
			return err
		}
	}
	return nil
}

func checkInt(path string, i int64) error {
	if i > MaxSafeInteger || i < -MaxSafeInteger {
		return fmt.Errorf("%w: %s = %d", ErrUnsafeValue, path, i)
	}
	return nil
}

func checkUint(path string, u uint64) error {
	if u > MaxSafeInteger {
		return fmt.Errorf("%w: %s = %d", ErrUnsafeValue, path, u)
	}
	return nil
}

func checkFloat(path string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s = %v", ErrUnsafeValue, path, f)
	}
	return nil
}

func checkNumber(path string, n json.Number) error {
	if isIntegerLiteral(string(n)) {
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s = %s", ErrUnsafeValue, path, n)
		}
		return checkInt(path, i)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("%s: invalid number %q", path, n)
	}
	return checkFloat(path, f)
}

func isIntegerLiteral(s string) bool {
	return !strings.ContainsAny(s, ".eE")
}

// number is a JSON number held either as an exact integer or a float.
type number struct {
	i     int64
	f     float64
	exact bool
}

func (n number) value() any {
	if n.exact {
		return n.i
	}
	return n.f
}

func (n number) float() float64 {
	if n.exact {
		return float64(n.i)
	}
	return n.f
}

// toNumber coerces v the way the browser's Number() does, mapping anything
// that is not a number to 0.
func toNumber(v any) number {
	switch x := v.(type) {
	case nil:
		return number{exact: true}
	case bool:
		if x {
			return number{i: 1, exact: true}
		}
		return number{exact: true}
	case int:
		return number{i: int64(x), exact: true}
	case int8:
		return number{i: int64(x), exact: true}
	case int16:
		return number{i: int64(x), exact: true}
	case int32:
		return number{i: int64(x), exact: true}
	case int64:
		return number{i: x, exact: true}
	case uint8:
		return number{i: int64(x), exact: true}
	case uint16:
		return number{i: int64(x), exact: true}
	case uint32:
		return number{i: int64(x), exact: true}
	case uint:
		return number{i: int64(x), exact: true}
	case uint64:
		return number{i: int64(x), exact: true}
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case json.Number:
		if isIntegerLiteral(string(x)) {
			if i, err := x.Int64(); err == nil {
				return number{i: i, exact: true}
			}
		}
		f, err := x.Float64()
		if err != nil {
			return number{exact: true}
		}
		return fromFloat(f)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return number{exact: true}
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return number{i: i, exact: true}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromFloat(f)
		}
		return number{exact: true}
	default:
		return number{exact: true}
	}
}

func fromFloat(f float64) number {
	if math.IsNaN(f) {
		return number{exact: true}
	}
	if f == math.Trunc(f) && math.Abs(f) <= MaxSafeInteger {
		return number{i: int64(f), exact: true}
	}
	return number{f: f}
}

func addNumbers(a, b number) number {
	if a.exact && b.exact {
		return number{i: a.i + b.i, exact: true}
	}
	return fromFloat(a.float() + b.float())
}

// truthy mirrors JavaScript truthiness for JSON values.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []any, map[string]any, State:
		return true
	default:
		n := toNumber(x)
		return n.float() != 0
	}
}

// FormatValue renders v exactly as the browser's String(v) would, which is
// what bound elements display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, ",")
	case map[string]any, State:
		return "[object Object]"
	default:
		n := toNumber(x)
		if n.exact {
			return strconv.FormatInt(n.i, 10)
		}
		return formatFloat(n.f)
	}
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
